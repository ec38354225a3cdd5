package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordvec/pkg/catalog"
	"github.com/bastiangx/wordvec/pkg/config"
	"github.com/bastiangx/wordvec/pkg/modelcache"
)

func newTestIPC(t *testing.T) *IPCServer {
	t.Helper()
	cat := catalog.FromEntries("toy", []catalog.Metadata{
		{ID: "toy", Description: "toy vectors", Dimension: 2},
	})
	cfg := config.DefaultConfig()
	cfg.Models.Default = "toy"
	cache := modelcache.New(cat, fakeLoader{}, modelcache.Options{})
	return &IPCServer{cfg: cfg, cache: cache}
}

func TestIPCCompare(t *testing.T) {
	s := newTestIPC(t)

	resp := s.dispatch(IPCRequest{Op: "compare", Word1: "king", Word2: "queen"})
	require.Equal(t, "success", resp.Status, resp.Error)
	assert.Equal(t, "toy", resp.Model)
	require.NotNil(t, resp.Similarity)
	assert.InDelta(t, 1, *resp.Similarity, 0.2)
}

func TestIPCCompareMissingWord(t *testing.T) {
	s := newTestIPC(t)

	resp := s.dispatch(IPCRequest{Op: "compare", Word1: "king", Word2: "emperor"})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "word_not_found", resp.ErrorCode)
}

func TestIPCExists(t *testing.T) {
	s := newTestIPC(t)

	resp := s.dispatch(IPCRequest{Op: "exists", Word: "woman"})
	require.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Exists)
	assert.True(t, *resp.Exists)

	resp = s.dispatch(IPCRequest{Op: "exists", Word: "emperor"})
	require.NotNil(t, resp.Exists)
	assert.False(t, *resp.Exists)
}

func TestIPCRandomAndInfo(t *testing.T) {
	s := newTestIPC(t)

	resp := s.dispatch(IPCRequest{Op: "random"})
	require.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Word)

	resp = s.dispatch(IPCRequest{Op: "info"})
	require.Equal(t, "success", resp.Status)
	assert.Equal(t, 4, resp.VocabSize)
	assert.Equal(t, 2, resp.VectorSize)
}

func TestIPCUnknownOpAndModel(t *testing.T) {
	s := newTestIPC(t)

	resp := s.dispatch(IPCRequest{Op: "explode"})
	assert.Equal(t, "unknown_op", resp.ErrorCode)

	resp = s.dispatch(IPCRequest{Op: "info", Model: "glove-mars-9000"})
	assert.Equal(t, "model_not_found", resp.ErrorCode)
}

func TestIPCHealth(t *testing.T) {
	s := newTestIPC(t)
	resp := s.dispatch(IPCRequest{Op: "health"})
	assert.Equal(t, "ok", resp.Status)
}
