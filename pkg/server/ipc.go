package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordvec/internal/validate"
	"github.com/bastiangx/wordvec/pkg/config"
	"github.com/bastiangx/wordvec/pkg/embedding"
	"github.com/bastiangx/wordvec/pkg/modelcache"
	"github.com/bastiangx/wordvec/pkg/similarity"
)

// IPCServer answers msgpack requests over stdin/stdout for host processes
// that embed the service instead of talking HTTP.
type IPCServer struct {
	cfg   *config.Config
	cache *modelcache.Cache
	dec   *msgpack.Decoder
	enc   *msgpack.Encoder
	out   *bufio.Writer
}

// NewIPCServer wires an IPC server to stdin/stdout.
func NewIPCServer(cfg *config.Config, cache *modelcache.Cache) *IPCServer {
	out := bufio.NewWriter(os.Stdout)
	return &IPCServer{
		cfg:   cfg,
		cache: cache,
		dec:   msgpack.NewDecoder(bufio.NewReader(os.Stdin)),
		enc:   msgpack.NewEncoder(out),
		out:   out,
	}
}

// Start reads requests until stdin closes. Each request gets exactly one
// response carrying the request id.
func (s *IPCServer) Start() error {
	log.Debug("Starting IPC server on stdio")
	s.send(IPCResponse{Status: "ready"})

	for {
		var req IPCRequest
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding IPC request: %v", err)
			return err
		}
		s.handle(req)
	}
}

func (s *IPCServer) handle(req IPCRequest) {
	start := time.Now()
	resp := s.dispatch(req)
	resp.ID = req.ID
	resp.TimeTaken = time.Since(start).Microseconds()
	s.send(resp)
}

func (s *IPCServer) dispatch(req IPCRequest) IPCResponse {
	switch req.Op {
	case "compare":
		return s.opCompare(req)
	case "exists":
		return s.opExists(req)
	case "random":
		return s.opRandom(req)
	case "info":
		return s.opInfo(req)
	case "health":
		return IPCResponse{Status: "ok", Loaded: s.cache.LoadedIDs()}
	default:
		return errIPC("unknown_op", fmt.Sprintf("unknown op: %q", req.Op))
	}
}

func (s *IPCServer) opCompare(req IPCRequest) IPCResponse {
	word1, err := validate.Word(req.Word1, "w1")
	if err != nil {
		return errIPC("validation_error", err.Error())
	}
	word2, err := validate.Word(req.Word2, "w2")
	if err != nil {
		return errIPC("validation_error", err.Error())
	}
	t, id, resp := s.table(req.Model)
	if t == nil {
		return resp
	}
	sim, err := similarity.Similarity(t, word1, word2)
	if err != nil {
		return errIPC("word_not_found", err.Error())
	}
	return IPCResponse{Status: statusSuccess, Model: id, Similarity: &sim}
}

func (s *IPCServer) opExists(req IPCRequest) IPCResponse {
	word, err := validate.Word(req.Word, "w")
	if err != nil {
		return errIPC("validation_error", err.Error())
	}
	t, id, resp := s.table(req.Model)
	if t == nil {
		return resp
	}
	ex := similarity.Exists(t, word)
	return IPCResponse{Status: statusSuccess, Model: id, Word: word, Exists: &ex}
}

func (s *IPCServer) opRandom(req IPCRequest) IPCResponse {
	t, id, resp := s.table(req.Model)
	if t == nil {
		return resp
	}
	word := similarity.SampleWord(t, similarity.SampleOptions{
		BatchSize:  s.cfg.Sampler.BatchSize,
		MaxRetries: s.cfg.Sampler.MaxRetries,
	})
	return IPCResponse{Status: statusSuccess, Model: id, Word: word}
}

func (s *IPCServer) opInfo(req IPCRequest) IPCResponse {
	t, id, resp := s.table(req.Model)
	if t == nil {
		return resp
	}
	info := similarity.GetInfo(t)
	return IPCResponse{
		Status:     statusSuccess,
		Model:      id,
		VocabSize:  info.VocabularySize,
		VectorSize: info.VectorSize,
	}
}

// table acquires the requested or default model. On failure the returned
// table is nil and the response carries the error.
func (s *IPCServer) table(model string) (embedding.Table, string, IPCResponse) {
	id := model
	if id == "" {
		id = s.cfg.Models.Default
	}
	t, err := s.cache.Acquire(context.Background(), id)
	if err != nil {
		var ume *modelcache.UnknownModelError
		if errors.As(err, &ume) {
			return nil, id, errIPC("model_not_found", err.Error())
		}
		return nil, id, errIPC("model_load_failed", err.Error())
	}
	return t, id, IPCResponse{}
}

func errIPC(code, msg string) IPCResponse {
	return IPCResponse{Status: "error", ErrorCode: code, Error: msg}
}

// send encodes one response and flushes so the host process sees it
// immediately.
func (s *IPCServer) send(resp IPCResponse) {
	if err := s.enc.Encode(resp); err != nil {
		log.Errorf("Encoding IPC response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Flushing IPC response: %v", err)
	}
}
