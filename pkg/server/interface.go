/*
Package server exposes the embedding query core over HTTP, with an
alternate msgpack IPC surface over stdin/stdout.

The HTTP API accepts and returns JSON. Successful responses carry
status "success"; failures carry a machine-readable error_code and a human
message. All model work is delegated to the model cache; handlers only
validate input and translate errors to transport status codes.

# Endpoints

	POST   /api/compare        compare two words
	POST   /api/compare-batch  compare many pairs, per-pair failure isolation
	POST   /api/random         sample a clean random word
	POST   /api/exists         vocabulary membership check
	POST   /api/prefix         vocabulary prefix search
	GET    /api/info           model vocabulary size and dimensionality
	GET    /api/models         catalog listing with loaded state
	DELETE /api/models/{model} unload a loaded model
	GET    /health             service health and memory figures

# IPC

The IPC mode speaks length-delimited msgpack messages on stdio for
embedding into editors and other host processes. Each request carries an
id, an op (compare, exists, random, info, health) and the op's arguments;
responses echo the id and include timing in microseconds.
*/
package server

import (
	"github.com/bastiangx/wordvec/internal/sysinfo"
	"github.com/bastiangx/wordvec/pkg/modelcache"
	"github.com/bastiangx/wordvec/pkg/similarity"
)

// CompareRequest asks for the similarity of two words.
type CompareRequest struct {
	Word1 string `json:"word1"`
	Word2 string `json:"word2"`
	Model string `json:"model,omitempty"`
}

// CompareResponse reports one similarity score.
type CompareResponse struct {
	Word1      string  `json:"word1"`
	Word2      string  `json:"word2"`
	Model      string  `json:"model"`
	Similarity float64 `json:"similarity"`
	Status     string  `json:"status"`
}

// BatchCompareRequest asks for similarities over many pairs.
type BatchCompareRequest struct {
	Comparisons []similarity.Pair `json:"comparisons"`
	Model       string            `json:"model,omitempty"`
}

// BatchCompareResponse reports per-pair results and failure counts.
type BatchCompareResponse struct {
	similarity.BatchResult
	Model  string `json:"model"`
	Status string `json:"status"`
}

// RandomRequest optionally names the model to sample from.
type RandomRequest struct {
	Model string `json:"model,omitempty"`
}

// RandomResponse carries the sampled word.
type RandomResponse struct {
	Word   string `json:"word"`
	Model  string `json:"model"`
	Status string `json:"status"`
}

// ExistsRequest asks whether a word is in the vocabulary.
type ExistsRequest struct {
	Word  string `json:"word"`
	Model string `json:"model,omitempty"`
}

// ExistsResponse reports membership; VocabularyRank is included only when
// the word exists.
type ExistsResponse struct {
	Word           string `json:"word"`
	Exists         bool   `json:"exists"`
	VocabularyRank *int   `json:"vocabulary_rank,omitempty"`
	Model          string `json:"model"`
	Status         string `json:"status"`
}

// PrefixRequest asks for vocabulary words starting with a prefix.
type PrefixRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit,omitempty"`
	Model  string `json:"model,omitempty"`
}

// PrefixMatch is one prefix search hit.
type PrefixMatch struct {
	Word string `json:"word"`
	Rank int    `json:"rank"`
}

// PrefixResponse lists prefix search hits ordered by ascending rank.
type PrefixResponse struct {
	Prefix string        `json:"prefix"`
	Words  []PrefixMatch `json:"words"`
	Count  int           `json:"count"`
	Model  string        `json:"model"`
	Status string        `json:"status"`
}

// InfoResponse describes a loaded model.
type InfoResponse struct {
	Model          string `json:"model"`
	VocabularySize int    `json:"vocabulary_size"`
	VectorSize     int    `json:"vector_size"`
	Status         string `json:"status"`
}

// ModelEntry is one catalog row in the models listing.
type ModelEntry struct {
	Model       string   `json:"model"`
	Description string   `json:"description"`
	SizeMB      int      `json:"estimated_size_mb"`
	VocabSize   int      `json:"estimated_vocab_size"`
	Dimension   int      `json:"dimension"`
	Loaded      bool     `json:"loaded"`
	LoadSeconds *float64 `json:"load_time_seconds,omitempty"`
}

// ModelsResponse lists every catalog model.
type ModelsResponse struct {
	Models  []ModelEntry `json:"models"`
	Count   int          `json:"count"`
	Default string       `json:"default_model"`
	Status  string       `json:"status"`
}

// UnloadResponse reports the outcome of an explicit unload.
type UnloadResponse struct {
	Model    string `json:"model"`
	Unloaded bool   `json:"unloaded"`
	Status   string `json:"status"`
}

// HealthResponse reports service liveness and memory figures.
type HealthResponse struct {
	Status        string               `json:"status"`
	Service       string               `json:"service"`
	LoadedModels  []string             `json:"loaded_models"`
	Models        []modelcache.Info    `json:"models,omitempty"`
	ModelMemoryMB float64              `json:"model_memory_mb"`
	Memory        sysinfo.MemoryReport `json:"memory"`
	Timestamp     string               `json:"timestamp"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
}

// IPC messages. Short msgpack tags keep messages compact.

// IPCRequest is one stdio request.
type IPCRequest struct {
	ID    string `msgpack:"id"`
	Op    string `msgpack:"op"`
	Word  string `msgpack:"w,omitempty"`
	Word1 string `msgpack:"w1,omitempty"`
	Word2 string `msgpack:"w2,omitempty"`
	Model string `msgpack:"m,omitempty"`
}

// IPCResponse is one stdio response. Only fields relevant to the op are
// populated.
type IPCResponse struct {
	ID         string   `msgpack:"id"`
	Status     string   `msgpack:"st"`
	Model      string   `msgpack:"m,omitempty"`
	Word       string   `msgpack:"w,omitempty"`
	Exists     *bool    `msgpack:"ex,omitempty"`
	Similarity *float64 `msgpack:"sim,omitempty"`
	VocabSize  int      `msgpack:"vs,omitempty"`
	VectorSize int      `msgpack:"d,omitempty"`
	Loaded     []string `msgpack:"lm,omitempty"`
	Error      string   `msgpack:"e,omitempty"`
	ErrorCode  string   `msgpack:"ec,omitempty"`
	TimeTaken  int64    `msgpack:"t"`
}
