package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/bastiangx/wordvec/internal/logger"
	"github.com/bastiangx/wordvec/internal/sysinfo"
	"github.com/bastiangx/wordvec/internal/validate"
	"github.com/bastiangx/wordvec/pkg/catalog"
	"github.com/bastiangx/wordvec/pkg/config"
	"github.com/bastiangx/wordvec/pkg/embedding"
	"github.com/bastiangx/wordvec/pkg/modelcache"
	"github.com/bastiangx/wordvec/pkg/similarity"
)

const (
	statusSuccess = "success"
	serviceName   = "wordvec"

	defaultPrefixLimit = 10
	maxPrefixLimit     = 100
)

// Server serves the JSON API over HTTP.
type Server struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	cache   *modelcache.Cache
	limiter *rate.Limiter
	router  chi.Router
	httpd   *http.Server
	log     *log.Logger
}

// NewServer wires the router. The rate limiter is global across clients;
// a rate_limit of 0 in config disables it.
func NewServer(cfg *config.Config, cat *catalog.Catalog, cache *modelcache.Cache) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: cat,
		cache:   cache,
		log:     logger.New("http"),
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/compare", s.handleCompare)
		r.Post("/compare-batch", s.handleCompareBatch)
		r.Post("/random", s.handleRandom)
		r.Post("/exists", s.handleExists)
		r.Post("/prefix", s.handlePrefix)
		r.Get("/info", s.handleInfo)
		r.Get("/models", s.handleModels)
		r.Delete("/models/{model}", s.handleUnload)
	})

	s.router = r
	return s
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.httpd = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("HTTP server listening on %s", s.cfg.Addr())
	err := s.httpd.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and releases loaded models.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpd != nil {
		err = s.httpd.Shutdown(ctx)
	}
	n := s.cache.UnloadAll()
	log.Infof("Shutdown complete, released %d models", n)
	return err
}

// logRequests logs method, path, status and latency at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond))
	})
}

// rateLimit rejects requests above the configured global rate with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				ErrorCode: "rate_limit_exceeded",
				Message:   "too many requests, slow down",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolveModel substitutes the configured default for an empty model field.
func (s *Server) resolveModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return s.cfg.Models.Default
	}
	return model
}

// acquire resolves the model name and fetches its table through the cache.
func (s *Server) acquire(r *http.Request, model string) (embedding.Table, string, error) {
	id := s.resolveModel(model)
	t, err := s.cache.Acquire(r.Context(), id)
	return t, id, err
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	word1, err := validate.Word(req.Word1, "word1")
	if err != nil {
		writeError(w, err)
		return
	}
	word2, err := validate.Word(req.Word2, "word2")
	if err != nil {
		writeError(w, err)
		return
	}

	t, id, err := s.acquire(r, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	sim, err := similarity.Similarity(t, word1, word2)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CompareResponse{
		Word1:      word1,
		Word2:      word2,
		Model:      id,
		Similarity: sim,
		Status:     statusSuccess,
	})
}

func (s *Server) handleCompareBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchCompareRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := validate.BatchSize(len(req.Comparisons)); err != nil {
		writeError(w, err)
		return
	}
	if mb := s.cfg.Server.MaxBatch; mb > 0 && len(req.Comparisons) > mb {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			ErrorCode: "validation_error",
			Message:   "too many comparisons in one request",
			Field:     "comparisons",
		})
		return
	}
	// Malformed pairs fail the whole request; words absent from the
	// vocabulary only fail their own pair below.
	for i, p := range req.Comparisons {
		word1, err := validate.Word(p.Word1, "word1")
		if err != nil {
			writeError(w, err)
			return
		}
		word2, err := validate.Word(p.Word2, "word2")
		if err != nil {
			writeError(w, err)
			return
		}
		req.Comparisons[i] = similarity.Pair{Word1: word1, Word2: word2}
	}

	t, id, err := s.acquire(r, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	res := similarity.BatchSimilarity(r.Context(), t, req.Comparisons)
	writeJSON(w, http.StatusOK, BatchCompareResponse{
		BatchResult: res,
		Model:       id,
		Status:      statusSuccess,
	})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	var req RandomRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	t, id, err := s.acquire(r, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	word := similarity.SampleWord(t, similarity.SampleOptions{
		BatchSize:  s.cfg.Sampler.BatchSize,
		MaxRetries: s.cfg.Sampler.MaxRetries,
	})
	writeJSON(w, http.StatusOK, RandomResponse{
		Word:   word,
		Model:  id,
		Status: statusSuccess,
	})
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	var req ExistsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	word, err := validate.Word(req.Word, "word")
	if err != nil {
		writeError(w, err)
		return
	}

	t, id, err := s.acquire(r, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := ExistsResponse{
		Word:   word,
		Model:  id,
		Status: statusSuccess,
	}
	if rank, ok := t.Rank(word); ok {
		resp.Exists = true
		resp.VocabularyRank = &rank
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrefix(w http.ResponseWriter, r *http.Request) {
	var req PrefixRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	prefix, err := validate.Word(req.Prefix, "prefix")
	if err != nil {
		writeError(w, err)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPrefixLimit
	}
	if limit > maxPrefixLimit {
		limit = maxPrefixLimit
	}

	t, id, err := s.acquire(r, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	hits := t.PrefixSearch(prefix, limit)
	words := make([]PrefixMatch, len(hits))
	for i, h := range hits {
		words[i] = PrefixMatch{Word: h.Word, Rank: h.Rank}
	}
	writeJSON(w, http.StatusOK, PrefixResponse{
		Prefix: prefix,
		Words:  words,
		Count:  len(words),
		Model:  id,
		Status: statusSuccess,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	t, id, err := s.acquire(r, r.URL.Query().Get("model"))
	if err != nil {
		writeError(w, err)
		return
	}
	info := similarity.GetInfo(t)
	writeJSON(w, http.StatusOK, InfoResponse{
		Model:          id,
		VocabularySize: info.VocabularySize,
		VectorSize:     info.VectorSize,
		Status:         statusSuccess,
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	loaded := make(map[string]modelcache.Info)
	for _, in := range s.cache.Loaded() {
		loaded[in.ID] = in
	}

	list := s.catalog.List()
	models := make([]ModelEntry, 0, len(list))
	for _, m := range list {
		entry := ModelEntry{
			Model:       m.ID,
			Description: m.Description,
			SizeMB:      m.SizeMB,
			VocabSize:   m.VocabSize,
			Dimension:   m.Dimension,
		}
		if in, ok := loaded[m.ID]; ok {
			entry.Loaded = true
			secs := in.LoadSeconds
			entry.LoadSeconds = &secs
		}
		models = append(models, entry)
	}
	writeJSON(w, http.StatusOK, ModelsResponse{
		Models:  models,
		Count:   len(models),
		Default: s.cfg.Models.Default,
		Status:  statusSuccess,
	})
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "model")
	if !s.catalog.Has(id) {
		writeError(w, &modelcache.UnknownModelError{Model: id, Available: s.catalog.IDs()})
		return
	}
	writeJSON(w, http.StatusOK, UnloadResponse{
		Model:    id,
		Unloaded: s.cache.Unload(id),
		Status:   statusSuccess,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Service:       serviceName,
		LoadedModels:  s.cache.LoadedIDs(),
		Models:        s.cache.Loaded(),
		ModelMemoryMB: s.cache.EstimateMemoryMB(),
		Memory:        sysinfo.Snapshot(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":       serviceName,
		"description":   "word embedding similarity service",
		"default_model": s.cfg.Models.Default,
		"endpoints": []string{
			"POST /api/compare",
			"POST /api/compare-batch",
			"POST /api/random",
			"POST /api/exists",
			"POST /api/prefix",
			"GET /api/info",
			"GET /api/models",
			"DELETE /api/models/{model}",
			"GET /health",
		},
	})
}

// decodeJSON decodes the request body into dst, replying 400 on malformed
// JSON. allowEmpty tolerates an absent body for endpoints where every field
// is optional. Returns false when a response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		ErrorCode: "invalid_json",
		Message:   "request body must be valid JSON",
	})
	return false
}

// writeError maps domain errors to HTTP status codes and a uniform body.
func writeError(w http.ResponseWriter, err error) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			ErrorCode: "validation_error",
			Message:   ve.Error(),
			Field:     ve.Field,
		})
		return
	}

	var wnf *similarity.WordNotFoundError
	if errors.As(err, &wnf) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			ErrorCode: "word_not_found",
			Message:   wnf.Error(),
		})
		return
	}

	var ume *modelcache.UnknownModelError
	if errors.As(err, &ume) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			ErrorCode: "model_not_found",
			Message:   ume.Error(),
		})
		return
	}

	if modelcache.IsTimeout(err) {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			ErrorCode: "model_load_timeout",
			Message:   "model load timed out, try again later",
		})
		return
	}

	var le *embedding.LoadError
	if errors.As(err, &le) {
		var pathErr *fs.PathError
		if errors.Is(err, embedding.ErrNotFound) || errors.As(err, &pathErr) {
			// Missing file or storage trouble.
			writeJSON(w, http.StatusBadGateway, ErrorResponse{
				ErrorCode: "model_unavailable",
				Message:   le.Error(),
			})
			return
		}
		// The file is present but unusable.
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			ErrorCode: "model_load_failed",
			Message:   le.Error(),
		})
		return
	}

	if errors.Is(err, context.Canceled) {
		// Client went away; the status code is moot but keep the map total.
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			ErrorCode: "request_cancelled",
			Message:   "request cancelled",
		})
		return
	}

	log.Errorf("Unhandled error in request: %v", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "internal_error",
		Message:   "internal server error",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}
