// Package server exposes the parsing engine over HTTP. Parsing stays
// synchronous per request; the server adds caching, rate limiting, and
// optional run recording around the same pipeline the CLI runs.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/statement-cli/internal/categorize"
	"github.com/sells-group/statement-cli/internal/config"
	"github.com/sells-group/statement-cli/internal/engine"
	"github.com/sells-group/statement-cli/internal/model"
	"github.com/sells-group/statement-cli/internal/store"
	"github.com/sells-group/statement-cli/internal/templates"
)

// Server routes HTTP requests to the engine. The store may be nil; the
// runs endpoint then reports that recording is off.
type Server struct {
	cfg      *config.Config
	engine   *engine.Engine
	tpls     *templates.Set
	store    store.Store
	results  *cache.Cache
	limiters *ipLimiters
	version  string
}

// New wires a Server. Parse results are cached by content hash, safe
// because the pipeline is deterministic for identical bytes.
func New(cfg *config.Config, eng *engine.Engine, tpls *templates.Set, st store.Store, version string) *Server {
	return &Server{
		cfg:      cfg,
		engine:   eng,
		tpls:     tpls,
		store:    st,
		results:  cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL),
		limiters: newIPLimiters(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
		version:  version,
	}
}

// Handler builds the chi router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigin,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length"},
		MaxAge:         300,
	}))
	if s.cfg.Server.RateLimit > 0 {
		r.Use(s.rateLimit)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/parse", s.handleParse)
		r.Get("/templates", s.handleTemplates)
		r.Post("/templates/validate", s.handleValidateTemplate)
		r.Get("/runs", s.handleRuns)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

// parseResponse mirrors the CLI's output per file plus an aggregate
// view across the whole upload.
type parseResponse struct {
	Files        []fileResult        `json:"files"`
	Transactions []model.Transaction `json:"transactions"`
	Score        float64             `json:"score"`
	Warnings     []string            `json:"warnings"`
}

type fileResult struct {
	Source string         `json:"source"`
	Error  string         `json:"error,omitempty"`
	Result *engine.Result `json:"result,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Server.MaxUploadMB
	if maxBytes <= 0 {
		maxBytes = 32
	}
	maxBytes <<= 20
	if r.ContentLength > maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}
	// Chunked bodies have no Content-Length; the reader enforces the cap.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, `no files uploaded; use multipart field "files"`)
		return
	}

	q := r.URL.Query().Get("categorize")
	categorized := q == "1" || q == "true"

	resp := parseResponse{
		Files:        make([]fileResult, 0, len(files)),
		Transactions: []model.Transaction{},
		Warnings:     []string{},
	}
	var scores []float64
	for _, fh := range files {
		res, err := s.parseUpload(r.Context(), fh, categorized)
		if err != nil {
			resp.Files = append(resp.Files, fileResult{Source: fh.Filename, Error: err.Error()})
			resp.Warnings = append(resp.Warnings, fh.Filename+": "+err.Error())
			continue
		}
		resp.Files = append(resp.Files, fileResult{Source: fh.Filename, Result: res})
		resp.Transactions = append(resp.Transactions, res.Transactions...)
		scores = append(scores, res.Quality.Score)
	}

	if len(scores) > 0 {
		var sum float64
		for _, v := range scores {
			sum += v
		}
		resp.Score = math.Round(sum/float64(len(scores))*10) / 10
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseUpload runs one file through the engine, serving repeats of the
// same bytes from cache. Fresh parses are recorded to the store when one
// is configured; recording failures degrade to a warning.
func (s *Server) parseUpload(ctx context.Context, fh *multipart.FileHeader, categorized bool) (*engine.Result, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, eris.Wrap(err, "server: open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, eris.Wrap(err, "server: read upload")
	}

	key := resultKey(data, categorized)
	if hit, ok := s.results.Get(key); ok {
		return hit.(*engine.Result), nil
	}

	res, err := s.engine.ParseBytes(ctx, data, fh.Filename)
	if err != nil {
		return nil, err
	}
	if categorized {
		categorize.Apply(res.Transactions)
	}
	s.results.Set(key, res, cache.DefaultExpiration)

	if s.store != nil {
		if err := s.store.SaveRun(ctx, store.FromResult(res, data)); err != nil {
			zap.L().Warn("run recording failed",
				zap.String("source", fh.Filename),
				zap.Error(err))
		}
	}
	return res, nil
}

// resultKey identifies a parse outcome: same bytes and same options
// always produce the same result.
func resultKey(data []byte, categorized bool) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + strconv.FormatBool(categorized)
}

type templateInfo struct {
	Name    string   `json:"name"`
	Anchors []string `json:"anchors"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	all := s.tpls.All()
	infos := make([]templateInfo, 0, len(all))
	for _, t := range all {
		infos = append(infos, templateInfo{Name: t.Name, Anchors: t.Anchors})
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": infos, "count": len(infos)})
}

func (s *Server) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	t, err := templates.Parse(data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": t.Name})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run store not configured")
		return
	}

	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPLimiters(rps rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.get(clientIP(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
