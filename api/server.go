// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs cost logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ifc-cost/core/engine"
	"ifc-cost/core/rules"
	"ifc-cost/internal/errors"
	"ifc-cost/internal/logging"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	version string
	config  Config
	logger  *zap.Logger
}

// Config configures the server
type Config struct {
	// CacheSize is the number of cached responses, 0 disables the cache
	CacheSize int

	// MaxBodyBytes limits request bodies
	MaxBodyBytes int64

	// RequestTimeout bounds a single calculation
	RequestTimeout time.Duration
}

// DefaultConfig returns server defaults
func DefaultConfig() Config {
	return Config{
		CacheSize:      256,
		MaxBodyBytes:   10 << 20,
		RequestTimeout: 30 * time.Second,
	}
}

// Option configures a Server
type Option func(*Server)

// WithConfig replaces the server configuration
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new API server
func NewServer(version string, eng *engine.Engine, catalog *rules.Catalog, opts ...Option) (*Server, error) {
	s := &Server{
		mux:     http.NewServeMux(),
		version: version,
		config:  DefaultConfig(),
		logger:  logging.Named(logging.ComponentAPI),
	}
	for _, opt := range opts {
		opt(s)
	}

	handler, err := NewHandler(eng, catalog, s.config.CacheSize, s.logger)
	if err != nil {
		return nil, err
	}
	s.handler = handler

	s.registerRoutes()
	return s, nil
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /costs/calculate", s.handleCalculate)
	s.mux.HandleFunc("GET /costs/health", s.handleHealth)

	// Supporting endpoints
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.HandleFunc("GET /costs/rules", s.handleRules)
	s.mux.HandleFunc("POST /costs/rules/reload", s.handleReload)
}

// handleCalculate handles POST /costs/calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CalculateRequest
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.handler.Validate(&req); err != nil {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	// Execute engine (NO COST LOGIC HERE)
	body, cached, err := s.handler.Execute(ctx, &req)
	if err != nil {
		s.logger.Warn("calculation request failed",
			logging.RequestID(requestID(r.Context())),
			logging.PriceListID(req.PriceListID),
			zap.Error(err))
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("calculation served",
		logging.RequestID(requestID(r.Context())),
		zap.Int("elements", len(req.Elements)),
		zap.Bool("cached", cached),
		zap.Duration("duration", time.Since(start)))

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleHealth handles GET /costs/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, VersionResponse{
		Version:    s.version,
		Engine:     "ifc-cost",
		APIVersion: "v1",
	}, http.StatusOK)
}

// handleRules handles GET /costs/rules?price_list_id=...
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("price_list_id")
	if id == "" {
		id = rules.DefaultPriceList
	}

	rs, err := s.handler.Rules(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, RulesResponse{
		PriceListID: id,
		PriceLists:  s.handler.catalog.IDs(),
		Providers:   rs.EnabledProviders(),
		Rules:       rs,
	}, http.StatusOK)
}

// handleReload handles POST /costs/rules/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.handler.Invalidate()
	s.writeJSON(w, map[string]string{"status": "reloaded"}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	}, status)
}

// writeDomainError maps error types to status codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	t, ok := errors.TypeOf(err)
	if !ok {
		t = errors.TypeCalculation
	}

	switch t {
	case errors.TypeNotFound:
		s.writeError(w, string(t), err.Error(), http.StatusNotFound)
	case errors.TypeInput:
		s.writeError(w, string(t), err.Error(), http.StatusBadRequest)
	default:
		s.writeError(w, string(errors.TypeCalculation), err.Error(), http.StatusInternalServerError)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	s.mux.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
