// Package api - Thin HTTP layer over the judgment engine
// The API is ONLY responsible for: input decoding, validation, engine calls and
// output serialization. It never makes judgment decisions itself.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookmark-engagement/core/batch"
	"bookmark-engagement/core/judgment"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 4 << 20

// Server is the API server
type Server struct {
	engine  *judgment.Engine
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
	workers int
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBatchWorkers bounds concurrent judgments per batch request
func WithBatchWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewServer creates a new API server
func NewServer(engine *judgment.Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		mux:     http.NewServeMux(),
		version: version,
		logger:  zap.NewNop(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /judge", s.handleJudge)
	s.mux.HandleFunc("POST /judge/batch", s.handleBatch)
	s.mux.HandleFunc("GET /thresholds", s.handleThresholds)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleJudge handles POST /judge
func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := generateRequestID()

	var req JudgeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, requestID, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestID, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result := s.engine.Judge(req)
	s.logger.Info("judged",
		zap.String("request_id", requestID),
		zap.Bool("passed", result.Passed()),
		zap.Int("level", int(result.FinalLevel())),
	)

	s.writeJSON(w, &JudgeResponse{
		RequestID: requestID,
		Result:    result,
		Text:      judgment.ResultText(result),
		Metadata:  s.metadata(req, start),
	}, http.StatusOK)
}

// handleBatch handles POST /judge/batch
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := generateRequestID()

	var req BatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, requestID, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Records) > maxBatchRecords {
		s.writeError(w, requestID, "VALIDATION_ERROR",
			fmt.Sprintf("batch has %d records, limit is %d", len(req.Records), maxBatchRecords), http.StatusBadRequest)
		return
	}
	for i, rec := range req.Records {
		if err := rec.Validate(); err != nil {
			s.writeError(w, requestID, "VALIDATION_ERROR", fmt.Sprintf("record %d: %v", i, err), http.StatusBadRequest)
			return
		}
	}

	report, err := batch.Judge(r.Context(), s.engine, req.Records, s.workers)
	if err != nil {
		s.writeError(w, requestID, "ENGINE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("batch judged",
		zap.String("request_id", requestID),
		zap.Int("total", report.Summary.Total),
		zap.Int("passed", report.Summary.Passed),
	)

	s.writeJSON(w, &BatchResponse{
		RequestID: requestID,
		Items:     report.Items,
		Summary:   report.Summary,
		Metadata:  s.metadata(req, start),
	}, http.StatusOK)
}

// handleThresholds handles GET /thresholds
func (s *Server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.ThresholdsInfo(), http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "bookmark-engagement",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) metadata(req interface{}, start time.Time) *ResponseMetadata {
	return &ResponseMetadata{
		InputHash:     computeInputHash(req),
		EngineVersion: s.version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, requestID, code, message string, status int) {
	s.logger.Debug("request rejected",
		zap.String("request_id", requestID),
		zap.String("code", code),
		zap.String("message", message),
	)
	s.writeJSON(w, &ErrorResponse{
		RequestID: requestID,
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Helper functions

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func computeInputHash(req interface{}) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func generateRequestID() string {
	return uuid.NewString()
}
