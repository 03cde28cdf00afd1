package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ts-factory/bublik-logtree"
	"github.com/ts-factory/bublik-logtree/internal/logging"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

// DefaultMaxBody limits POST /tree/normalize payloads.
const DefaultMaxBody = 64 << 20

// Service is the part of logtree.Service the API needs.
type Service interface {
	Tree(ctx context.Context, runID int64) (*domain.Tree, error)
	Normalize(ctx context.Context, payload []byte) (*domain.Tree, error)
	NodePath(ctx context.Context, runID, nodeID int64) ([]int64, error)
	Invalidate(ctx context.Context, runID int64) error
}

var _ Service = (*logtree.Service)(nil)

// Server implements ServerInterface on top of a Service.
type Server struct {
	Service Service
	Logger  *slog.Logger
	MaxBody int64
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

type handlerConfig struct {
	logger  *slog.Logger
	metrics http.Handler
	maxBody int64
}

// Option configures NewHandler.
type Option func(*handlerConfig)

// WithLogger logs requests and failures to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *handlerConfig) {
		c.metrics = h
	}
}

// WithMaxBody limits the size of posted payloads.
func WithMaxBody(n int64) Option {
	return func(c *handlerConfig) {
		c.maxBody = n
	}
}

// NewHandler creates the HTTP handler of the API.
func NewHandler(svc Service, opts ...Option) http.Handler {
	cfg := handlerConfig{logger: logging.NewNop(), maxBody: DefaultMaxBody}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := &Server{Service: svc, Logger: cfg.logger, MaxBody: cfg.maxBody}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.logger))
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	return HandlerFromMux(server, r, server.paramError)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Bublik Log Tree API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// PathResponse is the body of GET /runs/{runId}/tree/nodes/{nodeId}/path.
type PathResponse struct {
	RunID  int64   `json:"runId"`
	NodeID int64   `json:"nodeId"`
	Path   []int64 `json:"path"`
}

// TreeResponse is the body of tree endpoints. Root is set for the nested
// format and Nodes for the flat one; both are absent for empty trees.
type TreeResponse struct {
	RunID      *int64             `json:"runId,omitempty"`
	Empty      bool               `json:"empty"`
	Compressed bool               `json:"compressed,omitempty"`
	Root       *domain.PathedNode `json:"root,omitempty"`
	Nodes      []domain.Node      `json:"nodes,omitempty"`
	Issues     []domain.Issue     `json:"issues,omitempty"`
}

func newTreeResponse(runID *int64, t *domain.Tree, format *TreeFormat) TreeResponse {
	resp := TreeResponse{RunID: runID, Empty: t.IsEmpty()}
	if resp.Empty {
		return resp
	}
	resp.Compressed = t.Compressed
	resp.Issues = t.Issues
	if format != nil && *format == FormatFlat {
		resp.Nodes = t.Nodes
	} else {
		resp.Root = tree.Nest(t)
	}
	return resp
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var pe *ParamError
	switch {
	case errors.As(err, &pe), errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRunNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrLockAcquire):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("Request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.Logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: status})
}

func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, err)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "logtree-http",
		"version":     strings.TrimSpace(logtree.Version),
		"api_version": apiVersion,
	})
}

// GetRunTree handles the GET /runs/{runId}/tree request.
func (s *Server) GetRunTree(w http.ResponseWriter, r *http.Request, runID int64, params GetRunTreeParams) {
	t, err := s.Service.Tree(r.Context(), runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newTreeResponse(&runID, t, params.Format))
}

// InvalidateRunTree handles the DELETE /runs/{runId}/tree request.
func (s *Server) InvalidateRunTree(w http.ResponseWriter, r *http.Request, runID int64) {
	if err := s.Service.Invalidate(r.Context(), runID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNodePath handles the GET /runs/{runId}/tree/nodes/{nodeId}/path request.
func (s *Server) GetNodePath(w http.ResponseWriter, r *http.Request, runID int64, nodeID int64) {
	path, err := s.Service.NodePath(r.Context(), runID, nodeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PathResponse{RunID: runID, NodeID: nodeID, Path: path})
}

// NormalizeTree handles the POST /tree/normalize request.
func (s *Server) NormalizeTree(w http.ResponseWriter, r *http.Request, params NormalizeTreeParams) {
	maxBody := s.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("payload exceeds %d bytes", tooLarge.Limit),
				Code:  http.StatusRequestEntityTooLarge,
			})
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
		return
	}

	t, err := s.Service.Normalize(r.Context(), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newTreeResponse(nil, t, params.Format))
}
