// Package server exposes the analyzer over HTTP on a kratos transport.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/sirupsen/logrus"

	"truthtube/internal/models"
	"truthtube/shared/config"
	"truthtube/shared/logger"
	"truthtube/shared/monitoring"
)

const (
	maxBodyBytes = 64 << 10

	// statusClientClosedRequest is the de facto code for a caller that went away.
	statusClientClosedRequest = 499
)

// Analyzer is the single operation the HTTP surface exposes.
type Analyzer interface {
	Analyze(ctx context.Context, urls []string) (*models.AnalysisReport, error)
}

type analyzeRequest struct {
	URLs []string `json:"urls"`
}

type errorResponse struct {
	Kind    models.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type handler struct {
	analyzer Analyzer
	monitor  *monitoring.Monitor
}

// NewHTTPServer serves analysis, health and status. When bench is non-nil the
// per-scorer test routes under /api/agents/ are mounted too.
func NewHTTPServer(c *config.ServerConfig, analyzer Analyzer, bench ScorerBench, monitor *monitoring.Monitor, version string) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Filter(accessLog),
		// Bounds every request context; zero disables the kratos default.
		http.Timeout(time.Duration(c.TimeoutSeconds) * time.Second),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}

	h := &handler{
		analyzer: analyzer,
		monitor:  monitor,
	}

	srv := http.NewServer(opts...)
	srv.HandleFunc("/api/analyze", h.analyze)
	srv.HandleFunc("/api/health", monitoring.HealthHandler(monitor, version))
	srv.HandleFunc("/status", monitoring.StatusHandler(monitor))
	if bench != nil {
		registerBench(srv, bench)
	}
	return srv
}

func (h *handler) analyze(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !allowMethod(w, r, nethttp.MethodPost) {
		return
	}

	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		h.monitor.RecordRequest(err)
		writeError(w, err)
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), req.URLs)
	h.monitor.RecordRequest(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, report)
}

func allowMethod(w nethttp.ResponseWriter, r *nethttp.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, nethttp.StatusMethodNotAllowed, errorResponse{Kind: models.KindInvalidRequest, Message: "use " + method})
	return false
}

func decodeBody(r *nethttp.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return models.NewRequestError(models.KindInvalidRequest, "invalid JSON body: %v", err)
	}
	return nil
}

// StatusFor maps an error onto the HTTP status returned to callers.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidRequest, models.KindInvalidURL:
		return nethttp.StatusBadRequest
	case models.KindNoVideosResolved, models.KindVideoUnavailable:
		return nethttp.StatusUnprocessableEntity
	case models.KindCanceled:
		return statusClientClosedRequest
	case models.KindCollaboratorTimeout:
		return nethttp.StatusGatewayTimeout
	default:
		return nethttp.StatusInternalServerError
	}
}

func writeError(w nethttp.ResponseWriter, err error) {
	resp := errorResponse{Kind: models.KindOf(err), Message: err.Error()}
	var reqErr *models.RequestError
	if errors.As(err, &reqErr) {
		resp.Message = reqErr.Message
	}
	writeJSON(w, StatusFor(resp.Kind), resp)
}

func writeJSON(w nethttp.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnf("Failed to write response: %v", err)
	}
}

type statusRecorder struct {
	nethttp.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("HTTP request")
	})
}
