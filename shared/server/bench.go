package server

import (
	"context"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/transport/http"

	"truthtube/internal/models"
)

// ScorerBench runs individual scorers for debugging.
type ScorerBench interface {
	Info(m models.Metric) (*models.ScorerInfo, error)
	TestMetric(ctx context.Context, m models.Metric, in models.ScorerInput) (*models.ScorerTest, error)
	TestOriginality(ctx context.Context, urls []string) (*models.Comparison, error)
}

// benchRoutes maps the path segment under /api/agents/ to its metric.
var benchRoutes = map[string]models.Metric{
	"density":     models.MetricDensity,
	"redundancy":  models.MetricRedundancy,
	"title":       models.MetricTitleRelevance,
	"originality": models.MetricOriginality,
}

type originalityRequest struct {
	URLs []string `json:"youtube_urls"`
}

type benchHandler struct {
	bench ScorerBench
}

func registerBench(srv *http.Server, bench ScorerBench) {
	h := &benchHandler{bench: bench}
	for name, metric := range benchRoutes {
		srv.HandleFunc("/api/agents/"+name+"/info", h.info(metric))
		if metric == models.MetricOriginality {
			srv.HandleFunc("/api/agents/"+name+"/test", h.testOriginality)
		} else {
			srv.HandleFunc("/api/agents/"+name+"/test", h.testMetric(metric))
		}
	}
}

func (h *benchHandler) info(m models.Metric) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !allowMethod(w, r, nethttp.MethodGet) {
			return
		}
		info, err := h.bench.Info(m)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, info)
	}
}

func (h *benchHandler) testMetric(m models.Metric) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !allowMethod(w, r, nethttp.MethodPost) {
			return
		}
		var in models.ScorerInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, err)
			return
		}
		result, err := h.bench.TestMetric(r.Context(), m, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, result)
	}
}

func (h *benchHandler) testOriginality(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !allowMethod(w, r, nethttp.MethodPost) {
		return
	}
	var req originalityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cmp, err := h.bench.TestOriginality(r.Context(), req.URLs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, cmp)
}
