package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtube/internal/models"
	"truthtube/shared/config"
	"truthtube/shared/monitoring"
)

type stubAnalyzer struct {
	report *models.AnalysisReport
	err    error
	got    []string
	budget time.Duration
}

func (s *stubAnalyzer) Analyze(ctx context.Context, urls []string) (*models.AnalysisReport, error) {
	s.got = urls
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil, models.NewRequestError(models.KindInternal, "missing deadline")
	}
	s.budget = time.Until(deadline)
	return s.report, s.err
}

func newTestServer(t *testing.T, analyzer Analyzer) (*httptest.Server, *monitoring.Monitor) {
	t.Helper()
	monitor := monitoring.NewMonitor()
	srv := NewHTTPServer(&config.ServerConfig{TimeoutSeconds: 30}, analyzer, nil, monitor, "test")
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, monitor
}

func postAnalyze(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAnalyzeEndpoint(t *testing.T) {
	analyzer := &stubAnalyzer{report: &models.AnalysisReport{
		RequestID:  "req-1",
		AnalyzedAt: time.Now().UTC(),
		Videos:     []*models.VideoReport{},
		Failures:   []models.VideoFailure{},
		Summary:    "Analyzed 0 videos.",
	}}
	ts, monitor := newTestServer(t, analyzer)

	resp := postAnalyze(t, ts, `{"urls": ["https://youtu.be/aaaaaaaaaaa"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"https://youtu.be/aaaaaaaaaaa"}, analyzer.got)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "req-1", body["request_id"])
	assert.Contains(t, monitor.GetStatusSummary(), "1 analyze requests, 0 failed")
}

func TestAnalyzeUsesConfiguredTimeout(t *testing.T) {
	analyzer := &stubAnalyzer{report: &models.AnalysisReport{Videos: []*models.VideoReport{}}}
	ts, _ := newTestServer(t, analyzer)

	resp := postAnalyze(t, ts, `{"urls": ["https://youtu.be/aaaaaaaaaaa"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, analyzer.budget, 25*time.Second)
	assert.LessOrEqual(t, analyzer.budget, 30*time.Second)
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		kind   models.ErrorKind
	}{
		{"bad json", `{"urls": [`, nil, http.StatusBadRequest, models.KindInvalidRequest},
		{"invalid request", `{"urls": []}`, models.NewRequestError(models.KindInvalidRequest, "expected between 1 and 5 URLs, got 0"), http.StatusBadRequest, models.KindInvalidRequest},
		{"nothing resolved", `{"urls": ["x"]}`, models.NewRequestError(models.KindNoVideosResolved, "none"), http.StatusUnprocessableEntity, models.KindNoVideosResolved},
		{"deadline", `{"urls": ["x"]}`, models.NewRequestError(models.KindCollaboratorTimeout, "slow"), http.StatusGatewayTimeout, models.KindCollaboratorTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, monitor := newTestServer(t, &stubAnalyzer{err: tt.err})

			resp := postAnalyze(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Message)
			assert.Contains(t, monitor.GetStatusSummary(), "1 analyze requests, 1 failed")
		})
	}
}

func TestAnalyzeEndpointRejectsGet(t *testing.T) {
	ts, _ := newTestServer(t, &stubAnalyzer{})
	resp, err := http.Get(ts.URL + "/api/analyze")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestHealthAndStatusRoutes(t *testing.T) {
	ts, _ := newTestServer(t, &stubAnalyzer{})

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "No runs yet")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(models.KindInvalidURL))
	assert.Equal(t, statusClientClosedRequest, StatusFor(models.KindCanceled))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(models.KindVideoUnavailable))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(models.KindScoringError))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(models.KindInternal))
}
