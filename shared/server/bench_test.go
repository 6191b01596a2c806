package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtube/internal/models"
	"truthtube/shared/config"
	"truthtube/shared/monitoring"
)

type stubBench struct {
	metric models.Metric
	input  models.ScorerInput
	urls   []string
	err    error
}

func (s *stubBench) Info(m models.Metric) (*models.ScorerInfo, error) {
	return &models.ScorerInfo{Scorer: "Stub", Metric: m, Model: "test-model"}, nil
}

func (s *stubBench) TestMetric(_ context.Context, m models.Metric, in models.ScorerInput) (*models.ScorerTest, error) {
	s.metric, s.input = m, in
	if s.err != nil {
		return nil, s.err
	}
	return &models.ScorerTest{
		Video:  &models.ResolvedVideo{Ref: models.VideoRef{ID: "transcript"}, Title: in.Title},
		Result: models.NewMetricResult(m, 77, models.StatusOK, ""),
	}, nil
}

func (s *stubBench) TestOriginality(_ context.Context, urls []string) (*models.Comparison, error) {
	s.urls = urls
	if s.err != nil {
		return nil, s.err
	}
	return &models.Comparison{Results: map[string]*models.MetricResult{}, Summary: "compared"}, nil
}

func newBenchServer(t *testing.T, bench ScorerBench) *httptest.Server {
	t.Helper()
	srv := NewHTTPServer(&config.ServerConfig{TimeoutSeconds: 30}, &stubAnalyzer{}, bench, monitoring.NewMonitor(), "test")
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestBenchInfoRoutes(t *testing.T) {
	ts := newBenchServer(t, &stubBench{})
	for name, metric := range benchRoutes {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/agents/" + name + "/info")
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var info models.ScorerInfo
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
			assert.Equal(t, metric, info.Metric)
			assert.Equal(t, "test-model", info.Model)
		})
	}
}

func TestBenchTestMetric(t *testing.T) {
	bench := &stubBench{}
	ts := newBenchServer(t, bench)

	resp, err := http.Post(ts.URL+"/api/agents/title/test", "application/json",
		strings.NewReader(`{"transcript": "some words", "title": "Demo", "duration_seconds": 90}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, models.MetricTitleRelevance, bench.metric)
	assert.Equal(t, models.ScorerInput{Transcript: "some words", Title: "Demo", DurationSeconds: 90}, bench.input)

	var body models.ScorerTest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 77, body.Result.Score)
	assert.Equal(t, "Demo", body.Video.Title)
}

func TestBenchTestOriginality(t *testing.T) {
	bench := &stubBench{}
	ts := newBenchServer(t, bench)

	resp, err := http.Post(ts.URL+"/api/agents/originality/test", "application/json",
		strings.NewReader(`{"youtube_urls": ["https://youtu.be/aaaaaaaaaaa", "https://youtu.be/bbbbbbbbbbb"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, bench.urls, 2)

	var body models.Comparison
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "compared", body.Summary)
}

func TestBenchErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		err    error
		status int
	}{
		{"get on test", http.MethodGet, "/api/agents/density/test", "", nil, http.StatusMethodNotAllowed},
		{"post on info", http.MethodPost, "/api/agents/density/info", "{}", nil, http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "/api/agents/redundancy/test", "{", nil, http.StatusBadRequest},
		{"missing input", http.MethodPost, "/api/agents/density/test", "{}",
			models.NewRequestError(models.KindInvalidRequest, "either youtube_url or transcript must be provided"), http.StatusBadRequest},
		{"unavailable video", http.MethodPost, "/api/agents/density/test", `{"youtube_url": "https://youtu.be/aaaaaaaaaaa"}`,
			models.NewRequestError(models.KindVideoUnavailable, "could not fetch video data"), http.StatusUnprocessableEntity},
		{"too few resolved", http.MethodPost, "/api/agents/originality/test", `{"youtube_urls": ["a", "b"]}`,
			models.NewRequestError(models.KindNoVideosResolved, "could not fetch at least 2 videos"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newBenchServer(t, &stubBench{err: tt.err})

			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestBenchRoutesAbsentWithoutBench(t *testing.T) {
	ts, _ := newTestServer(t, &stubAnalyzer{})
	resp, err := http.Get(ts.URL + "/api/agents/density/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
