package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Detail  string `json:"detail"`
}

// HealthHandler answers 200 while healthy and 503 after a critical failure.
func HealthHandler(m *Monitor, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Version: version, Detail: m.GetStatusSummary()}
		code := http.StatusOK
		if !m.IsHealthy() {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// StatusHandler writes the plain text status summary.
func StatusHandler(m *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, m.GetStatusSummary())
	}
}
