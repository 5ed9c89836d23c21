package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies label dimensions match usage in the client and http packages.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/weather/{city}", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/weather/{city}").Observe(0.01)
	WeatherFetchTotal.WithLabelValues("success").Inc()
	WeatherFetchTotal.WithLabelValues("protocol_error").Inc()
	WeatherAPICallsTotal.WithLabelValues("client_error").Inc()
	WeatherAPIDuration.WithLabelValues("success").Observe(0.1)
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{204, "success"},
		{301, "error"},
		{401, "client_error"},
		{404, "client_error"},
		{429, "rate_limited"},
		{500, "server_error"},
		{503, "server_error"},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.code); got != tt.want {
			t.Errorf("StatusLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestMetricsHandler_ServesPrometheusFormat verifies that MetricsHandler serves
// Prometheus text exposition format.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	WeatherFetchTotal.WithLabelValues("success").Inc()

	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "weatherFetchTotal") {
		t.Error("MetricsHandler response should contain weatherFetchTotal")
	}
}
