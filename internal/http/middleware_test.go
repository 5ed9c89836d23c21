package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/weather-client/internal/client"
)

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.NewNop()))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		seen = client.CorrelationID(r.Context())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

	if seen == "" {
		t.Fatal("correlation id not set on context")
	}
	if got := w.Header().Get("X-Correlation-ID"); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

func TestCorrelationIDMiddleware_ScopedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.New(core)))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		loggerFromContext(r.Context(), zap.NewNop()).Info("inside")
	})

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Correlation-ID", "abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("inside").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ContextMap()["correlation_id"] != "abc" {
		t.Errorf("correlation_id field = %v, want abc", entries[0].ContextMap()["correlation_id"])
	}
}

func TestMetricsMiddleware_TracksInFlight(t *testing.T) {
	tracker := &InFlightTracker{}
	var during int64
	router := mux.NewRouter()
	router.Use(MetricsMiddleware(tracker))
	router.HandleFunc("/weather/{city}", func(w http.ResponseWriter, r *http.Request) {
		during = tracker.Count()
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/weather/paris", nil))

	if during != 1 {
		t.Errorf("in-flight during request = %d, want 1", during)
	}
	if tracker.Count() != 0 {
		t.Errorf("in-flight after request = %d, want 0", tracker.Count())
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", w.Code)
	}
}

func TestStatusCodeString(t *testing.T) {
	tests := map[int]string{200: "2xx", 404: "4xx", 502: "5xx"}
	for code, want := range tests {
		if got := statusCodeString(code); got != want {
			t.Errorf("statusCodeString(%d) = %q, want %q", code, got, want)
		}
	}
}
