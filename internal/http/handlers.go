package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-client/internal/client"
	"github.com/kjstillabower/weather-client/internal/observability"
	"github.com/kjstillabower/weather-client/internal/validation"
)

// Handler serves the weather client over HTTP.
type Handler struct {
	client       client.WeatherClient
	keys         client.KeyProvider
	logger       *zap.Logger
	tracker      *InFlightTracker
	shuttingDown atomic.Bool
}

// NewHandler returns a Handler. keys is consulted by the health check only;
// the client enforces configuration itself.
func NewHandler(weatherClient client.WeatherClient, keys client.KeyProvider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		client:  weatherClient,
		keys:    keys,
		logger:  logger,
		tracker: &InFlightTracker{},
	}
}

// Router wires the handler routes and middleware.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(h.logger))
	router.Use(MetricsMiddleware(h.tracker))
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/weather/{city}", h.GetWeather).Methods(http.MethodGet)
	return router
}

// SetShuttingDown flips health to 503 so load balancers stop routing here.
func (h *Handler) SetShuttingDown(v bool) {
	h.shuttingDown.Store(v)
}

// WaitForInFlight blocks until in-flight requests drain or ctx is done.
func (h *Handler) WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return h.tracker.WaitForZero(ctx, checkInterval)
}

// InFlightCount returns the number of requests currently being served.
func (h *Handler) InFlightCount() int64 {
	return h.tracker.Count()
}

// GetWeather handles GET /weather/{city}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	result, err := h.client.FetchWeather(r.Context(), mux.Vars(r)["city"])
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	configured := h.keys != nil && h.keys.IsAPIKeyConfigured()
	status, code, apiKey := "healthy", http.StatusOK, "configured"
	if !configured {
		status, code, apiKey = "unconfigured", http.StatusServiceUnavailable, "missing"
	}
	if h.shuttingDown.Load() {
		status, code = "shutting-down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"service":   "weather-client",
		"checks":    map[string]string{"apiKey": apiKey},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeFetchError maps a fetch failure kind to an HTTP status and error code.
func (h *Handler) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL", "Unable to fetch weather data"
	switch client.KindOf(err) {
	case client.KindInvalidInput:
		status, code, message = http.StatusBadRequest, "INVALID_CITY", "city is required"
		if errors.Is(err, validation.ErrCityTooLong) {
			message = validation.ErrCityTooLong.Error()
		}
	case client.KindConfigurationMissing:
		status, code, message = http.StatusServiceUnavailable, "NOT_CONFIGURED", "weather API key is not configured"
	case client.KindProtocol:
		status, code = http.StatusBadGateway, "UPSTREAM_ERROR"
		if upstream, ok := client.StatusCode(err); ok && upstream == http.StatusNotFound {
			status, code, message = http.StatusNotFound, "CITY_NOT_FOUND", "city not found"
		}
	case client.KindNetwork:
		status, code = http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
		if errors.Is(err, context.DeadlineExceeded) {
			status, code = http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
		}
	case client.KindDataProcessing:
		status, code = http.StatusBadGateway, "UPSTREAM_BAD_RESPONSE"
	}
	loggerFromContext(r.Context(), h.logger).Debug("fetch failed",
		zap.String("kind", string(client.KindOf(err))),
		zap.Int("status", status),
		zap.Error(err))
	writeError(w, r, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error":{"code","message","requestId"}}.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": client.CorrelationID(r.Context()),
		},
	})
}
