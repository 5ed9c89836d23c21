package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-client/internal/models"
	"github.com/kjstillabower/weather-client/internal/observability"
	"github.com/kjstillabower/weather-client/internal/validation"
)

// DefaultAPIURL is the OpenWeatherMap current-weather endpoint.
const DefaultAPIURL = "http://api.openweathermap.org/data/2.5/weather"

type WeatherClient interface {
	FetchWeather(ctx context.Context, city string) (models.WeatherData, error)
}

// KeyProvider supplies the upstream API key. IsAPIKeyConfigured is consulted
// before every fetch.
type KeyProvider interface {
	IsAPIKeyConfigured() bool
	APIKey() string
}

// HTTPDoer is the transport seam; *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type OpenWeatherClient struct {
	keys       KeyProvider
	apiURL     *url.URL
	client     HTTPDoer
	logger     *zap.Logger
	maxCityLen int
}

// NewOpenWeatherClient returns a client for apiURL. A nil httpClient uses a
// plain *http.Client, so timeouts come from the caller's context; a nil
// logger discards diagnostics.
func NewOpenWeatherClient(keys KeyProvider, apiURL string, httpClient HTTPDoer, logger *zap.Logger) (*OpenWeatherClient, error) {
	if keys == nil {
		return nil, errors.New("key provider is required")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host are required", apiURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeatherClient{
		keys:   keys,
		apiURL: u,
		client: httpClient,
		logger: logger,
	}, nil
}

// SetMaxCityLength bounds accepted city names in runes. Zero disables the bound.
func (c *OpenWeatherClient) SetMaxCityLength(n int) {
	c.maxCityLen = n
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// FetchWeather performs one GET against the current-weather endpoint and
// returns the decoded result. Failures carry exactly one ErrorKind (see
// KindOf) and always come with a zero WeatherData.
func (c *OpenWeatherClient) FetchWeather(ctx context.Context, city string) (models.WeatherData, error) {
	logger := c.logger.With(zap.String("city", city))

	trimmed, err := validation.ValidateCity(city, c.maxCityLen)
	if err != nil {
		logger.Warn("invalid city", zap.Error(err))
		recordOutcome(KindInvalidInput)
		return models.WeatherData{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if !c.keys.IsAPIKeyConfigured() {
		logger.Error("API key not configured; set WEATHER_API_KEY or config/secrets.yaml weather_api_key")
		recordOutcome(KindConfigurationMissing)
		return models.WeatherData{}, fmt.Errorf("%w: API key not configured", ErrConfigurationMissing)
	}

	corrID := CorrelationID(ctx)
	if corrID == "" {
		corrID = uuid.New().String()
	}
	logger = logger.With(zap.String("correlation_id", corrID))

	req, err := c.buildRequest(ctx, trimmed)
	if err != nil {
		logger.Warn("build request", zap.Error(err))
		recordOutcome(KindInvalidInput)
		return models.WeatherData{}, fmt.Errorf("%w: build request: %w", ErrInvalidInput, err)
	}
	req.Header.Set("X-Correlation-ID", corrID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		recordUpstream(KindNetwork, start)
		logger.Error("network connection error", zap.Error(err))
		return models.WeatherData{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()
	observability.WeatherAPICallsTotal.WithLabelValues(observability.StatusLabel(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordUpstream(KindProtocol, start)
		logger.Error("HTTP error", zap.Int("status_code", resp.StatusCode), zap.String("status", resp.Status))
		return models.WeatherData{}, &ProtocolError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordUpstream(KindDataProcessing, start)
		logger.Error("data processing error: read response body", zap.Error(err))
		return models.WeatherData{}, fmt.Errorf("%w: read response body: %w", ErrDataProcessing, err)
	}

	data, err := parseWeatherData(body)
	if err != nil {
		recordUpstream(KindDataProcessing, start)
		logger.Error("JSON parsing failed", zap.Error(err), zap.Int("body_bytes", len(body)))
		return models.WeatherData{}, err
	}

	recordUpstream("", start)
	logger.Debug("weather fetched",
		zap.String("city_name", data.CityName),
		zap.Float64("temperature_c", data.TemperatureInCelsius),
		zap.Duration("duration", time.Since(start)))
	return data, nil
}

// BuildURL appends the percent-encoded city and key to base as the q and
// appid query parameters, in that order. Existing query parameters on base
// are kept ahead of them.
func BuildURL(base *url.URL, city, apiKey string) string {
	u := *base
	query := "q=" + url.QueryEscape(city) + "&appid=" + url.QueryEscape(apiKey)
	if u.RawQuery != "" {
		query = u.RawQuery + "&" + query
	}
	u.RawQuery = query
	return u.String()
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, city string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildURL(c.apiURL, city, c.keys.APIKey()), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// parseWeatherData decodes body, ignoring unknown fields and treating null or
// absent fields as unset. Payloads without a city name or temperature are
// rejected rather than returned half-populated. A temperature of exactly 0 K
// is the decoder's default and counts as unset.
func parseWeatherData(body []byte) (models.WeatherData, error) {
	var apiResp openWeatherResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.WeatherData{}, fmt.Errorf("%w: parse response: %w", ErrDataProcessing, err)
	}

	data := mapResponse(apiResp)
	if !data.IsValid {
		return models.WeatherData{}, fmt.Errorf("%w: response missing name or main.temp", ErrDataProcessing)
	}
	return data, nil
}

func mapResponse(apiResp openWeatherResponse) models.WeatherData {
	description := ""
	if len(apiResp.Weather) > 0 {
		description = apiResp.Weather[0].Description
		if description == "" {
			description = apiResp.Weather[0].Main
		}
	}

	data := models.WeatherData{
		CityName:           apiResp.Name,
		PrimaryDescription: description,
	}
	if apiResp.Main != nil && apiResp.Main.Temp != nil && *apiResp.Main.Temp != 0 {
		data.TemperatureInCelsius = models.KelvinToCelsius(*apiResp.Main.Temp)
		data.IsValid = apiResp.Name != ""
	}
	return data
}

func recordOutcome(kind ErrorKind) {
	if kind == "" {
		observability.WeatherFetchTotal.WithLabelValues("success").Inc()
		return
	}
	observability.WeatherFetchTotal.WithLabelValues(string(kind)).Inc()
}

func recordUpstream(kind ErrorKind, start time.Time) {
	recordOutcome(kind)
	label := string(kind)
	if kind == "" {
		label = "success"
	}
	observability.WeatherAPIDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

type correlationIDKey struct{}

// WithCorrelationID returns a context whose fetches send id as X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}
