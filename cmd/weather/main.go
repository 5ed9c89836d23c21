// Command weather fetches current conditions for one city and prints them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-client/internal/client"
	"github.com/kjstillabower/weather-client/internal/config"
	"github.com/kjstillabower/weather-client/internal/models"
	"github.com/kjstillabower/weather-client/internal/observability"
)

func main() {
	logger, err := observability.NewLogger("cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logger)
	stop()
	_ = observability.FlushTelemetry(context.Background(), logger)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *zap.Logger) int {
	fs := flag.NewFlagSet("weather", flag.ContinueOnError)
	fs.SetOutput(stderr)
	city := fs.String("city", "", "city to fetch (default from config)")
	dir := fs.String("dir", "", "project directory holding config/ (default working directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*dir)
	if err != nil {
		logger.Error("config", zap.Error(err))
		return 1
	}
	if *city == "" {
		*city = cfg.DefaultCity
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg, cfg.WeatherAPIURL, &http.Client{Timeout: cfg.WeatherAPITimeout}, logger)
	if err != nil {
		logger.Error("weather client", zap.Error(err))
		return 1
	}
	weatherClient.SetMaxCityLength(cfg.CityMaxLength)

	data, err := weatherClient.FetchWeather(ctx, *city)
	if err != nil || !data.IsValid {
		logger.Error("failed to get weather data", zap.String("kind", string(client.KindOf(err))))
		return 1
	}
	printWeather(stdout, data)
	return 0
}

func printWeather(w io.Writer, data models.WeatherData) {
	fmt.Fprintf(w, "Weather in %s: %.1f°C\n", data.CityName, data.TemperatureInCelsius)
	fmt.Fprintf(w, "Description: %s\n", data.PrimaryDescription)
}
