package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-client/internal/client"
	"github.com/kjstillabower/weather-client/internal/config"
	httphandler "github.com/kjstillabower/weather-client/internal/http"
	"github.com/kjstillabower/weather-client/internal/observability"
)

func main() {
	logger, err := observability.NewLogger("service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if !cfg.IsAPIKeyConfigured() {
		logger.Warn("API key not configured; weather requests will fail until WEATHER_API_KEY is set")
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg, cfg.WeatherAPIURL, &http.Client{Timeout: cfg.WeatherAPITimeout}, logger)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	weatherClient.SetMaxCityLength(cfg.CityMaxLength)

	handler := httphandler.NewHandler(weatherClient, cfg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WeatherAPITimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	handler.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if inFlight := handler.InFlightCount(); inFlight > 0 {
		logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
		if err := handler.WaitForInFlight(shutdownCtx, 100*time.Millisecond); err != nil {
			logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", handler.InFlightCount()))
		}
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
}
