// Package app wires the adapters, the weather use case and the HTTP server together.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"todayweather.app/internal/adapters/api"
	"todayweather.app/internal/config"
	"todayweather.app/internal/core/weather"
	"todayweather.app/internal/ports"
	"todayweather.app/internal/scheduler"
)

type Application struct {
	config *config.Config

	// Use Cases
	weatherUseCase *weather.UseCase

	// Adapters
	httpAdapter *api.HTTPServerAdapter
	warmer      *scheduler.Warmer
	purger      *scheduler.Purger

	// Infrastructure
	deps   *DependencyContainer
	ports  *ports.ApplicationPorts
	logger ports.Logger
}

func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	deps, err := NewDependencyContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, deps)
	if err != nil {
		_ = deps.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies creates an application with provided dependencies (for testing)
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer) (*Application, error) {
	app := &Application{
		config: cfg,
		deps:   deps,
		ports:  deps.ApplicationPorts(),
		logger: deps.ApplicationPorts().Logger,
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	a.logger.Info("Initializing use cases...")

	weatherUseCase, err := weather.NewUseCase(weather.UseCaseDependencies{
		Geocoder:   a.ports.Geocoder,
		Grid:       a.ports.Grid,
		Region:     a.ports.Region,
		Stations:   a.ports.Stations,
		AirQuality: a.ports.AirQuality,
		UV:         a.ports.UV,
		History:    a.ports.History,
		Store:      a.ports.ObjectCache,
		Config:     a.ports.ConfigProvider,
		Logger:     a.ports.Logger,
		Metrics:    a.ports.FetchMetrics,
	})
	if err != nil {
		return fmt.Errorf("create weather use case: %w", err)
	}
	a.weatherUseCase = weatherUseCase

	a.logger.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	a.logger.Info("Initializing adapters...")

	serverConfig := a.ports.ConfigProvider.GetServerConfig()
	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{
			Port:         serverConfig.Port,
			ReadTimeout:  serverConfig.ReadTimeout,
			WriteTimeout: serverConfig.WriteTimeout,
		},
		WeatherUseCase:   a.weatherUseCase,
		MetricsCollector: a.deps.MetricsCollector(),
		HealthChecker:    a.deps.HealthChecker(),
		Logger:           a.logger,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}
	a.httpAdapter = httpAdapter

	a.warmer = scheduler.NewWarmer(a.ports.ConfigProvider.GetWarmupConfig(), a.weatherUseCase, a.logger)
	a.purger = scheduler.NewPurger(a.ports.ConfigProvider.GetCacheConfig().PurgeInterval, a.deps.ExpiredObjectStore(), a.logger)

	a.logger.Info("Adapters initialized successfully")
	return nil
}

// Start runs the background jobs and serves HTTP until Shutdown
func (a *Application) Start(ctx context.Context) error {
	a.logger.Info("Starting application...")

	if err := a.warmer.Start(); err != nil {
		return fmt.Errorf("start cache warm-up: %w", err)
	}
	if err := a.purger.Start(); err != nil {
		return fmt.Errorf("start expired cache purge: %w", err)
	}

	return a.httpAdapter.Start()
}

func (a *Application) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	a.warmer.Stop()
	a.purger.Stop()

	if err := a.httpAdapter.Shutdown(ctx); err != nil {
		a.logger.Error("Error shutting down HTTP server", ports.F("error", err))
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.deps.Cleanup(); err != nil {
		a.logger.Warn("Error releasing resources", ports.F("error", err))
	}

	a.logger.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.httpAdapter.GetRouter()
}

// GetWeatherUseCase returns the weather use case for testing
func (a *Application) GetWeatherUseCase() *weather.UseCase {
	return a.weatherUseCase
}
