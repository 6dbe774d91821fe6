package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/favorites"
	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/views"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	gateway := providers.NewGateway(
		upstreamProvider(cfg, httpClient),
		providers.NewNominatimGeocoder(httpClient, cfg.NominatimBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderRatePerSec),
		providers.NewDemoSource(cfg.DemoSeed, nil),
		cfg.DemoMode,
		log,
	)
	if gateway.DemoMode() {
		log.Info("demo mode: weather data is synthesized")
	}

	kv, err := store.Open(store.Options{
		Driver:        cfg.StorageDriver,
		Path:          cfg.StorageLocation(),
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		log.Errorf("failed to open %s storage: %v", cfg.StorageDriver, err)
		os.Exit(1)
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	locations := location.NewStore()
	favs := favorites.New(ctx, kv, locations, log)

	var geo location.Geolocator = location.NoGeolocator{}
	if lat, lon, ok := cfg.Geolocation(); ok {
		geo = location.StaticGeolocator{Lat: lat, Lon: lon}
	}

	session := views.NewSession(ctx, gateway, locations, favs, geo, views.SessionConfig{
		IconBaseURL: cfg.IconBaseURL,
		TileBaseURL: cfg.TileBaseURL,
		MapsAPIKey:  cfg.OpenWeatherAPIKey,
		Debounce:    cfg.SearchDebounce,
	}, log)
	defer session.Close()

	location.Initialize(ctx, locations, geo, defaultLocation(cfg, log), log)

	// Scheduler that periodically refreshes the views.
	sched := scheduler.New(session, cfg.RefreshInterval, log)
	if err := sched.Start(); err != nil {
		log.Errorf("failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-lookup",
			"demo_mode": gateway.DemoMode(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:     gateway,
		Locations:   locations,
		Session:     session,
		IconBaseURL: cfg.IconBaseURL,
	})

	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}

func upstreamProvider(cfg *config.AppConfig, client *http.Client) weather.Provider {
	switch cfg.WeatherProvider {
	case "openmeteo":
		return providers.NewOpenMeteoProvider(client, cfg.OpenMeteoBaseURL)
	case "weatherapi":
		return providers.NewWeatherAPIProvider(client, cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey)
	default:
		return providers.NewOpenWeatherProvider(client, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey)
	}
}

// defaultLocation is the configured city, resolved through the Google
// geocoder when a key is set.
func defaultLocation(cfg *config.AppConfig, log logger.Logger) weather.Location {
	if cfg.GoogleGeocoderAPIKey != "" {
		loc, err := location.ResolveDefault(cfg.DefaultLocationName, cfg.DefaultLocationCountry, cfg.GoogleGeocoderAPIKey, nil)
		if err != nil {
			log.Warnf("using built-in default location: %v", err)
		}
		return loc
	}
	return weather.Location{
		Name:    cfg.DefaultLocationName,
		Lat:     cfg.DefaultLocationLat,
		Lon:     cfg.DefaultLocationLon,
		Country: cfg.DefaultLocationCountry,
	}
}
