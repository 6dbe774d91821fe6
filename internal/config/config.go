package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	AppEnv          string        `mapstructure:"app_env" validate:"oneof=development production test"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	// DemoMode synthesizes all weather instead of calling the provider.
	DemoMode bool  `mapstructure:"demo_mode"`
	DemoSeed int64 `mapstructure:"demo_seed"`

	WeatherProvider    string `mapstructure:"weather_provider" validate:"oneof=openweather openmeteo weatherapi"`
	OpenWeatherAPIKey  string `mapstructure:"openweather_api_key"`
	OpenWeatherBaseURL string `mapstructure:"openweather_base_url" validate:"omitempty,url"`
	WeatherAPIKey      string `mapstructure:"weatherapi_api_key"`
	WeatherAPIBaseURL  string `mapstructure:"weatherapi_base_url" validate:"omitempty,url"`
	OpenMeteoBaseURL   string `mapstructure:"openmeteo_base_url" validate:"omitempty,url"`

	NominatimBaseURL   string  `mapstructure:"nominatim_base_url" validate:"omitempty,url"`
	GeocoderUserAgent  string  `mapstructure:"geocoder_user_agent" validate:"required"`
	GeocoderRatePerSec float64 `mapstructure:"geocoder_rate_per_sec" validate:"gte=0"`

	HTTPTimeout     time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	SearchDebounce  time.Duration `mapstructure:"search_debounce" validate:"gt=0"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gte=0"`

	StorageDriver string `mapstructure:"storage_driver" validate:"oneof=memory file sqlite redis"`
	StoragePath   string `mapstructure:"storage_path"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=StorageDriver redis"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`

	DefaultLocationName    string  `mapstructure:"default_location_name" validate:"required"`
	DefaultLocationCountry string  `mapstructure:"default_location_country"`
	DefaultLocationLat     float64 `mapstructure:"default_location_lat" validate:"gte=-90,lte=90"`
	DefaultLocationLon     float64 `mapstructure:"default_location_lon" validate:"gte=-180,lte=180"`
	GoogleGeocoderAPIKey   string  `mapstructure:"google_geocoder_api_key"`

	// Optional fixed device position, used only when both are set.
	GeolocationLat string `mapstructure:"geolocation_lat" validate:"omitempty,latitude"`
	GeolocationLon string `mapstructure:"geolocation_lon" validate:"omitempty,longitude"`

	IconBaseURL string `mapstructure:"icon_base_url" validate:"omitempty,url"`
	TileBaseURL string `mapstructure:"tile_base_url" validate:"omitempty,url"`
}

var validate = validator.New()

// Load reads .env, then config.yaml (if present in . or ./config), then the
// environment, which wins.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}
	return LoadFrom(".", "./config")
}

// LoadFrom is Load without .env handling, searching paths for config.yaml.
func LoadFrom(paths ...string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("demo_mode", true)
	v.SetDefault("demo_seed", 0)

	v.SetDefault("weather_provider", "openweather")
	v.SetDefault("openweather_api_key", "")
	v.SetDefault("openweather_base_url", "")
	v.SetDefault("weatherapi_api_key", "")
	v.SetDefault("weatherapi_base_url", "")
	v.SetDefault("openmeteo_base_url", "")

	v.SetDefault("nominatim_base_url", "")
	v.SetDefault("geocoder_user_agent", "weather-lookup/1.0")
	v.SetDefault("geocoder_rate_per_sec", 1.0)

	v.SetDefault("http_timeout", "10s")
	v.SetDefault("search_debounce", "300ms")
	v.SetDefault("refresh_interval", "10m")

	v.SetDefault("storage_driver", "file")
	v.SetDefault("storage_path", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("default_location_name", "London")
	v.SetDefault("default_location_country", "GB")
	v.SetDefault("default_location_lat", 51.5074)
	v.SetDefault("default_location_lon", -0.1278)
	v.SetDefault("google_geocoder_api_key", "")
	v.SetDefault("geolocation_lat", "")
	v.SetDefault("geolocation_lon", "")

	v.SetDefault("icon_base_url", "")
	v.SetDefault("tile_base_url", "")
}

// StorageLocation returns the configured storage path or a per-driver
// default.
func (c *AppConfig) StorageLocation() string {
	if c.StoragePath != "" {
		return c.StoragePath
	}
	switch c.StorageDriver {
	case "sqlite":
		return "data/weather-lookup.db"
	default:
		return "data/weather-lookup.json"
	}
}

// Geolocation returns the configured fixed device position, if any.
func (c *AppConfig) Geolocation() (lat, lon float64, ok bool) {
	if c.GeolocationLat == "" || c.GeolocationLon == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(c.GeolocationLat, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(c.GeolocationLon, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
