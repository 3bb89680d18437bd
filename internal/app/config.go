package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ERUN_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (ERUN_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"" usage:"Base URL for catalog images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`

	Delivery  DeliveryConfig
	Geocoding GeocodingConfig
	Routing   RoutingConfig
	Messenger MessengerConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// DeliveryConfig fixes the delivery center and service radius.
type DeliveryConfig struct {
	CenterLat   float64 `default:"7.201558576842343" usage:"Delivery center latitude" flag:"center-lat"`
	CenterLng   float64 `default:"125.45844856673499" usage:"Delivery center longitude" flag:"center-lng"`
	MaxRadiusKm float64 `default:"100" usage:"Maximum delivery radius in km" flag:"max-radius-km"`
}

// GeocodingConfig points at the geocoding providers and scopes their results
// to the service area.
type GeocodingConfig struct {
	PhotonURL    string        `default:"https://photon.komoot.io" usage:"Photon geocoder base URL" flag:"photon-url"`
	NominatimURL string        `default:"https://nominatim.openstreetmap.org" usage:"Nominatim geocoder base URL" flag:"nominatim-url"`
	UserAgent    string        `default:"e-run-calinan-delivery/1.0" usage:"User-Agent sent to Nominatim" flag:"geocoder-user-agent"`
	Timeout      time.Duration `default:"10s" usage:"Per-provider geocoding request timeout" flag:"geocoding-timeout"`
}

// RoutingConfig points at the OSRM routing service.
type RoutingConfig struct {
	OSRMURL string        `default:"https://router.project-osrm.org" usage:"OSRM base URL" flag:"osrm-url"`
	Timeout time.Duration `default:"10s" usage:"Routing request timeout" flag:"routing-timeout"`
}

// MessengerConfig identifies the operator's Facebook page for order hand-off
// links.
type MessengerConfig struct {
	PageID string `default:"eruncalinan" usage:"Facebook page ID for m.me order links" flag:"messenger-page-id"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ERUN",
		Files:     []string{"config.yaml", "/etc/erun/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ERUN_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's ERUN_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
