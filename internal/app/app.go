// Package app wires configuration, storage, domain services, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/area"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/checkout"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/fee"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geocode"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/promo"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/route"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/handler"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/storage/postgres"
	"github.com/RedDev17/E-Run-Calinan-Delivery/pkg/health"
	"github.com/RedDev17/E-Run-Calinan-Delivery/pkg/httpmiddleware"
)

// Service-area constants for the Calinan deployment. The delivery center and
// radius are configurable; the place names driving geocoding fallback are not.
const (
	localPlace    = "Calinan"
	city          = "Davao City"
	country       = "Philippines"
	region        = "Davao Region"
	districtQuery = "Calinan District, Davao City"
	// Bounding box around Davao City in Nominatim viewbox order
	// (min_lon, min_lat, max_lon, max_lat).
	nominatimViewbox = "125.30,7.00,125.70,7.60"
)

// distantCities never fall back to the local city center; an order from one
// of them is a mistake, not a vague address.
var distantCities = []string{
	"Manila", "Quezon City", "Cebu", "Cagayan de Oro",
	"Zamboanga", "General Santos", "Tagum",
}

// photonConfig builds the Photon client settings for the service area. The
// Region value must equal the state string Photon tags Davao results with;
// an untagged-country local match is compared against it verbatim.
func photonConfig(baseURL string, center geo.Coordinate) geocode.PhotonConfig {
	return geocode.PhotonConfig{
		BaseURL:     baseURL,
		Bias:        center,
		CountryCode: "PH",
		Country:     country,
		City:        city,
		Region:      region,
		Limit:       5,
	}
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadiness("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLiveness("goroutines", time.Second, health.GoroutineCountProbe(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	catalogRepo := postgres.NewCatalogRepository(pool)
	promoRepo := postgres.NewPromoRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	center := geo.Coordinate{Lat: cfg.Delivery.CenterLat, Lng: cfg.Delivery.CenterLng}

	// Geocoding fallback chain: Photon for fuzzy matching, Nominatim for
	// structured addresses, both scoped to the service area.
	geocodeClient := &http.Client{Timeout: cfg.Geocoding.Timeout}
	photon := geocode.NewPhoton(photonConfig(cfg.Geocoding.PhotonURL, center), geocodeClient)
	nominatim := geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:      cfg.Geocoding.NominatimURL,
		CountryCodes: "ph",
		Viewbox:      nominatimViewbox,
		UserAgent:    cfg.Geocoding.UserAgent,
	}, geocodeClient)
	resolver := geocode.NewChain(photon, nominatim, geocode.ChainConfig{
		LocalPlace:    localPlace,
		City:          city,
		Country:       country,
		DistrictQuery: districtQuery,
		CityCenter:    center,
		Blocklist:     distantCities,
	}, lg.Named("geocode"))

	// Domain services.
	gate := area.NewGate(resolver, center, cfg.Delivery.MaxRadiusKm)
	router := route.NewResolver(cfg.Routing.OSRMURL, &http.Client{Timeout: cfg.Routing.Timeout}, lg.Named("route"))
	fees := fee.NewCalculator()
	promoValidator := promo.NewValidator(promoRepo)
	checkoutSvc := checkout.NewService(
		resolver, gate, router, fees,
		promoValidator, promoRepo, orderRepo,
		checkout.Config{MessengerPageID: cfg.Messenger.PageID},
		lg.Named("checkout"),
	)

	// HTTP handlers.
	h := handler.NewHandler(
		handler.HandlerConfig{ImageBaseURL: cfg.ImageBaseURL},
		catalogRepo,
		checkoutSvc,
		gate,
		promoValidator,
		nominatim,
		lg.Named("handler"),
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("erun-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
