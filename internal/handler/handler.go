// Package handler exposes the storefront HTTP API: catalog browsing, delivery
// quoting, promo validation, and order placement.
package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/area"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/catalog"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/checkout"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// ReverseGeocoder resolves a coordinate back to a display address. Backs the
// map-pin drag flow, where the client needs text for a chosen point.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, coord geo.Coordinate) (string, error)
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in catalog responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler wires HTTP routes to the domain services.
type Handler struct {
	catalog      catalog.Repository
	checkout     *checkout.Service
	gate         *area.Gate
	promos       checkout.PromoValidator
	reverse      ReverseGeocoder
	imageBaseURL string
	lg           *zap.Logger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	cat catalog.Repository,
	co *checkout.Service,
	gate *area.Gate,
	promos checkout.PromoValidator,
	reverse ReverseGeocoder,
	lg *zap.Logger,
) *Handler {
	return &Handler{
		catalog:      cat,
		checkout:     co,
		gate:         gate,
		promos:       promos,
		reverse:      reverse,
		imageBaseURL: cfg.ImageBaseURL,
		lg:           lg,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants", h.ListRestaurants)
		r.Get("/restaurants/{restaurantID}/menu", h.GetMenu)

		r.Route("/delivery", func(r chi.Router) {
			r.Post("/quote", h.QuoteDelivery)
			r.Get("/area-check", h.AreaCheck)
			r.Get("/reverse-geocode", h.ReverseGeocode)
		})

		r.Post("/promos/validate", h.ValidatePromo)
		r.Post("/orders", h.PlaceOrder)
	})

	return r
}

// errorResponse is the JSON error envelope shared by all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.lg.Warn("encoding response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// clientIP extracts the caller's IP, trusting proxy headers before the raw
// remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
