package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/checkout"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

type quoteRequest struct {
	Address   string  `json:"address"`
	Subtotal  float64 `json:"subtotal"`
	PromoCode string  `json:"promo_code,omitempty"`
}

type quoteResponse struct {
	WithinArea  bool   `json:"within_area"`
	AreaMessage string `json:"area_message,omitempty"`

	DistanceKnown bool        `json:"distance_known"`
	DistanceKm    float64     `json:"distance_km,omitempty"`
	DurationMin   int         `json:"duration_min,omitempty"`
	Estimated     bool        `json:"estimated,omitempty"`
	Polyline      [][]float64 `json:"polyline,omitempty"`

	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`

	PromoCode        string `json:"promo_code,omitempty"`
	PromoDescription string `json:"promo_description,omitempty"`
	PromoError       string `json:"promo_error,omitempty"`

	Message string `json:"message,omitempty"`
}

type areaCheckResponse struct {
	WithinArea bool    `json:"within_area"`
	DistanceKm float64 `json:"distance_km,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// QuoteDelivery handles POST /api/delivery/quote.
func (h *Handler) QuoteDelivery(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		h.writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if req.Subtotal < 0 {
		h.writeError(w, http.StatusBadRequest, "subtotal must not be negative")
		return
	}

	q, err := h.checkout.Quote(r.Context(), checkout.QuoteRequest{
		Address:   req.Address,
		Subtotal:  decimal.NewFromFloat(req.Subtotal),
		PromoCode: req.PromoCode,
		ClientIP:  clientIP(r),
	})
	if err != nil {
		h.lg.Error("quoting delivery", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.writeJSON(w, http.StatusOK, quoteToResponse(q))
}

// AreaCheck handles GET /api/delivery/area-check?address=...
func (h *Handler) AreaCheck(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		h.writeError(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	res := h.gate.Check(r.Context(), address)
	h.writeJSON(w, http.StatusOK, areaCheckResponse{
		WithinArea: res.Within,
		DistanceKm: res.DistanceKm,
		Message:    res.Message,
	})
}

type reverseGeocodeResponse struct {
	Address string `json:"address"`
}

// ReverseGeocode handles GET /api/delivery/reverse-geocode?lat=...&lng=...
// It resolves a dropped map pin to a display address.
func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		h.writeError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	address, err := h.reverse.Reverse(r.Context(), geo.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		h.lg.Warn("reverse geocoding", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		h.writeError(w, http.StatusNotFound, "no address found for this location")
		return
	}

	h.writeJSON(w, http.StatusOK, reverseGeocodeResponse{Address: address})
}

func quoteToResponse(q *checkout.Quote) quoteResponse {
	resp := quoteResponse{
		WithinArea:    q.Within,
		AreaMessage:   q.AreaMessage,
		DistanceKnown: q.DistanceKnown,
		DistanceKm:    q.DistanceKm,
		DurationMin:   q.DurationMin,
		Estimated:     q.Estimated,
		Subtotal:      q.Subtotal.InexactFloat64(),
		DeliveryFee:   q.Fee.InexactFloat64(),
		Discount:      q.Discount.InexactFloat64(),
		Total:         q.Total.InexactFloat64(),
		PromoError:    q.PromoError,
		Message:       q.Message,
	}
	if q.Promo != nil {
		resp.PromoCode = q.Promo.Code
		resp.PromoDescription = q.Promo.Description
	}
	for _, c := range q.Polyline {
		resp.Polyline = append(resp.Polyline, []float64{c.Lat, c.Lng})
	}
	return resp
}
