package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/checkout"
)

type orderAddOnRequest struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderItemRequest struct {
	RestaurantName string              `json:"restaurant_name"`
	Name           string              `json:"name"`
	Variation      string              `json:"variation,omitempty"`
	AddOns         []orderAddOnRequest `json:"add_ons,omitempty"`
	Quantity       int                 `json:"quantity"`
	UnitPrice      float64             `json:"unit_price"`
}

type placeOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	ContactNumber string             `json:"contact_number"`
	Address       string             `json:"address"`
	Landmark      string             `json:"landmark,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Items         []orderItemRequest `json:"items"`
	PromoCode     string             `json:"promo_code,omitempty"`
}

type placeOrderResponse struct {
	ID            string  `json:"id"`
	Subtotal      float64 `json:"subtotal"`
	DeliveryFee   float64 `json:"delivery_fee"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	DistanceKm    float64 `json:"distance_km,omitempty"`
	PromoCode     string  `json:"promo_code,omitempty"`
	MessengerLink string  `json:"messenger_link"`
}

// PlaceOrder handles POST /api/orders. The quote is recomputed server-side;
// client-sent totals are never trusted.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]checkout.OrderItem, len(req.Items))
	for i, item := range req.Items {
		addOns := make([]checkout.OrderAddOn, len(item.AddOns))
		for j, a := range item.AddOns {
			addOns[j] = checkout.OrderAddOn{
				Name:     a.Name,
				Quantity: a.Quantity,
				Price:    decimal.NewFromFloat(a.Price),
			}
		}
		items[i] = checkout.OrderItem{
			RestaurantName: item.RestaurantName,
			Name:           item.Name,
			Variation:      item.Variation,
			AddOns:         addOns,
			Quantity:       item.Quantity,
			UnitPrice:      decimal.NewFromFloat(item.UnitPrice),
		}
	}

	o, err := h.checkout.PlaceOrder(r.Context(), checkout.PlaceOrderRequest{
		CustomerName:  req.CustomerName,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		Landmark:      req.Landmark,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		PromoCode:     req.PromoCode,
		ClientIP:      clientIP(r),
	})
	if err != nil {
		h.mapOrderError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, placeOrderResponse{
		ID:            o.ID,
		Subtotal:      o.Subtotal.InexactFloat64(),
		DeliveryFee:   o.DeliveryFee.InexactFloat64(),
		Discount:      o.Discount.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		DistanceKm:    o.DistanceKm,
		PromoCode:     o.PromoCode,
		MessengerLink: o.MessengerLink,
	})
}

// mapOrderError converts domain errors to HTTP error responses.
func (h *Handler) mapOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrMissingCustomer),
		errors.Is(err, checkout.ErrEmptyItems):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrOutsideArea):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.lg.Error("placing order", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
