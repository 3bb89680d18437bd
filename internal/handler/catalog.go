package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/catalog"
)

type restaurantResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Image        string  `json:"image,omitempty"`
	Logo         string  `json:"logo,omitempty"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	DeliveryTime string  `json:"delivery_time,omitempty"`
	Description  string  `json:"description,omitempty"`
}

type variationResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type addOnResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type menuItemResponse struct {
	ID            string              `json:"id"`
	RestaurantID  string              `json:"restaurant_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Price         float64             `json:"price"`
	OriginalPrice float64             `json:"original_price,omitempty"`
	OnDiscount    bool                `json:"on_discount"`
	Category      string              `json:"category,omitempty"`
	Image         string              `json:"image,omitempty"`
	Popular       bool                `json:"popular"`
	Variations    []variationResponse `json:"variations,omitempty"`
	AddOns        []addOnResponse     `json:"add_ons,omitempty"`
}

// ListRestaurants handles GET /api/restaurants.
func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.catalog.ListRestaurants(r.Context())
	if err != nil {
		h.lg.Error("listing restaurants", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]restaurantResponse, len(restaurants))
	for i, rest := range restaurants {
		resp[i] = h.restaurantToResponse(rest)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GetMenu handles GET /api/restaurants/{restaurantID}/menu.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "restaurantID")

	if _, err := h.catalog.GetRestaurant(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		h.lg.Error("finding restaurant", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items, err := h.catalog.ListMenu(r.Context(), id)
	if err != nil {
		h.lg.Error("listing menu", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	resp := make([]menuItemResponse, len(items))
	for i, item := range items {
		resp[i] = h.menuItemToResponse(item, now)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) restaurantToResponse(r catalog.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:           r.ID,
		Name:         r.Name,
		Type:         r.Type,
		Image:        h.imageURL(r.Image),
		Logo:         h.imageURL(r.Logo),
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		DeliveryTime: r.DeliveryTime,
		Description:  r.Description,
	}
}

func (h *Handler) menuItemToResponse(m catalog.MenuItem, now time.Time) menuItemResponse {
	resp := menuItemResponse{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.EffectivePrice(now).InexactFloat64(),
		OnDiscount:   m.OnDiscount(now),
		Category:     m.Category,
		Image:        h.imageURL(m.Image),
		Popular:      m.Popular,
	}
	if resp.OnDiscount {
		resp.OriginalPrice = m.BasePrice.InexactFloat64()
	}

	for _, v := range m.Variations {
		resp.Variations = append(resp.Variations, variationResponse{
			ID:    v.ID,
			Name:  v.Name,
			Price: v.Price.InexactFloat64(),
		})
	}
	for _, a := range m.AddOns {
		resp.AddOns = append(resp.AddOns, addOnResponse{
			ID:       a.ID,
			Name:     a.Name,
			Price:    a.Price.InexactFloat64(),
			Category: a.Category,
		})
	}
	return resp
}

// imageURL prepends the configured base URL to relative image paths.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
