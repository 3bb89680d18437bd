package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/promo"
)

type validatePromoRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"order_amount"`
	// Kind mirrors the storefront's food/delivery tab. Accepted for
	// compatibility; it does not affect validation.
	Kind string `json:"kind,omitempty"`
}

type validatePromoResponse struct {
	Valid        bool    `json:"valid"`
	Code         string  `json:"code,omitempty"`
	DiscountType string  `json:"discount_type,omitempty"`
	Value        float64 `json:"value,omitempty"`
	ApplicableTo string  `json:"applicable_to,omitempty"`
	Description  string  `json:"description,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// ValidatePromo handles POST /api/promos/validate. Validation is side-effect
// free; redemption happens at order placement.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req validatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		h.writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	p, err := h.promos.Validate(r.Context(), req.Code, decimal.NewFromFloat(req.OrderAmount), clientIP(r))
	if err != nil {
		if isPromoRejection(err) {
			h.writeJSON(w, http.StatusUnprocessableEntity, validatePromoResponse{
				Valid:   false,
				Message: err.Error(),
			})
			return
		}
		h.lg.Error("validating promo", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.writeJSON(w, http.StatusOK, validatePromoResponse{
		Valid:        true,
		Code:         p.Code,
		DiscountType: string(p.DiscountType),
		Value:        p.Value.InexactFloat64(),
		ApplicableTo: string(p.ApplicableTo),
		Description:  p.Description,
	})
}

// isPromoRejection distinguishes customer-facing rejections from
// infrastructure failures.
func isPromoRejection(err error) bool {
	for _, known := range []error{
		promo.ErrNotFound,
		promo.ErrExpired,
		promo.ErrUsageLimitReached,
		promo.ErrMinimumNotMet,
		promo.ErrIPMissing,
		promo.ErrAlreadyUsed,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
