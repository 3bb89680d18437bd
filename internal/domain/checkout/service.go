package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/area"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/fee"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geocode"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/promo"
)

// Config holds the non-dependency settings of the checkout service.
type Config struct {
	// MessengerPageID is the Facebook page the order hand-off link targets.
	MessengerPageID string
}

// Service orchestrates delivery quoting and order placement.
type Service struct {
	resolver geocode.AddressResolver
	gate     *area.Gate
	router   RouteResolver
	fees     *fee.Calculator
	promos   PromoValidator
	promoLog promo.Repository
	orders   OrderRepository
	cfg      Config
	lg       *zap.Logger
}

// NewService creates the checkout Service with its domain dependencies.
func NewService(
	resolver geocode.AddressResolver,
	gate *area.Gate,
	router RouteResolver,
	fees *fee.Calculator,
	promos PromoValidator,
	promoLog promo.Repository,
	orders OrderRepository,
	cfg Config,
	lg *zap.Logger,
) *Service {
	return &Service{
		resolver: resolver,
		gate:     gate,
		router:   router,
		fees:     fees,
		promos:   promos,
		promoLog: promoLog,
		orders:   orders,
		cfg:      cfg,
		lg:       lg,
	}
}

// QuoteRequest is one delivery quote computation.
type QuoteRequest struct {
	Address   string
	Subtotal  decimal.Decimal
	PromoCode string
	ClientIP  string
}

// Quote is the computed delivery pricing for an address and cart.
type Quote struct {
	// Within is false only when the address resolved to a point outside the
	// service radius. A geocoding failure does not block checkout; it
	// degrades to the base fee with Message set.
	Within      bool
	AreaMessage string

	// DistanceKnown is false when geocoding failed and the base fee applies.
	DistanceKnown bool
	DistanceKm    float64
	DurationMin   int
	Estimated     bool
	Polyline      []geo.Coordinate

	Subtotal decimal.Decimal
	Fee      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal

	Promo      *promo.Promo
	PromoError string

	// Message carries the user-facing degradation notice, if any.
	Message string
}

// Quote computes the delivery fee, discount, and total for the given address
// and cart subtotal. Promo validation and address resolution depend on
// different inputs, so they run concurrently; routing waits on geocoding.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	q := &Quote{Within: true, Subtotal: req.Subtotal}

	var (
		coord    geo.Coordinate
		geoErr   error
		promoRec *promo.Promo
		promoErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		coord, geoErr = s.resolver.Resolve(gctx, req.Address)
		return nil
	})
	if req.PromoCode != "" {
		g.Go(func() error {
			promoRec, promoErr = s.promos.Validate(gctx, req.PromoCode, req.Subtotal, req.ClientIP)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case geoErr != nil:
		// Degrade rather than block: charge the base fee and ask for a more
		// complete address.
		s.lg.Info("geocoding failed, charging base fee",
			zap.String("address", req.Address), zap.Error(geoErr))
		q.Fee = s.fees.Base()
		q.Message = "Could not find the address. The base delivery fee applies. " +
			"Please enter a complete address including barangay and city."
	default:
		check := s.gate.CheckCoordinate(coord)
		if !check.Within {
			q.Within = false
			q.AreaMessage = "We only deliver to addresses within the delivery area."
			q.Fee = decimal.Zero
			q.Total = decimal.Zero
			return q, nil
		}

		res := s.router.Route(ctx, s.gate.Center(), coord)
		q.DistanceKnown = true
		q.DistanceKm = res.DistanceKm
		q.DurationMin = res.DurationMin
		q.Estimated = res.Estimated
		q.Polyline = res.Polyline
		q.Fee = s.fees.Fee(res.DistanceKm)
	}

	if req.PromoCode != "" {
		if promoErr != nil {
			if isPromoRejection(promoErr) {
				q.PromoError = promoErr.Error()
			} else {
				return nil, errors.Wrap(promoErr, "validate promo")
			}
		} else {
			q.Promo = promoRec
			q.Discount = promo.ComputeDiscount(promoRec, req.Subtotal, q.Fee)
		}
	}

	total := req.Subtotal.Add(q.Fee).Sub(q.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	q.Total = total.Round(2)

	return q, nil
}

// isPromoRejection distinguishes business rejections (shown to the customer)
// from infrastructure failures (propagated).
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

// PlaceOrderRequest is the input for placing an order.
type PlaceOrderRequest struct {
	CustomerName  string
	ContactNumber string
	Address       string
	Landmark      string
	Notes         string
	PaymentMethod string
	Items         []OrderItem
	PromoCode     string
	ClientIP      string
}

// PlaceOrder recomputes the quote server-side, redeems the applied promo
// exactly once, persists the order, and returns it with the messenger
// hand-off link.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if req.CustomerName == "" || req.ContactNumber == "" || req.Address == "" {
		return nil, ErrMissingCustomer
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	q, err := s.Quote(ctx, QuoteRequest{
		Address:   req.Address,
		Subtotal:  subtotal,
		PromoCode: req.PromoCode,
		ClientIP:  req.ClientIP,
	})
	if err != nil {
		return nil, errors.Wrap(err, "quote order")
	}
	if !q.Within {
		return nil, ErrOutsideArea
	}

	o := &Order{
		ID:            uuid.New().String(),
		CustomerName:  req.CustomerName,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		Landmark:      req.Landmark,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		Items:         req.Items,
		Subtotal:      subtotal.Round(2),
		DeliveryFee:   q.Fee,
		Discount:      q.Discount,
		Total:         q.Total,
		DistanceKm:    q.DistanceKm,
	}
	if q.Promo != nil {
		o.PromoCode = q.Promo.Code
	}
	o.MessengerLink = MessengerLink(s.cfg.MessengerPageID, BuildOrderMessage(o))

	// Redemption happens at placement, not validation. The usage-count
	// increment is not atomic against concurrent redemptions of the same
	// code; acceptable at this traffic scale.
	if q.Promo != nil {
		if err := s.promoLog.Redeem(ctx, q.Promo.ID, req.ClientIP); err != nil {
			return nil, errors.Wrap(err, "redeem promo")
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}
