package pricing

import (
	"time"

	"github.com/pkg/errors"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

var (
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponNotYet    = errors.New("coupon is not valid yet")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

// Payment phases returned by AmountDue
const (
	PhaseDeposit = "deposit"
	PhaseBalance = "balance"
	PhasePaid    = "paid"
)

// Subtotal sums the package price and the selected addon prices
func Subtotal(packagePrice float64, addonPrices []float64) float64 {
	total := packagePrice
	for _, p := range addonPrices {
		total += p
	}
	return common.RoundCents(total)
}

// Deposit computes the upfront amount from a percentage of the total.
// The percentage is clamped to [0,100].
func Deposit(total float64, pct float64) float64 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return common.RoundCents(total * pct / 100)
}

// CouponDiscount validates the coupon against now and returns the discount
// amount capped at the subtotal. The use counter is not touched here.
func CouponDiscount(c *domain.Coupon, subtotal float64, now time.Time) (float64, error) {
	if c.Status != common.ENABLED {
		return 0, ErrCouponInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return 0, ErrCouponNotYet
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return 0, ErrCouponExpired
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return 0, ErrCouponExhausted
	}

	var discount float64
	switch c.DiscountType {
	case domain.DiscountPercent:
		discount = subtotal * c.Value / 100
	case domain.DiscountFixed:
		discount = c.Value
	default:
		return 0, errors.Errorf("unknown discount type %q", c.DiscountType)
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return common.RoundCents(discount), nil
}

// AmountDue returns the next amount owed on a booking and which phase it
// belongs to: deposit first, then the balance, then nothing.
func AmountDue(b *domain.Booking) (float64, string) {
	if !b.DepositPaid {
		return b.DepositAmount, PhaseDeposit
	}
	if !b.FinalPaid {
		return common.RoundCents(b.Total - b.DepositAmount), PhaseBalance
	}
	return 0, PhasePaid
}
