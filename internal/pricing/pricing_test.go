package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

func TestSubtotal(t *testing.T) {
	assert.Equal(t, 199.0, Subtotal(199, nil))
	assert.Equal(t, 279.0, Subtotal(199, []float64{35, 45}))
	assert.Equal(t, 100.55, Subtotal(100.50, []float64{0.05}))
}

func TestDeposit(t *testing.T) {
	assert.Equal(t, 49.75, Deposit(199, 25))
	assert.Equal(t, 0.0, Deposit(199, 0))
	assert.Equal(t, 199.0, Deposit(199, 150)) // clamped to 100%
	assert.Equal(t, 0.0, Deposit(199, -10))   // clamped to 0%
	assert.Equal(t, 33.33, Deposit(99.99, 33.3333))
}

func newCoupon(mod func(*domain.Coupon)) *domain.Coupon {
	c := &domain.Coupon{
		Code:         "SAVE10",
		DiscountType: domain.DiscountPercent,
		Value:        10,
		Status:       common.ENABLED,
	}
	if mod != nil {
		mod(c)
	}
	return c
}

func TestCouponDiscountPercent(t *testing.T) {
	d, err := CouponDiscount(newCoupon(nil), 200, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 20.0, d)
}

func TestCouponDiscountFixedCappedAtSubtotal(t *testing.T) {
	c := newCoupon(func(c *domain.Coupon) {
		c.DiscountType = domain.DiscountFixed
		c.Value = 50
	})

	d, err := CouponDiscount(c, 200, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 50.0, d)

	// fixed discount larger than the subtotal never goes negative
	d, err = CouponDiscount(c, 30, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 30.0, d)
}

func TestCouponDiscountExpired(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	c := newCoupon(func(c *domain.Coupon) {
		c.ValidTo = &past
	})
	_, err := CouponDiscount(c, 200, time.Now())
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestCouponDiscountNotYetValid(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	c := newCoupon(func(c *domain.Coupon) {
		c.ValidFrom = &future
	})
	_, err := CouponDiscount(c, 200, time.Now())
	assert.ErrorIs(t, err, ErrCouponNotYet)
}

func TestCouponDiscountExhausted(t *testing.T) {
	c := newCoupon(func(c *domain.Coupon) {
		c.MaxUses = 5
		c.UsedCount = 5
	})
	_, err := CouponDiscount(c, 200, time.Now())
	assert.ErrorIs(t, err, ErrCouponExhausted)
}

func TestCouponDiscountDisabled(t *testing.T) {
	c := newCoupon(func(c *domain.Coupon) {
		c.Status = common.DISABLED
	})
	_, err := CouponDiscount(c, 200, time.Now())
	assert.ErrorIs(t, err, ErrCouponInactive)
}

func TestAmountDue(t *testing.T) {
	b := &domain.Booking{Total: 200, DepositAmount: 50}

	amt, phase := AmountDue(b)
	assert.Equal(t, 50.0, amt)
	assert.Equal(t, PhaseDeposit, phase)

	b.DepositPaid = true
	amt, phase = AmountDue(b)
	assert.Equal(t, 150.0, amt)
	assert.Equal(t, PhaseBalance, phase)

	b.FinalPaid = true
	amt, phase = AmountDue(b)
	assert.Equal(t, 0.0, amt)
	assert.Equal(t, PhasePaid, phase)
}
