package publicapi

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/notify"
	"github.com/glowbooking/glowbook/internal/pricing"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

type paymentPayload struct {
	Nonce string `json:"nonce" validate:"required,min=1,max=200"`
}

func registerPaymentRoutes() {
	webserver.PubGET("/pay/:token", getPaymentPage)
	webserver.PubPOST("/pay/:token", submitPayment)
}

func findBookingByToken(c echo.Context) (*domain.Booking, error) {
	token := c.Param("token")
	if len(token) != 32 {
		return nil, gorm.ErrRecordNotFound
	}
	var booking domain.Booking
	if err := GetDB(c).Where("payment_token = ?", token).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// getPaymentPage returns what the customer payment page needs: the booking
// summary and the next amount due.
func getPaymentPage(c echo.Context) error {
	booking, err := findBookingByToken(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query booking", err.Error())
	}

	var addons []domain.BookingAddon
	GetDB(c).Where("booking_id = ?", booking.ID).Find(&addons)

	due, phase := pricing.AmountDue(booking)
	return ok(c, map[string]interface{}{
		"ref":            booking.Ref,
		"customer_name":  booking.CustomerName,
		"package_name":   booking.PackageName,
		"scheduled_at":   booking.ScheduledAt,
		"addons":         addons,
		"subtotal":       booking.Subtotal,
		"discount":       booking.Discount,
		"total":          booking.Total,
		"deposit_amount": booking.DepositAmount,
		"deposit_paid":   booking.DepositPaid,
		"final_paid":     booking.FinalPaid,
		"amount_due":     due,
		"phase":          phase,
	})
}

func submitPayment(c echo.Context) error {
	booking, err := findBookingByToken(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query booking", err.Error())
	}
	if booking.Status == domain.BookingCancelled {
		return fail(c, http.StatusBadRequest, "BOOKING_CANCELLED", "This booking was cancelled", nil)
	}

	var payload paymentPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payment request", err.Error())
	}

	due, phase := pricing.AmountDue(booking)
	if phase == pricing.PhasePaid {
		return fail(c, http.StatusBadRequest, "ALREADY_PAID", "This booking is already paid in full", nil)
	}
	if due <= 0 {
		// zero-amount phase, e.g. a fully discounted deposit; just mark it
		return markPhasePaid(c, booking, phase, "")
	}

	amountCents := int64(math.Round(due * 100))
	// one idempotency key per booking phase keeps retries from double charging
	idemKey := booking.Ref + "-" + phase
	note := "Booking " + booking.Ref + " " + phase
	squareId, err := payments.CreatePayment(c.Request().Context(), payload.Nonce, amountCents, note, idemKey)
	if err != nil {
		return fail(c, http.StatusBadGateway, "PAYMENT_FAILED", "Payment was declined or could not be processed", err.Error())
	}

	return markPhasePaid(c, booking, phase, squareId)
}

func markPhasePaid(c echo.Context, booking *domain.Booking, phase, squareId string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	switch phase {
	case pricing.PhaseDeposit:
		updates["deposit_paid"] = true
		updates["square_deposit_id"] = squareId
		if booking.Status == domain.BookingPending {
			updates["status"] = domain.BookingConfirmed
		}
	case pricing.PhaseBalance:
		updates["final_paid"] = true
		updates["square_final_id"] = squareId
	}

	if err := GetDB(c).Model(&domain.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Payment succeeded but could not be recorded", err.Error())
	}
	GetDB(c).Where("id = ?", booking.ID).First(booking)

	GetAppContext(c).Bus().Publish(notify.TopicPaymentReceived, *booking, phase)
	metrics.IncrCounter("public_payment_" + phase)

	due, next := pricing.AmountDue(booking)
	return ok(c, map[string]interface{}{
		"ref":        booking.Ref,
		"paid_phase": phase,
		"square_id":  squareId,
		"amount_due": due,
		"phase":      next,
	})
}
