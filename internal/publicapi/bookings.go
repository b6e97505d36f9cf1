package publicapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/notify"
	"github.com/glowbooking/glowbook/internal/pricing"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

type bookingPayload struct {
	CustomerName string   `json:"customer_name" validate:"required,min=1,max=200"`
	Email        string   `json:"email" validate:"required,email,max=200"`
	Phone        string   `json:"phone" validate:"omitempty,max=40"`
	Address      string   `json:"address" validate:"required,min=1,max=500"`
	PackageId    string   `json:"package_id" validate:"required"`
	ScheduledAt  string   `json:"scheduled_at" validate:"required"`
	Notes        string   `json:"notes" validate:"omitempty,max=2000"`
	AddonIds     []string `json:"addon_ids" validate:"omitempty,max=20"`
	CouponCode   string   `json:"coupon_code" validate:"omitempty,max=40"`
}

func registerBookingRoutes() {
	webserver.PubPOST("/bookings", createBooking)
}

func createBooking(c echo.Context) error {
	var payload bookingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse booking request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid booking request", err.Error())
	}

	scheduledAt, err := time.Parse(time.RFC3339, payload.ScheduledAt)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", "scheduled_at must be RFC3339", nil)
	}
	appCtx := GetAppContext(c)
	leadHours := appCtx.GetSettingsInt64Value("booking", "min_lead_hours")
	if leadHours > 0 && scheduledAt.Before(time.Now().Add(time.Duration(leadHours)*time.Hour)) {
		return fail(c, http.StatusBadRequest, "TOO_SOON",
			"Bookings must be scheduled at least "+strconv.FormatInt(leadHours, 10)+" hours out", nil)
	}

	packageId, err := strconv.ParseInt(payload.PackageId, 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PACKAGE", "Invalid package id", nil)
	}
	var pkg domain.ServicePackage
	err = GetDB(c).Where("id = ? and status = ?", packageId, common.ENABLED).First(&pkg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PACKAGE_NOT_FOUND", "Package not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query package", err.Error())
	}

	var addons []domain.Addon
	if len(payload.AddonIds) > 0 {
		ids := make([]int64, 0, len(payload.AddonIds))
		for _, raw := range payload.AddonIds {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fail(c, http.StatusBadRequest, "INVALID_ADDON", "Invalid addon id", raw)
			}
			ids = append(ids, id)
		}
		if err := GetDB(c).Where("id IN ? and status = ?", ids, common.ENABLED).Find(&addons).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query addons", err.Error())
		}
		if len(addons) != len(ids) {
			return fail(c, http.StatusNotFound, "ADDON_NOT_FOUND", "One or more addons not found", nil)
		}
	}

	addonPrices := make([]float64, 0, len(addons))
	for _, a := range addons {
		addonPrices = append(addonPrices, a.Price)
	}
	subtotal := pricing.Subtotal(pkg.Price, addonPrices)

	var discount float64
	var coupon *domain.Coupon
	couponCode := strings.ToUpper(strings.TrimSpace(payload.CouponCode))
	if couponCode != "" {
		var row domain.Coupon
		err := GetDB(c).Where("code = ?", couponCode).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusBadRequest, "COUPON_INVALID", "Coupon is not valid", nil)
		} else if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupon", err.Error())
		}
		discount, err = pricing.CouponDiscount(&row, subtotal, time.Now())
		if err != nil {
			return fail(c, http.StatusBadRequest, "COUPON_INVALID", "Coupon is not valid", nil)
		}
		coupon = &row
	}

	total := common.RoundCents(subtotal - discount)
	depositPct := appCtx.GetSettingsFloat64Value("booking", "deposit_percent")
	if depositPct <= 0 {
		depositPct = appCtx.Config().Booking.DepositPercent
	}

	booking := domain.Booking{
		ID:            common.UUIDint64(),
		Ref:           uuid.NewString(),
		CustomerName:  strings.TrimSpace(payload.CustomerName),
		Email:         strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:         strings.TrimSpace(payload.Phone),
		Address:       payload.Address,
		PackageId:     pkg.ID,
		PackageName:   pkg.Name,
		ScheduledAt:   scheduledAt,
		Notes:         payload.Notes,
		Subtotal:      subtotal,
		CouponCode:    couponCode,
		Discount:      discount,
		Total:         total,
		DepositPct:    depositPct,
		DepositAmount: pricing.Deposit(total, depositPct),
		PaymentToken:  common.RandomHex(16),
		Status:        domain.BookingPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := GetDB(c).Create(&booking).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save booking", err.Error())
	}

	for _, a := range addons {
		err := GetDB(c).Create(&domain.BookingAddon{
			ID:        common.UUIDint64(),
			BookingId: booking.ID,
			AddonId:   a.ID,
			Name:      a.Name,
			Price:     a.Price,
		}).Error
		if err != nil {
			zap.L().Error("failed to save booking addon",
				zap.String("ref", booking.Ref),
				zap.Int64("addon_id", a.ID),
				zap.Error(err))
		}
	}

	if coupon != nil {
		err := GetDB(c).Model(&domain.Coupon{}).
			Where("id = ?", coupon.ID).
			Update("used_count", gorm.Expr("used_count + 1")).Error
		if err != nil {
			zap.L().Error("failed to increment coupon use count",
				zap.String("code", coupon.Code),
				zap.Error(err))
		}
	}

	appCtx.Bus().Publish(notify.TopicBookingCreated, booking)
	metrics.IncrCounter("public_booking_created")

	return ok(c, map[string]interface{}{
		"ref":            booking.Ref,
		"payment_token":  booking.PaymentToken,
		"subtotal":       booking.Subtotal,
		"discount":       booking.Discount,
		"total":          booking.Total,
		"deposit_amount": booking.DepositAmount,
	})
}
