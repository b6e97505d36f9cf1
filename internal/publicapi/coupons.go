package publicapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/pricing"
	"github.com/glowbooking/glowbook/internal/webserver"
)

type couponValidatePayload struct {
	Code     string  `json:"code" validate:"required,min=2,max=40"`
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
}

func registerCouponRoutes() {
	webserver.PubPOST("/coupons/validate", validateCoupon)
}

// validateCoupon answers with 404 for anything the customer cannot use.
// Whether the code is unknown, expired, exhausted or disabled is not
// disclosed.
func validateCoupon(c echo.Context) error {
	var payload couponValidatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid coupon request", err.Error())
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	var coupon domain.Coupon
	err := GetDB(c).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon is not valid", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupon", err.Error())
	}

	discount, err := pricing.CouponDiscount(&coupon, payload.Subtotal, time.Now())
	if err != nil {
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon is not valid", nil)
	}

	return ok(c, map[string]interface{}{
		"code":          coupon.Code,
		"discount_type": coupon.DiscountType,
		"value":         coupon.Value,
		"discount":      discount,
	})
}
