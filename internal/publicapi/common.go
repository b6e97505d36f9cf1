package publicapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/reviews"
	"github.com/glowbooking/glowbook/internal/webserver"
)

// PaymentCreator charges a card nonce; satisfied by the Square client and by
// test fakes.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, nonce string, amountCents int64, note, idemKey string) (string, error)
}

var (
	reviewSvc *reviews.Service
	payments  PaymentCreator
)

// InitRouter registers all public routes. The web server must be initialized
// first.
func InitRouter(rs *reviews.Service, pc PaymentCreator) {
	reviewSvc = rs
	payments = pc

	registerCatalogRoutes()
	registerQuoteRoutes()
	registerBookingRoutes()
	registerCouponRoutes()
	registerPaymentRoutes()
	registerReviewRoutes()
}

// Response is the uniform success envelope
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// ErrorResponse is the uniform failure envelope
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	if status >= http.StatusInternalServerError {
		zap.L().Error("public api error",
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Any("detail", detail))
		detail = nil
	}
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Detail: detail})
}
