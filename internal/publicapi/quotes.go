package publicapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/notify"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

type quotePayload struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Email       string `json:"email" validate:"required,email,max=200"`
	Phone       string `json:"phone" validate:"omitempty,max=40"`
	ServiceName string `json:"service_name" validate:"omitempty,max=200"`
	Message     string `json:"message" validate:"required,min=1,max=5000"`
}

func registerQuoteRoutes() {
	webserver.PubPOST("/quotes", createQuote)
}

func createQuote(c echo.Context) error {
	var payload quotePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quote request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid quote request", err.Error())
	}

	quote := domain.Quote{
		ID:          common.UUIDint64(),
		Ref:         uuid.NewString(),
		Name:        strings.TrimSpace(payload.Name),
		Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:       strings.TrimSpace(payload.Phone),
		ServiceName: payload.ServiceName,
		Message:     payload.Message,
		Status:      domain.QuoteNew,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := GetDB(c).Create(&quote).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save quote request", err.Error())
	}

	GetAppContext(c).Bus().Publish(notify.TopicQuoteCreated, quote)
	metrics.IncrCounter("public_quote_created")
	return ok(c, map[string]interface{}{"ref": quote.Ref})
}
