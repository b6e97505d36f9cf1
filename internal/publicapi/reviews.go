package publicapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/notify"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

type reviewPayload struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment    string `json:"comment" validate:"required,min=1,max=5000"`
	BookingRef string `json:"booking_ref" validate:"omitempty,max=36"`
}

func registerReviewRoutes() {
	webserver.PubGET("/reviews", listPublicReviews)
	webserver.PubPOST("/reviews", submitReview)
}

// listPublicReviews merges approved site reviews with the cached Google
// reviews
func listPublicReviews(c echo.Context) error {
	merged, err := reviewSvc.Merged(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load reviews", err.Error())
	}
	return ok(c, merged)
}

func submitReview(c echo.Context) error {
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid review", err.Error())
	}

	review := domain.Review{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		Status:    domain.ReviewPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if GetAppContext(c).GetSettingsBoolValue("reviews", "auto_approve") {
		review.Status = domain.ReviewApproved
	}

	if payload.BookingRef != "" {
		var booking domain.Booking
		if err := GetDB(c).Where("ref = ?", payload.BookingRef).First(&booking).Error; err == nil {
			review.BookingId = &booking.ID
		}
	}

	if err := GetDB(c).Create(&review).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save review", err.Error())
	}

	GetAppContext(c).Bus().Publish(notify.TopicReviewSubmitted, review)
	metrics.IncrCounter("public_review_submitted")
	return ok(c, map[string]interface{}{"status": review.Status})
}
