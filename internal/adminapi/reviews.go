package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

type reviewModeratePayload struct {
	Status string `json:"status" validate:"required,oneof=pending approved hidden"`
}

func registerReviewRoutes() {
	webserver.ApiGET("/reviews", listReviews)
	webserver.ApiPUT("/reviews/:id/status", moderateReview)
	webserver.ApiDELETE("/reviews/:id", deleteReview)
	webserver.ApiPOST("/reviews/google/refresh", refreshGoogleReviews)
}

func listReviews(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.Review{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}
	var reviews []domain.Review
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&reviews).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}
	return paged(c, reviews, total, page, pageSize)
}

func moderateReview(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID", nil)
	}
	var payload reviewModeratePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid review parameters", err.Error())
	}
	if !common.InSlice(payload.Status, domain.ReviewStatuses) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown review status", nil)
	}

	var review domain.Review
	if err := GetDB(c).Where("id = ?", id).First(&review).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query review", err.Error())
	}

	err = GetDB(c).Model(&review).Updates(map[string]interface{}{
		"status":     payload.Status,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update review", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&review)
	oprLog(c, "review_moderate", fmt.Sprintf("review %d set to %s", id, payload.Status))
	return ok(c, review)
}

func deleteReview(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Review{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete review", err.Error())
	}
	oprLog(c, "review_delete", fmt.Sprintf("deleted review %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

// refreshGoogleReviews runs the Google reviews refresh task out of schedule
func refreshGoogleReviews(c echo.Context) error {
	var sched domain.SysScheduler
	err := GetDB(c).Where("task_type = ?", "google_reviews_refresh").First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SCHEDULER_NOT_FOUND", "No Google reviews refresh task configured", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query scheduler", err.Error())
	}
	if err := GetAppContext(c).RunSchedulerNow(sched.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "TASK_FAILED", "Refresh task failed", err.Error())
	}
	oprLog(c, "google_reviews_refresh", "triggered manual refresh")
	return ok(c, nil)
}
