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

type quoteUpdatePayload struct {
	Status string `json:"status" validate:"required,oneof=new contacted closed"`
}

func registerQuoteRoutes() {
	webserver.ApiGET("/quotes", listQuotes)
	webserver.ApiGET("/quotes/:id", getQuote)
	webserver.ApiPUT("/quotes/:id", updateQuote)
	webserver.ApiDELETE("/quotes/:id", deleteQuote)
}

func listQuotes(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.Quote{})

	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		base = base.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		op := likeOperator(GetDB(c))
		base = base.Where("name "+op+" ? OR email "+op+" ?", "%"+q+"%", "%"+q+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query quotes", err.Error())
	}
	var quotes []domain.Quote
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&quotes).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query quotes", err.Error())
	}
	return paged(c, quotes, total, page, pageSize)
}

func getQuote(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid quote ID", nil)
	}
	var quote domain.Quote
	if err := GetDB(c).Where("id = ?", id).First(&quote).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "QUOTE_NOT_FOUND", "Quote not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query quote", err.Error())
	}
	return ok(c, quote)
}

func updateQuote(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid quote ID", nil)
	}
	var payload quoteUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quote parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid quote parameters", err.Error())
	}
	if !common.InSlice(payload.Status, domain.QuoteStatuses) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown quote status", nil)
	}

	var quote domain.Quote
	if err := GetDB(c).Where("id = ?", id).First(&quote).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "QUOTE_NOT_FOUND", "Quote not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query quote", err.Error())
	}

	err = GetDB(c).Model(&quote).Updates(map[string]interface{}{
		"status":     payload.Status,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update quote", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&quote)
	oprLog(c, "quote_update", "updated quote "+quote.Ref)
	return ok(c, quote)
}

func deleteQuote(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid quote ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Quote{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete quote", err.Error())
	}
	oprLog(c, "quote_delete", fmt.Sprintf("deleted quote %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
