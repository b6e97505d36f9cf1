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

type addonPayload struct {
	Name   string  `json:"name" validate:"required,min=1,max=200"`
	Price  float64 `json:"price" validate:"gte=0"`
	Sort   int     `json:"sort"`
	Status string  `json:"status" validate:"omitempty,oneof=enabled disabled"`
}

func registerAddonRoutes() {
	webserver.ApiGET("/catalog/addons", listAddons)
	webserver.ApiPOST("/catalog/addons", createAddon)
	webserver.ApiPUT("/catalog/addons/:id", updateAddon)
	webserver.ApiDELETE("/catalog/addons/:id", deleteAddon)
}

func listAddons(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.Addon{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("name "+likeOperator(GetDB(c))+" ?", "%"+q+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query addons", err.Error())
	}
	var addons []domain.Addon
	if err := base.Order("sort ASC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&addons).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query addons", err.Error())
	}
	return paged(c, addons, total, page, pageSize)
}

func createAddon(c echo.Context) error {
	var payload addonPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse addon parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid addon parameters", err.Error())
	}

	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	addon := domain.Addon{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Price:     payload.Price,
		Sort:      payload.Sort,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&addon).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create addon", err.Error())
	}
	oprLog(c, "addon_create", "created addon "+addon.Name)
	return ok(c, addon)
}

func updateAddon(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid addon ID", nil)
	}
	var payload addonPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse addon parameters", nil)
	}

	var addon domain.Addon
	if err := GetDB(c).Where("id = ?", id).First(&addon).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ADDON_NOT_FOUND", "Addon not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query addon", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != "" {
		updates["name"] = strings.TrimSpace(payload.Name)
	}
	if payload.Price > 0 {
		updates["price"] = payload.Price
	}
	if payload.Sort != 0 {
		updates["sort"] = payload.Sort
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}

	if err := GetDB(c).Model(&addon).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update addon", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&addon)
	oprLog(c, "addon_update", "updated addon "+addon.Name)
	return ok(c, addon)
}

func deleteAddon(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid addon ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Addon{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete addon", err.Error())
	}
	oprLog(c, "addon_delete", fmt.Sprintf("deleted addon %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
