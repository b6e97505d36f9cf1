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

type packagePayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
	DurationMin int     `json:"duration_min" validate:"gte=0"`
	Sort        int     `json:"sort"`
	Status      string  `json:"status" validate:"omitempty,oneof=enabled disabled"`
}

func registerPackageRoutes() {
	webserver.ApiGET("/catalog/packages", listPackages)
	webserver.ApiGET("/catalog/packages/:id", getPackage)
	webserver.ApiPOST("/catalog/packages", createPackage)
	webserver.ApiPUT("/catalog/packages/:id", updatePackage)
	webserver.ApiDELETE("/catalog/packages/:id", deletePackage)
}

func listPackages(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.ServicePackage{})

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("name "+likeOperator(GetDB(c))+" ?", "%"+q+"%")
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query packages", err.Error())
	}
	var packages []domain.ServicePackage
	if err := base.Order("sort ASC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&packages).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query packages", err.Error())
	}
	return paged(c, packages, total, page, pageSize)
}

func getPackage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID", nil)
	}
	var pkg domain.ServicePackage
	if err := GetDB(c).Where("id = ?", id).First(&pkg).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PACKAGE_NOT_FOUND", "Package not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query package", err.Error())
	}
	return ok(c, pkg)
}

func createPackage(c echo.Context) error {
	var payload packagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse package parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid package parameters", err.Error())
	}

	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	pkg := domain.ServicePackage{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Price:       payload.Price,
		DurationMin: payload.DurationMin,
		Sort:        payload.Sort,
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := GetDB(c).Create(&pkg).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create package", err.Error())
	}
	oprLog(c, "package_create", "created package "+pkg.Name)
	return ok(c, pkg)
}

func updatePackage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID", nil)
	}
	var payload packagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse package parameters", nil)
	}

	var pkg domain.ServicePackage
	if err := GetDB(c).Where("id = ?", id).First(&pkg).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PACKAGE_NOT_FOUND", "Package not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query package", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != "" {
		updates["name"] = strings.TrimSpace(payload.Name)
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}
	if payload.Price > 0 {
		updates["price"] = payload.Price
	}
	if payload.DurationMin > 0 {
		updates["duration_min"] = payload.DurationMin
	}
	if payload.Sort != 0 {
		updates["sort"] = payload.Sort
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}

	if err := GetDB(c).Model(&pkg).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update package", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&pkg)
	oprLog(c, "package_update", "updated package "+pkg.Name)
	return ok(c, pkg)
}

func deletePackage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.ServicePackage{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete package", err.Error())
	}
	oprLog(c, "package_delete", fmt.Sprintf("deleted package %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
