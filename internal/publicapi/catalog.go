package publicapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

func registerCatalogRoutes() {
	webserver.PubGET("/catalog/packages", listPublicPackages)
	webserver.PubGET("/catalog/addons", listPublicAddons)
	webserver.PubGET("/gallery", listPublicGallery)
}

func listPublicPackages(c echo.Context) error {
	var packages []domain.ServicePackage
	err := GetDB(c).Where("status = ?", common.ENABLED).
		Order("sort ASC, id ASC").Find(&packages).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load packages", err.Error())
	}
	return ok(c, packages)
}

func listPublicAddons(c echo.Context) error {
	var addons []domain.Addon
	err := GetDB(c).Where("status = ?", common.ENABLED).
		Order("sort ASC, id ASC").Find(&addons).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load addons", err.Error())
	}
	return ok(c, addons)
}

func listPublicGallery(c echo.Context) error {
	var photos []domain.GalleryPhoto
	err := GetDB(c).Where("status = ?", common.ENABLED).
		Order("sort ASC, id DESC").Find(&photos).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load gallery", err.Error())
	}
	return ok(c, photos)
}
