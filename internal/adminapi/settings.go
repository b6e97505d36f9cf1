package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
)

func registerSettingsRoutes() {
	webserver.ApiGET("/settings", listSettings)
	webserver.ApiPOST("/settings", saveSettings)
}

func listSettings(c echo.Context) error {
	base := GetDB(c).Model(&domain.SysConfig{})
	if typ := strings.TrimSpace(c.QueryParam("type")); typ != "" {
		base = base.Where("type = ?", typ)
	}
	var settings []domain.SysConfig
	if err := base.Order("type, sort, name").Find(&settings).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, settings)
}

// saveSettings upserts "category.name" keyed values
func saveSettings(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", nil)
	}
	if len(payload) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No settings provided", nil)
	}
	for key := range payload {
		if !strings.Contains(key, ".") {
			return fail(c, http.StatusBadRequest, "INVALID_KEY", "Setting keys must be category.name", key)
		}
	}
	if err := GetAppContext(c).SaveSettings(payload); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save settings", err.Error())
	}
	oprLog(c, "settings_update", "updated system settings")
	return ok(c, nil)
}
