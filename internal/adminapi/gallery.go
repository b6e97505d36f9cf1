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

type galleryPayload struct {
	Title  string `json:"title" validate:"omitempty,max=200"`
	Url    string `json:"url" validate:"required,url,max=1024"`
	Sort   int    `json:"sort"`
	Status string `json:"status" validate:"omitempty,oneof=enabled disabled"`
}

func registerGalleryRoutes() {
	webserver.ApiGET("/gallery", listGalleryPhotos)
	webserver.ApiPOST("/gallery", createGalleryPhoto)
	webserver.ApiPUT("/gallery/:id", updateGalleryPhoto)
	webserver.ApiDELETE("/gallery/:id", deleteGalleryPhoto)
}

func listGalleryPhotos(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.GalleryPhoto{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query gallery", err.Error())
	}
	var photos []domain.GalleryPhoto
	if err := base.Order("sort ASC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&photos).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query gallery", err.Error())
	}
	return paged(c, photos, total, page, pageSize)
}

func createGalleryPhoto(c echo.Context) error {
	var payload galleryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse gallery parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid gallery parameters", err.Error())
	}

	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	photo := domain.GalleryPhoto{
		ID:        common.UUIDint64(),
		Title:     payload.Title,
		Url:       payload.Url,
		Sort:      payload.Sort,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&photo).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create gallery photo", err.Error())
	}
	oprLog(c, "gallery_create", "added gallery photo "+photo.Url)
	return ok(c, photo)
}

func updateGalleryPhoto(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid photo ID", nil)
	}
	var payload galleryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse gallery parameters", nil)
	}

	var photo domain.GalleryPhoto
	if err := GetDB(c).Where("id = ?", id).First(&photo).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PHOTO_NOT_FOUND", "Gallery photo not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query gallery photo", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Title != "" {
		updates["title"] = payload.Title
	}
	if payload.Url != "" {
		updates["url"] = payload.Url
	}
	if payload.Sort != 0 {
		updates["sort"] = payload.Sort
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}

	if err := GetDB(c).Model(&photo).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update gallery photo", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&photo)
	oprLog(c, "gallery_update", fmt.Sprintf("updated gallery photo %d", id))
	return ok(c, photo)
}

func deleteGalleryPhoto(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid photo ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.GalleryPhoto{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete gallery photo", err.Error())
	}
	oprLog(c, "gallery_delete", fmt.Sprintf("deleted gallery photo %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
