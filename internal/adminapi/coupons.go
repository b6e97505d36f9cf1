package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

type couponPayload struct {
	Code         string  `json:"code" validate:"required,min=2,max=40"`
	DiscountType string  `json:"discount_type" validate:"required,oneof=percent fixed"`
	Value        float64 `json:"value" validate:"gt=0"`
	ValidFrom    string  `json:"valid_from" validate:"omitempty"`
	ValidTo      string  `json:"valid_to" validate:"omitempty"`
	MaxUses      int     `json:"max_uses" validate:"gte=0"`
	Status       string  `json:"status" validate:"omitempty,oneof=enabled disabled"`
	Remark       string  `json:"remark" validate:"omitempty,max=500"`
}

func registerCouponRoutes() {
	webserver.ApiGET("/coupons", listCoupons)
	webserver.ApiGET("/coupons/export", exportCoupons)
	webserver.ApiPOST("/coupons/import", importCoupons)
	webserver.ApiPOST("/coupons", createCoupon)
	webserver.ApiPUT("/coupons/:id", updateCoupon)
	webserver.ApiDELETE("/coupons/:id", deleteCoupon)
}

func listCoupons(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.Coupon{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("code "+likeOperator(GetDB(c))+" ?", "%"+q+"%")
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	var coupons []domain.Coupon
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&coupons).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	return paged(c, coupons, total, page, pageSize)
}

func couponFromPayload(payload *couponPayload) (*domain.Coupon, error) {
	coupon := &domain.Coupon{
		ID:           common.UUIDint64(),
		Code:         strings.ToUpper(strings.TrimSpace(payload.Code)),
		DiscountType: payload.DiscountType,
		Value:        payload.Value,
		MaxUses:      payload.MaxUses,
		Status:       payload.Status,
		Remark:       payload.Remark,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if coupon.Status == "" {
		coupon.Status = common.ENABLED
	}
	if coupon.DiscountType == domain.DiscountPercent && payload.Value > 100 {
		return nil, fmt.Errorf("percent discount cannot exceed 100")
	}
	if payload.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, payload.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("valid_from must be RFC3339")
		}
		coupon.ValidFrom = &t
	}
	if payload.ValidTo != "" {
		t, err := time.Parse(time.RFC3339, payload.ValidTo)
		if err != nil {
			return nil, fmt.Errorf("valid_to must be RFC3339")
		}
		coupon.ValidTo = &t
	}
	return coupon, nil
}

func createCoupon(c echo.Context) error {
	var payload couponPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid coupon parameters", err.Error())
	}

	coupon, err := couponFromPayload(&payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	var dup domain.Coupon
	if err := GetDB(c).Where("code = ?", coupon.Code).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_COUPON", "Coupon with this code already exists", nil)
	}

	if err := GetDB(c).Create(coupon).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create coupon", err.Error())
	}
	oprLog(c, "coupon_create", "created coupon "+coupon.Code)
	return ok(c, coupon)
}

func updateCoupon(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	var payload couponPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon parameters", nil)
	}

	var coupon domain.Coupon
	if err := GetDB(c).Where("id = ?", id).First(&coupon).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupon", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.DiscountType != "" {
		updates["discount_type"] = payload.DiscountType
	}
	if payload.Value > 0 {
		if payload.DiscountType == domain.DiscountPercent && payload.Value > 100 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "percent discount cannot exceed 100", nil)
		}
		updates["value"] = payload.Value
	}
	if payload.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, payload.ValidFrom)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "valid_from must be RFC3339", nil)
		}
		updates["valid_from"] = t
	}
	if payload.ValidTo != "" {
		t, err := time.Parse(time.RFC3339, payload.ValidTo)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "valid_to must be RFC3339", nil)
		}
		updates["valid_to"] = t
	}
	if payload.MaxUses > 0 {
		updates["max_uses"] = payload.MaxUses
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Remark != "" {
		updates["remark"] = payload.Remark
	}

	if err := GetDB(c).Model(&coupon).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update coupon", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&coupon)
	oprLog(c, "coupon_update", "updated coupon "+coupon.Code)
	return ok(c, coupon)
}

func deleteCoupon(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Coupon{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete coupon", err.Error())
	}
	oprLog(c, "coupon_delete", fmt.Sprintf("deleted coupon %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

// exportCoupons streams all coupons as a CSV download
func exportCoupons(c echo.Context) error {
	var coupons []domain.Coupon
	if err := GetDB(c).Order("id").Find(&coupons).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="coupons.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().WriteHeader(http.StatusOK)

	oprLog(c, "coupon_export", fmt.Sprintf("exported %d coupons", len(coupons)))
	return gocsv.Marshal(&coupons, c.Response())
}

// importCoupons loads coupons from an uploaded CSV file. Rows whose code
// already exists are skipped.
func importCoupons(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "MISSING_FILE", "CSV file is required", nil)
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to open uploaded file", nil)
	}
	defer src.Close()

	var rows []domain.Coupon
	if err := gocsv.Unmarshal(src, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to parse CSV", err.Error())
	}

	imported, skipped := 0, 0
	for i := range rows {
		row := rows[i]
		row.Code = strings.ToUpper(strings.TrimSpace(row.Code))
		if row.Code == "" || (row.DiscountType != domain.DiscountPercent && row.DiscountType != domain.DiscountFixed) {
			skipped++
			continue
		}
		var dup domain.Coupon
		if err := GetDB(c).Where("code = ?", row.Code).First(&dup).Error; err == nil {
			skipped++
			continue
		}
		row.ID = common.UUIDint64()
		if row.Status == "" {
			row.Status = common.ENABLED
		}
		row.CreatedAt = time.Now()
		row.UpdatedAt = time.Now()
		if err := GetDB(c).Create(&row).Error; err != nil {
			skipped++
			continue
		}
		imported++
	}

	oprLog(c, "coupon_import", fmt.Sprintf("imported %d coupons, skipped %d", imported, skipped))
	return ok(c, map[string]interface{}{"imported": imported, "skipped": skipped})
}
