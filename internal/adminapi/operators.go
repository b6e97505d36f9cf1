package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

type operatorPayload struct {
	Realname string `json:"realname" validate:"omitempty,max=100"`
	Mobile   string `json:"mobile" validate:"omitempty,max=40"`
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"omitempty,min=8,max=200"`
	Level    string `json:"level" validate:"omitempty,oneof=super opr"`
	Status   string `json:"status" validate:"omitempty,oneof=enabled disabled"`
	Remark   string `json:"remark" validate:"omitempty,max=500"`
}

func registerOperatorRoutes() {
	webserver.ApiGET("/system/operators", listOperators)
	webserver.ApiGET("/system/operators/:id", getOperator)
	webserver.ApiPOST("/system/operators", createOperator)
	webserver.ApiPUT("/system/operators/:id", updateOperator)
	webserver.ApiDELETE("/system/operators/:id", deleteOperator)
	webserver.ApiGET("/system/oprlogs", listOprLogs)
}

func listOperators(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.SysOpr{})

	if name := strings.TrimSpace(c.QueryParam("username")); name != "" {
		base = base.Where("username "+likeOperator(GetDB(c))+" ?", "%"+name+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operators", err.Error())
	}
	var oprs []domain.SysOpr
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&oprs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operators", err.Error())
	}
	return paged(c, oprs, total, page, pageSize)
}

func getOperator(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}
	var opr domain.SysOpr
	if err := GetDB(c).Where("id = ?", id).First(&opr).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "OPERATOR_NOT_FOUND", "Operator not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}
	return ok(c, opr)
}

func createOperator(c echo.Context) error {
	var payload operatorPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse operator parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid operator parameters", err.Error())
	}
	if payload.Password == "" {
		return fail(c, http.StatusBadRequest, "MISSING_PASSWORD", "Password is required", nil)
	}

	var dup domain.SysOpr
	if err := GetDB(c).Where("username = ?", payload.Username).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_OPERATOR", "Operator with this username already exists", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_FAILED", "Failed to hash password", err.Error())
	}

	level := payload.Level
	if level == "" {
		level = "opr"
	}
	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}

	opr := domain.SysOpr{
		ID:        common.UUIDint64(),
		Realname:  payload.Realname,
		Mobile:    payload.Mobile,
		Email:     payload.Email,
		Username:  strings.TrimSpace(payload.Username),
		Password:  string(hashed),
		Level:     level,
		Status:    status,
		Remark:    payload.Remark,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&opr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create operator", err.Error())
	}
	oprLog(c, "operator_create", "created operator "+opr.Username)
	return ok(c, opr)
}

func updateOperator(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}
	var payload operatorPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse operator parameters", nil)
	}

	var opr domain.SysOpr
	if err := GetDB(c).Where("id = ?", id).First(&opr).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "OPERATOR_NOT_FOUND", "Operator not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Realname != "" {
		updates["realname"] = payload.Realname
	}
	if payload.Mobile != "" {
		updates["mobile"] = payload.Mobile
	}
	if payload.Email != "" {
		updates["email"] = payload.Email
	}
	if payload.Level != "" {
		updates["level"] = payload.Level
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Remark != "" {
		updates["remark"] = payload.Remark
	}
	if payload.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_FAILED", "Failed to hash password", err.Error())
		}
		updates["password"] = string(hashed)
	}

	if err := GetDB(c).Model(&opr).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update operator", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&opr)
	oprLog(c, "operator_update", "updated operator "+opr.Username)
	return ok(c, opr)
}

func deleteOperator(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}

	var opr domain.SysOpr
	if err := GetDB(c).Where("id = ?", id).First(&opr).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "OPERATOR_NOT_FOUND", "Operator not found", nil)
	}
	if strings.EqualFold(opr.Level, "super") {
		return fail(c, http.StatusBadRequest, "CANNOT_DELETE_SUPER", "The super operator cannot be deleted", nil)
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.SysOpr{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete operator", err.Error())
	}
	oprLog(c, "operator_delete", "deleted operator "+opr.Username)
	return ok(c, map[string]interface{}{"id": id})
}

func listOprLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.SysOprLog{})

	if name := strings.TrimSpace(c.QueryParam("opr_name")); name != "" {
		base = base.Where("opr_name = ?", name)
	}
	start, end := parseDateRange(c)
	if !start.IsZero() {
		base = base.Where("opt_time >= ?", start)
	}
	if !end.IsZero() {
		base = base.Where("opt_time <= ?", end)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	var logs []domain.SysOprLog
	if err := base.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	return paged(c, logs, total, page, pageSize)
}
