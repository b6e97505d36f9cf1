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

type schedulerPayload struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	TaskType string `json:"task_type" validate:"omitempty,max=50"`
	Interval int    `json:"interval" validate:"omitempty,gte=10"`
	Config   string `json:"config" validate:"omitempty,max=2000"`
	Status   string `json:"status" validate:"omitempty,oneof=enabled disabled"`
	Remark   string `json:"remark" validate:"omitempty,max=500"`
}

func registerSchedulerRoutes() {
	webserver.ApiGET("/system/schedulers", listSchedulers)
	webserver.ApiPOST("/system/schedulers", createScheduler)
	webserver.ApiPUT("/system/schedulers/:id", updateScheduler)
	webserver.ApiDELETE("/system/schedulers/:id", deleteScheduler)
	webserver.ApiPOST("/system/schedulers/:id/run", runScheduler)
}

func listSchedulers(c echo.Context) error {
	var schedulers []domain.SysScheduler
	if err := GetDB(c).Order("id").Find(&schedulers).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query schedulers", err.Error())
	}
	return ok(c, schedulers)
}

func createScheduler(c echo.Context) error {
	var payload schedulerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse scheduler parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid scheduler parameters", err.Error())
	}
	if payload.Name == "" || payload.TaskType == "" || payload.Interval < 10 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "name, task_type and interval (>=10s) are required", nil)
	}

	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	sched := domain.SysScheduler{
		Name:      strings.TrimSpace(payload.Name),
		TaskType:  strings.TrimSpace(payload.TaskType),
		Interval:  payload.Interval,
		Config:    payload.Config,
		Status:    status,
		NextRunAt: time.Now().Add(time.Duration(payload.Interval) * time.Second),
		Remark:    payload.Remark,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&sched).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create scheduler", err.Error())
	}
	oprLog(c, "scheduler_create", "created scheduler "+sched.Name)
	return ok(c, sched)
}

func updateScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	var payload schedulerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse scheduler parameters", nil)
	}

	var sched domain.SysScheduler
	if err := GetDB(c).Where("id = ?", id).First(&sched).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SCHEDULER_NOT_FOUND", "Scheduler not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query scheduler", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != "" {
		updates["name"] = strings.TrimSpace(payload.Name)
	}
	if payload.TaskType != "" {
		updates["task_type"] = strings.TrimSpace(payload.TaskType)
	}
	if payload.Interval >= 10 {
		updates["interval"] = payload.Interval
		updates["next_run_at"] = time.Now().Add(time.Duration(payload.Interval) * time.Second)
	}
	if payload.Config != "" {
		updates["config"] = payload.Config
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Remark != "" {
		updates["remark"] = payload.Remark
	}

	if err := GetDB(c).Model(&sched).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update scheduler", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&sched)
	oprLog(c, "scheduler_update", "updated scheduler "+sched.Name)
	return ok(c, sched)
}

func deleteScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.SysScheduler{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete scheduler", err.Error())
	}
	oprLog(c, "scheduler_delete", fmt.Sprintf("deleted scheduler %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func runScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	if err := GetAppContext(c).RunSchedulerNow(id); err != nil {
		return fail(c, http.StatusNotFound, "SCHEDULER_NOT_FOUND", err.Error(), nil)
	}
	oprLog(c, "scheduler_run", fmt.Sprintf("ran scheduler %d", id))
	return ok(c, nil)
}
