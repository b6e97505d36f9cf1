package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

// InitDb seeds the default operator, settings, schedulers and starter catalog
func (a *Application) InitDb() {
	a.checkSuper()
	a.checkSettings()
	a.checkSchedulers()
	a.checkPackages()
}

func (a *Application) checkSuper() {
	superUsername := a.appConfig.Admin.Username
	defaultPassword := a.appConfig.Admin.Password

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var operator domain.SysOpr
	err = a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     common.NA,
			Username:  superUsername,
			Password:  string(hashed),
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

// defaultSettings are checked at every startup; missing rows are created
var defaultSettings = []settingSchema{
	{"booking.deposit_percent", "25", "Deposit percentage collected on new bookings"},
	{"booking.min_lead_hours", "24", "Minimum hours between booking submission and scheduled time"},
	{"booking.reminder_max_age_hours", "72", "How long an unpaid deposit may age before reminders stop"},
	{"reviews.cache_ttl", "21600", "Google reviews cache lifetime in seconds"},
	{"reviews.auto_approve", "false", "Publish site reviews without moderation"},
	{"notify.site_url", "https://example.com", "Public site base URL used in notification links"},
	{"notify.email_enabled", "true", "Send email notifications via Brevo"},
	{"notify.sms_enabled", "false", "Send SMS notifications via Telnyx"},
	{"auth.refresh_token_hours", "168", "Refresh token lifetime in hours"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}

		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkSchedulers initializes default scheduled tasks
func (a *Application) checkSchedulers() {
	defaultSchedulers := []domain.SysScheduler{
		{
			Name:     "Google Reviews Refresh",
			TaskType: TaskGoogleReviewsRefresh,
			Interval: 21600, // 6 hours
			Status:   common.ENABLED,
			Remark:   "Refreshes the cached Google Places reviews",
		},
		{
			Name:     "Payment Reminder",
			TaskType: TaskPaymentReminder,
			Interval: 3600, // 1 hour
			Status:   common.ENABLED,
			Config:   `{"max_age_hours": 72}`,
			Remark:   "Emails customers with unpaid deposits",
		},
		{
			Name:     "Refresh Token Cleanup",
			TaskType: TaskTokenCleanup,
			Interval: 86400, // daily
			Status:   common.ENABLED,
			Remark:   "Deletes expired and revoked refresh tokens",
		},
	}

	for _, sched := range defaultSchedulers {
		var count int64
		a.gormDB.Model(&domain.SysScheduler{}).
			Where("task_type = ?", sched.TaskType).
			Count(&count)

		if count == 0 {
			sched.NextRunAt = time.Now().Add(time.Duration(sched.Interval) * time.Second)
			if err := a.gormDB.Create(&sched).Error; err != nil {
				zap.L().Error("failed to create default scheduler",
					zap.String("name", sched.Name),
					zap.Error(err))
			} else {
				zap.L().Info("initialized default scheduler",
					zap.String("name", sched.Name),
					zap.String("task_type", sched.TaskType))
			}
		}
	}
}

// checkPackages seeds starter service packages and addons on an empty catalog
func (a *Application) checkPackages() {
	var count int64
	a.gormDB.Model(&domain.ServicePackage{}).Count(&count)
	if count == 0 {
		packages := []domain.ServicePackage{
			{ID: common.UUIDint64(), Name: "Essential Clean", Description: "Exterior wash and interior vacuum", Price: 89, DurationMin: 90, Sort: 1, Status: common.ENABLED},
			{ID: common.UUIDint64(), Name: "Full Detail", Description: "Complete interior and exterior detail", Price: 199, DurationMin: 180, Sort: 2, Status: common.ENABLED},
			{ID: common.UUIDint64(), Name: "Showroom Finish", Description: "Full detail plus paint correction and sealant", Price: 349, DurationMin: 300, Sort: 3, Status: common.ENABLED},
		}
		for _, p := range packages {
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default package", zap.String("name", p.Name), zap.Error(err))
			}
		}
	}

	a.gormDB.Model(&domain.Addon{}).Count(&count)
	if count == 0 {
		addons := []domain.Addon{
			{ID: common.UUIDint64(), Name: "Pet Hair Removal", Price: 35, Sort: 1, Status: common.ENABLED},
			{ID: common.UUIDint64(), Name: "Engine Bay Clean", Price: 45, Sort: 2, Status: common.ENABLED},
			{ID: common.UUIDint64(), Name: "Headlight Restoration", Price: 60, Sort: 3, Status: common.ENABLED},
		}
		for _, ad := range addons {
			if err := a.gormDB.Create(&ad).Error; err != nil {
				zap.L().Error("failed to create default addon", zap.String("name", ad.Name), zap.Error(err))
			}
		}
	}
}
