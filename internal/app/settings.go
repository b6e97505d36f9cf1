package app

import (
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

func (a *Application) getSettingsValue(category, name string) string {
	var cfg domain.SysConfig
	err := a.gormDB.Where("type = ? and name = ?", category, name).First(&cfg).Error
	if err != nil {
		return ""
	}
	return cfg.Value
}

func (a *Application) GetSettingsStringValue(category, name string) string {
	return a.getSettingsValue(category, name)
}

func (a *Application) GetSettingsInt64Value(category, name string) int64 {
	return cast.ToInt64(a.getSettingsValue(category, name))
}

func (a *Application) GetSettingsFloat64Value(category, name string) float64 {
	return cast.ToFloat64(a.getSettingsValue(category, name))
}

func (a *Application) GetSettingsBoolValue(category, name string) bool {
	return cast.ToBool(a.getSettingsValue(category, name))
}

// SaveSettings upserts sys_config rows from a map keyed "category.name".
// Unknown keys create a new row rather than silently writing nothing.
func (a *Application) SaveSettings(settings map[string]interface{}) error {
	for key, value := range settings {
		category, name, ok := splitSettingsKey(key)
		if !ok {
			zap.L().Warn("invalid settings key", zap.String("key", key))
			continue
		}
		result := a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Updates(map[string]interface{}{
				"value":      cast.ToString(value),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			err := a.gormDB.Create(&domain.SysConfig{
				ID:    common.UUIDint64(),
				Type:  category,
				Name:  name,
				Value: cast.ToString(value),
			}).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func splitSettingsKey(key string) (category string, name string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], i > 0 && i < len(key)-1
		}
	}
	return "", "", false
}
