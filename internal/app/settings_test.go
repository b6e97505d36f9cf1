package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/config"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

func setupApp(t *testing.T) (*Application, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	testApp := NewApplication(&cfg)
	testApp.OverrideDB(db)
	return testApp, db
}

func TestSaveSettingsUpdatesExisting(t *testing.T) {
	testApp, db := setupApp(t)

	require.NoError(t, db.Create(&domain.SysConfig{
		ID: common.UUIDint64(), Type: "booking", Name: "deposit_percent",
		Value: "25", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}).Error)

	require.NoError(t, testApp.SaveSettings(map[string]interface{}{
		"booking.deposit_percent": 40,
	}))

	assert.Equal(t, int64(40), testApp.GetSettingsInt64Value("booking", "deposit_percent"))

	var count int64
	db.Model(&domain.SysConfig{}).
		Where("type = ? and name = ?", "booking", "deposit_percent").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSaveSettingsCreatesNewKey(t *testing.T) {
	testApp, db := setupApp(t)

	require.NoError(t, testApp.SaveSettings(map[string]interface{}{
		"custom.brand_color": "teal",
	}))

	var cfg domain.SysConfig
	require.NoError(t, db.Where("type = ? and name = ?", "custom", "brand_color").
		First(&cfg).Error)
	assert.Equal(t, "teal", cfg.Value)
	assert.Equal(t, "teal", testApp.GetSettingsStringValue("custom", "brand_color"))
}

func TestSaveSettingsSkipsBadKeys(t *testing.T) {
	testApp, db := setupApp(t)

	require.NoError(t, testApp.SaveSettings(map[string]interface{}{
		"nodot":     "x",
		".leading":  "x",
		"trailing.": "x",
	}))

	var count int64
	db.Model(&domain.SysConfig{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
