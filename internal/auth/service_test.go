package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/config"
	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	testApp := app.NewApplication(&cfg)
	testApp.OverrideDB(db)

	return New(testApp), db
}

func createOperator(t *testing.T, db *gorm.DB, username, password string) *domain.SysOpr {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	opr := &domain.SysOpr{
		ID:       common.UUIDint64(),
		Username: username,
		Password: string(hashed),
		Level:    "super",
		Status:   common.ENABLED,
	}
	require.NoError(t, db.Create(opr).Error)
	return opr
}

func TestLogin(t *testing.T) {
	svc, db := setupService(t)
	createOperator(t, db, "admin", "secret123")

	pair, opr, err := svc.Login(context.Background(), "admin", "secret123", "")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Len(t, pair.RefreshToken, 64)
	assert.Equal(t, "admin", opr.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, db := setupService(t)
	createOperator(t, db, "admin", "secret123")

	_, _, err := svc.Login(context.Background(), "admin", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "secret123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithTOTP(t *testing.T) {
	svc, db := setupService(t)
	opr := createOperator(t, db, "admin", "secret123")

	secret, url, err := svc.EnrollTOTP(context.Background(), opr.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, url, "otpauth://")

	// second factor becomes mandatory after enrolment
	_, _, err = svc.Login(context.Background(), "admin", "secret123", "")
	assert.ErrorIs(t, err, ErrTOTPRequired)

	_, _, err = svc.Login(context.Background(), "admin", "secret123", "000000")
	assert.ErrorIs(t, err, ErrTOTPInvalid)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	pair, _, err := svc.Login(context.Background(), "admin", "secret123", code)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestDisableTOTP(t *testing.T) {
	svc, db := setupService(t)
	opr := createOperator(t, db, "admin", "secret123")

	_, _, err := svc.EnrollTOTP(context.Background(), opr.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DisableTOTP(context.Background(), opr.ID))

	_, _, err = svc.Login(context.Background(), "admin", "secret123", "")
	assert.NoError(t, err)
}

func TestRefreshRotation(t *testing.T) {
	svc, db := setupService(t)
	createOperator(t, db, "admin", "secret123")

	pair, _, err := svc.Login(context.Background(), "admin", "secret123", "")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the rotated-out token cannot be replayed
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Refresh(context.Background(), common.RandomHex(32))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLogoutRevokes(t *testing.T) {
	svc, db := setupService(t)
	createOperator(t, db, "admin", "secret123")

	pair, _, err := svc.Login(context.Background(), "admin", "secret123", "")
	require.NoError(t, err)

	svc.Logout(context.Background(), pair.RefreshToken)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCleanupExpiredTokens(t *testing.T) {
	svc, db := setupService(t)
	opr := createOperator(t, db, "admin", "secret123")

	expired := domain.AuthRefreshToken{
		ID:        common.UUIDint64(),
		OprId:     opr.ID,
		TokenHash: common.Sha256HashWithSalt("old", common.GetSecretSalt()),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&expired).Error)

	pair, _, err := svc.Login(context.Background(), "admin", "secret123", "")
	require.NoError(t, err)
	_ = pair

	require.NoError(t, svc.CleanupExpiredTokens(context.Background()))

	var count int64
	db.Model(&domain.AuthRefreshToken{}).Count(&count)
	assert.Equal(t, int64(1), count) // only the live token survives
}
