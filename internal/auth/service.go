package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrTOTPInvalid        = errors.New("invalid totp code")
	ErrTokenInvalid       = errors.New("refresh token invalid or expired")
)

// TokenPair is returned on successful login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Service struct {
	app app.AppContext
}

func New(appCtx app.AppContext) *Service {
	return &Service{app: appCtx}
}

// Login verifies the operator credentials and, when a TOTP secret is
// enrolled, the second factor. On success a JWT access token and an opaque
// refresh token are issued.
func (s *Service) Login(ctx context.Context, username, password, totpCode string) (*TokenPair, *domain.SysOpr, error) {
	var opr domain.SysOpr
	err := s.app.DB().WithContext(ctx).
		Where("username = ? and status = ?", strings.TrimSpace(username), common.ENABLED).
		First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "query operator")
	}

	if bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if opr.TotpSecret != "" {
		if totpCode == "" {
			return nil, nil, ErrTOTPRequired
		}
		if !totp.Validate(totpCode, opr.TotpSecret) {
			return nil, nil, ErrTOTPInvalid
		}
	}

	s.app.DB().WithContext(ctx).Model(&domain.SysOpr{}).
		Where("id = ?", opr.ID).
		Update("last_login", time.Now())

	pair, err := s.issueTokens(ctx, &opr)
	if err != nil {
		return nil, nil, err
	}
	return pair, &opr, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Invalid, expired and revoked tokens all fail the same way.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	hash := common.Sha256HashWithSalt(rawToken, common.GetSecretSalt())

	var row domain.AuthRefreshToken
	err := s.app.DB().WithContext(ctx).Where("token_hash = ?", hash).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, errors.Wrap(err, "query refresh token")
	}
	if row.RevokedAt != nil || time.Now().After(row.ExpiresAt) {
		return nil, ErrTokenInvalid
	}

	var opr domain.SysOpr
	err = s.app.DB().WithContext(ctx).
		Where("id = ? and status = ?", row.OprId, common.ENABLED).
		First(&opr).Error
	if err != nil {
		return nil, ErrTokenInvalid
	}

	now := time.Now()
	s.app.DB().WithContext(ctx).Model(&domain.AuthRefreshToken{}).
		Where("id = ?", row.ID).
		Update("revoked_at", &now)

	return s.issueTokens(ctx, &opr)
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, rawToken string) {
	hash := common.Sha256HashWithSalt(rawToken, common.GetSecretSalt())
	now := time.Now()
	s.app.DB().WithContext(ctx).Model(&domain.AuthRefreshToken{}).
		Where("token_hash = ? and revoked_at is null", hash).
		Update("revoked_at", &now)
}

// EnrollTOTP generates and stores a TOTP secret for the operator and returns
// the secret plus the otpauth provisioning URL. Subsequent logins require the
// second factor.
func (s *Service) EnrollTOTP(ctx context.Context, oprID int64) (secret string, url string, err error) {
	var opr domain.SysOpr
	if err = s.app.DB().WithContext(ctx).Where("id = ?", oprID).First(&opr).Error; err != nil {
		return "", "", errors.Wrap(err, "query operator")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.app.Config().System.Appid,
		AccountName: opr.Username,
	})
	if err != nil {
		return "", "", errors.Wrap(err, "generate totp key")
	}

	err = s.app.DB().WithContext(ctx).Model(&domain.SysOpr{}).
		Where("id = ?", oprID).
		Updates(map[string]interface{}{
			"totp_secret": key.Secret(),
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return "", "", errors.Wrap(err, "save totp secret")
	}

	zap.L().Info("totp enrolled", zap.String("username", opr.Username))
	return key.Secret(), key.URL(), nil
}

// DisableTOTP clears the operator's TOTP secret
func (s *Service) DisableTOTP(ctx context.Context, oprID int64) error {
	return s.app.DB().WithContext(ctx).Model(&domain.SysOpr{}).
		Where("id = ?", oprID).
		Updates(map[string]interface{}{
			"totp_secret": "",
			"updated_at":  time.Now(),
		}).Error
}

// CleanupExpiredTokens deletes expired rows and revoked rows older than 30
// days. Wired to the token_cleanup scheduler task.
func (s *Service) CleanupExpiredTokens(ctx context.Context) error {
	db := s.app.DB().WithContext(ctx)
	if err := db.Where("expires_at < ?", time.Now()).
		Delete(&domain.AuthRefreshToken{}).Error; err != nil {
		return err
	}
	return db.Where("revoked_at is not null and revoked_at < ?",
		time.Now().Add(-30*24*time.Hour)).
		Delete(&domain.AuthRefreshToken{}).Error
}

func (s *Service) issueTokens(ctx context.Context, opr *domain.SysOpr) (*TokenPair, error) {
	cfg := s.app.Config().Web

	accessTTL := time.Duration(cfg.AccessTokenTTL) * time.Minute
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}

	claims := jwt.MapClaims{
		"uid": fmt.Sprintf("%d", opr.ID),
		"usr": opr.Username,
		"lvl": opr.Level,
		"exp": time.Now().Add(accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.Secret))
	if err != nil {
		return nil, errors.Wrap(err, "sign access token")
	}

	refreshHours := s.app.GetSettingsInt64Value("auth", "refresh_token_hours")
	if refreshHours <= 0 {
		refreshHours = int64(cfg.RefreshTokenTTL)
	}
	if refreshHours <= 0 {
		refreshHours = 168
	}

	raw := common.RandomHex(32)
	row := domain.AuthRefreshToken{
		ID:        common.UUIDint64(),
		OprId:     opr.ID,
		TokenHash: common.Sha256HashWithSalt(raw, common.GetSecretSalt()),
		ExpiresAt: time.Now().Add(time.Duration(refreshHours) * time.Hour),
	}
	if err := s.app.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "store refresh token")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}
