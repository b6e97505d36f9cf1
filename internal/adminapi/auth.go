package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/glowbooking/glowbook/internal/auth"
	"github.com/glowbooking/glowbook/internal/webserver"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
	TotpCode string `json:"totp_code" validate:"omitempty,len=6"`
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required,len=64"`
}

func registerAuthRoutes() {
	// login and refresh sit outside the JWT middleware
	webserver.PubPOST("/auth/login", loginHandler)
	webserver.PubPOST("/auth/refresh", refreshHandler)
	webserver.ApiPOST("/auth/logout", logoutHandler)
	webserver.ApiPOST("/auth/totp/enroll", enrollTOTPHandler)
	webserver.ApiPOST("/auth/totp/disable", disableTOTPHandler)
}

func loginHandler(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid login parameters", err.Error())
	}

	svc := auth.New(GetAppContext(c))
	pair, opr, err := svc.Login(c.Request().Context(), payload.Username, payload.Password, payload.TotpCode)
	switch {
	case errors.Is(err, auth.ErrTOTPRequired):
		return fail(c, http.StatusUnauthorized, "TOTP_REQUIRED", "TOTP code required", nil)
	case errors.Is(err, auth.ErrTOTPInvalid):
		return fail(c, http.StatusUnauthorized, "TOTP_INVALID", "Invalid TOTP code", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed", err.Error())
	}

	oprLogDirect(c, opr.Username, "login", "operator login")

	return ok(c, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"username":      opr.Username,
		"level":         opr.Level,
		"totp_enabled":  opr.TotpSecret != "",
	})
}

func refreshHandler(c echo.Context) error {
	var payload refreshPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse refresh parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid refresh parameters", err.Error())
	}

	svc := auth.New(GetAppContext(c))
	pair, err := svc.Refresh(c.Request().Context(), payload.RefreshToken)
	if errors.Is(err, auth.ErrTokenInvalid) {
		return fail(c, http.StatusUnauthorized, "TOKEN_INVALID", "Refresh token invalid or expired", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "REFRESH_FAILED", "Token refresh failed", err.Error())
	}
	return ok(c, pair)
}

func logoutHandler(c echo.Context) error {
	var payload refreshPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse logout parameters", nil)
	}

	svc := auth.New(GetAppContext(c))
	svc.Logout(c.Request().Context(), payload.RefreshToken)
	oprLog(c, "logout", "operator logout")
	return ok(c, nil)
}

func enrollTOTPHandler(c echo.Context) error {
	oprID := cast.ToInt64(c.Get(webserver.OprIdKey))
	if oprID == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Operator identity missing", nil)
	}

	svc := auth.New(GetAppContext(c))
	secret, url, err := svc.EnrollTOTP(c.Request().Context(), oprID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOTP_ENROLL_FAILED", "Failed to enroll TOTP", err.Error())
	}
	oprLog(c, "totp_enroll", "operator enrolled totp")
	return ok(c, map[string]string{"secret": secret, "url": url})
}

func disableTOTPHandler(c echo.Context) error {
	oprID := cast.ToInt64(c.Get(webserver.OprIdKey))
	if oprID == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Operator identity missing", nil)
	}

	svc := auth.New(GetAppContext(c))
	if err := svc.DisableTOTP(c.Request().Context(), oprID); err != nil {
		return fail(c, http.StatusInternalServerError, "TOTP_DISABLE_FAILED", "Failed to disable TOTP", err.Error())
	}
	oprLog(c, "totp_disable", "operator disabled totp")
	return ok(c, nil)
}
