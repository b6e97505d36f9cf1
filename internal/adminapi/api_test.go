package adminapi

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/config"
	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

func setupAdminAPI(t *testing.T) (*echo.Echo, *gorm.DB, string) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	testApp := app.NewApplication(&cfg)
	testApp.OverrideDB(db)

	ws := webserver.Init(testApp)
	InitRouter()

	claims := jwt.MapClaims{
		"uid": "100",
		"usr": "admin",
		"lvl": "super",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.Web.Secret))
	require.NoError(t, err)

	return ws.Echo(), db, token
}

func adminJSON(t *testing.T, e *echo.Echo, token, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		_ = jsoniter.Unmarshal(rec.Body.Bytes(), &envelope)
	}
	return rec, envelope
}

func TestAdminRoutesRejectBadToken(t *testing.T) {
	e, _, _ := setupAdminAPI(t)

	rec, _ := adminJSON(t, e, "not-a-token", http.MethodGet, "/api/v1/admin/coupons", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCouponCRUDAndDuplicate(t *testing.T) {
	e, db, token := setupAdminAPI(t)

	rec, envelope := adminJSON(t, e, token, http.MethodPost, "/api/v1/admin/coupons",
		`{"code":"spring20","discount_type":"percent","value":20,"max_uses":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "SPRING20", data["code"])

	rec, _ = adminJSON(t, e, token, http.MethodPost, "/api/v1/admin/coupons",
		`{"code":"SPRING20","discount_type":"fixed","value":5}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = adminJSON(t, e, token, http.MethodPost, "/api/v1/admin/coupons",
		`{"code":"TOOBIG","discount_type":"percent","value":150}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var coupon domain.Coupon
	require.NoError(t, db.Where("code = ?", "SPRING20").First(&coupon).Error)

	rec, _ = adminJSON(t, e, token, http.MethodGet, "/api/v1/admin/coupons?q=SPRING", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// mutations land in the operator log
	var logs []domain.SysOprLog
	require.NoError(t, db.Find(&logs).Error)
	assert.NotEmpty(t, logs)
}

func TestCouponCSVRoundTrip(t *testing.T) {
	e, db, token := setupAdminAPI(t)

	require.NoError(t, db.Create(&domain.Coupon{
		ID: common.UUIDint64(), Code: "EXPORTME",
		DiscountType: domain.DiscountFixed, Value: 15,
		Status: common.ENABLED,
	}).Error)

	rec, _ := adminJSON(t, e, token, http.MethodGet, "/api/v1/admin/coupons/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXPORTME")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "coupons.csv")
}

func TestBookingUpdateStatusValidation(t *testing.T) {
	e, db, token := setupAdminAPI(t)

	booking := domain.Booking{
		ID: common.UUIDint64(), Ref: "admin-ref-1",
		CustomerName: "Sam", Email: "sam@example.com",
		PaymentToken: common.RandomHex(16),
		Status:       domain.BookingPending,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		CreatedAt:    time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&booking).Error)

	rec, _ := adminJSON(t, e, token, http.MethodPut,
		"/api/v1/admin/bookings/"+strconv.FormatInt(booking.ID, 10),
		`{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Booking
	require.NoError(t, db.Where("id = ?", booking.ID).First(&updated).Error)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)

	rec, _ = adminJSON(t, e, token, http.MethodPut,
		"/api/v1/admin/bookings/"+strconv.FormatInt(booking.ID, 10),
		`{"status":"teleported"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewModeration(t *testing.T) {
	e, db, token := setupAdminAPI(t)

	review := domain.Review{
		ID: common.UUIDint64(), Name: "Dana", Rating: 4,
		Comment: "Nice work", Status: domain.ReviewPending,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&review).Error)

	rec, _ := adminJSON(t, e, token, http.MethodPut,
		"/api/v1/admin/reviews/"+strconv.FormatInt(review.ID, 10)+"/status",
		`{"status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Review
	require.NoError(t, db.Where("id = ?", review.ID).First(&updated).Error)
	assert.Equal(t, domain.ReviewApproved, updated.Status)
}

func TestDashboardSummary(t *testing.T) {
	e, db, token := setupAdminAPI(t)

	mk := func(total, deposit float64, depositPaid, finalPaid bool, status string) {
		require.NoError(t, db.Create(&domain.Booking{
			ID: common.UUIDint64(), Ref: common.RandomHex(8),
			PaymentToken: common.RandomHex(16),
			Total:        total, DepositAmount: deposit,
			DepositPaid: depositPaid, FinalPaid: finalPaid,
			Status:      status,
			ScheduledAt: time.Now().Add(24 * time.Hour),
			CreatedAt:   time.Now(), UpdatedAt: time.Now(),
		}).Error)
	}
	mk(100, 25, true, false, domain.BookingConfirmed)
	mk(200, 50, true, true, domain.BookingCompleted)
	mk(300, 75, false, false, domain.BookingCancelled)

	rec, envelope := adminJSON(t, e, token, http.MethodGet, "/api/v1/admin/dashboard/summary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := envelope["data"].(map[string]interface{})
	// 25 deposit + full 200 collected; cancelled bookings are excluded
	assert.Equal(t, 225.0, data["revenue"])
	assert.Equal(t, 75.0, data["outstanding_due"])
	assert.Equal(t, 150.0, data["mean_booking"])
	assert.Equal(t, 150.0, data["median_booking"])
}
