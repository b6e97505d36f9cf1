package publicapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/config"
	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/integrations/places"
	"github.com/glowbooking/glowbook/internal/reviews"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

type fakePayments struct {
	id    string
	err   error
	calls int
}

func (f *fakePayments) CreatePayment(ctx context.Context, nonce string, amountCents int64, note, idemKey string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type noopFetcher struct{}

func (noopFetcher) FetchDetails(ctx context.Context) (*places.Details, error) {
	return &places.Details{}, nil
}

var _ places.Fetcher = noopFetcher{}

func setupAPI(t *testing.T, pay *fakePayments) (*echo.Echo, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	testApp := app.NewApplication(&cfg)
	testApp.OverrideDB(db)

	ws := webserver.Init(testApp)
	InitRouter(reviews.New(testApp, noopFetcher{}), pay)
	return ws.Echo(), db
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func seedPackage(t *testing.T, db *gorm.DB, price float64) domain.ServicePackage {
	pkg := domain.ServicePackage{
		ID: common.UUIDint64(), Name: "Full Detail", Price: price,
		Status: common.ENABLED, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&pkg).Error)
	return pkg
}

func TestValidateCouponExpiredIs404(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})

	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Create(&domain.Coupon{
		ID: common.UUIDint64(), Code: "OLD10",
		DiscountType: domain.DiscountPercent, Value: 10,
		ValidTo: &past, Status: common.ENABLED,
	}).Error)

	rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/coupons/validate",
		`{"code":"OLD10","subtotal":100}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/coupons/validate",
		`{"code":"NOSUCH","subtotal":100}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidateCouponCapsDiscount(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})

	require.NoError(t, db.Create(&domain.Coupon{
		ID: common.UUIDint64(), Code: "BIG50",
		DiscountType: domain.DiscountFixed, Value: 50,
		Status: common.ENABLED,
	}).Error)

	rec, envelope := doJSON(t, e, http.MethodPost, "/api/v1/coupons/validate",
		`{"code":"big50","subtotal":30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, 30.0, data["discount"])
}

func TestCreateBookingComputesTotals(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})
	pkg := seedPackage(t, db, 100)

	addon := domain.Addon{
		ID: common.UUIDint64(), Name: "Pet Hair Removal", Price: 50,
		Status: common.ENABLED, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&addon).Error)
	require.NoError(t, db.Create(&domain.Coupon{
		ID: common.UUIDint64(), Code: "SAVE10",
		DiscountType: domain.DiscountPercent, Value: 10,
		Status: common.ENABLED,
	}).Error)

	scheduled := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	body := `{"customer_name":"Jordan","email":"jordan@example.com","address":"12 Main St",` +
		`"package_id":"` + strconv.FormatInt(pkg.ID, 10) + `",` +
		`"addon_ids":["` + strconv.FormatInt(addon.ID, 10) + `"],` +
		`"coupon_code":"save10","scheduled_at":"` + scheduled + `"}`

	rec, envelope := doJSON(t, e, http.MethodPost, "/api/v1/bookings", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, 150.0, data["subtotal"])
	assert.Equal(t, 15.0, data["discount"])
	assert.Equal(t, 135.0, data["total"])
	assert.Equal(t, 33.75, data["deposit_amount"])
	require.NotEmpty(t, data["payment_token"])

	var booking domain.Booking
	require.NoError(t, db.Where("ref = ?", data["ref"]).First(&booking).Error)
	assert.Equal(t, domain.BookingPending, booking.Status)
	assert.Len(t, booking.PaymentToken, 32)

	var coupon domain.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&coupon).Error)
	assert.Equal(t, 1, coupon.UsedCount)

	var addons []domain.BookingAddon
	require.NoError(t, db.Where("booking_id = ?", booking.ID).Find(&addons).Error)
	require.Len(t, addons, 1)
	assert.Equal(t, 50.0, addons[0].Price)
}

func TestCreateBookingHonorsBookingSettings(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})
	pkg := seedPackage(t, db, 100)

	require.NoError(t, db.Create(&domain.SysConfig{
		ID: common.UUIDint64(), Type: "booking", Name: "min_lead_hours", Value: "48",
	}).Error)
	require.NoError(t, db.Create(&domain.SysConfig{
		ID: common.UUIDint64(), Type: "booking", Name: "deposit_percent", Value: "50",
	}).Error)

	soon := time.Now().Add(12 * time.Hour).Format(time.RFC3339)
	body := `{"customer_name":"Jordan","email":"jordan@example.com","address":"12 Main St",` +
		`"package_id":"` + strconv.FormatInt(pkg.ID, 10) + `",` +
		`"scheduled_at":"` + soon + `"}`

	rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/bookings", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOO_SOON")

	var count int64
	db.Model(&domain.Booking{}).Count(&count)
	assert.Equal(t, int64(0), count)

	later := time.Now().Add(96 * time.Hour).Format(time.RFC3339)
	body = `{"customer_name":"Jordan","email":"jordan@example.com","address":"12 Main St",` +
		`"package_id":"` + strconv.FormatInt(pkg.ID, 10) + `",` +
		`"scheduled_at":"` + later + `"}`

	rec, envelope := doJSON(t, e, http.MethodPost, "/api/v1/bookings", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, 100.0, data["total"])
	assert.Equal(t, 50.0, data["deposit_amount"])
}

func TestCreateBookingInvalidCoupon(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})
	pkg := seedPackage(t, db, 100)

	scheduled := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	body := `{"customer_name":"Jordan","email":"jordan@example.com","address":"12 Main St",` +
		`"package_id":"` + strconv.FormatInt(pkg.ID, 10) + `",` +
		`"coupon_code":"NOSUCH","scheduled_at":"` + scheduled + `"}`

	rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/bookings", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentFlowDepositThenBalance(t *testing.T) {
	pay := &fakePayments{id: "sq-payment-1"}
	e, db := setupAPI(t, pay)

	booking := domain.Booking{
		ID: common.UUIDint64(), Ref: "test-ref-1",
		CustomerName: "Jordan", Email: "jordan@example.com",
		PackageName: "Full Detail", Subtotal: 200, Total: 200,
		DepositPct: 25, DepositAmount: 50,
		PaymentToken: common.RandomHex(16),
		Status:       domain.BookingPending,
		ScheduledAt:  time.Now().Add(48 * time.Hour),
		CreatedAt:    time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&booking).Error)

	rec, envelope := doJSON(t, e, http.MethodGet, "/api/v1/pay/"+booking.PaymentToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, 50.0, data["amount_due"])
	assert.Equal(t, "deposit", data["phase"])

	rec, envelope = doJSON(t, e, http.MethodPost, "/api/v1/pay/"+booking.PaymentToken,
		`{"nonce":"cnon:test"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, "deposit", data["paid_phase"])
	assert.Equal(t, 150.0, data["amount_due"])
	assert.Equal(t, "balance", data["phase"])
	assert.Equal(t, 1, pay.calls)

	var updated domain.Booking
	require.NoError(t, db.Where("id = ?", booking.ID).First(&updated).Error)
	assert.True(t, updated.DepositPaid)
	assert.Equal(t, "sq-payment-1", updated.SquareDepositId)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)

	rec, envelope = doJSON(t, e, http.MethodPost, "/api/v1/pay/"+booking.PaymentToken,
		`{"nonce":"cnon:test"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, "balance", data["paid_phase"])
	assert.Equal(t, "paid", data["phase"])

	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/pay/"+booking.PaymentToken,
		`{"nonce":"cnon:test"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentUnknownToken(t *testing.T) {
	e, _ := setupAPI(t, &fakePayments{})

	rec, _ := doJSON(t, e, http.MethodGet, "/api/v1/pay/"+common.RandomHex(16), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, e, http.MethodGet, "/api/v1/pay/short", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReviewPendingByDefault(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})

	rec, envelope := doJSON(t, e, http.MethodPost, "/api/v1/reviews",
		`{"name":"Casey","rating":5,"comment":"Car looks incredible"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, domain.ReviewPending, data["status"])

	var review domain.Review
	require.NoError(t, db.Where("name = ?", "Casey").First(&review).Error)
	assert.Equal(t, domain.ReviewPending, review.Status)

	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/reviews",
		`{"name":"Casey","rating":9,"comment":"bad rating"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicCatalogFiltersDisabled(t *testing.T) {
	e, db := setupAPI(t, &fakePayments{})
	seedPackage(t, db, 100)
	require.NoError(t, db.Create(&domain.ServicePackage{
		ID: common.UUIDint64(), Name: "Retired", Price: 10, Status: common.DISABLED,
	}).Error)

	rec, envelope := doJSON(t, e, http.MethodGet, "/api/v1/catalog/packages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].([]interface{})
	require.Len(t, data, 1)
}
