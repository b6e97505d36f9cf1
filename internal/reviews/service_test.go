package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/config"
	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/integrations/places"
	"github.com/glowbooking/glowbook/pkg/common"
)

type fakeFetcher struct {
	details *places.Details
	err     error
	calls   int
}

func (f *fakeFetcher) FetchDetails(ctx context.Context) (*places.Details, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

func setupService(t *testing.T, fetcher places.Fetcher) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	cfg.Google.PlaceId = "test-place-id"
	cfg.Google.CacheTTL = 3600
	testApp := app.NewApplication(&cfg)
	testApp.OverrideDB(db)

	return New(testApp, fetcher), db
}

func TestRefreshCreatesCacheRow(t *testing.T) {
	fetcher := &fakeFetcher{details: &places.Details{
		Rating: 4.8,
		Total:  120,
		Reviews: []places.Review{
			{AuthorName: "Pat", Rating: 5, Text: "Spotless work"},
		},
	}}
	svc, db := setupService(t, fetcher)

	require.NoError(t, svc.Refresh(context.Background()))

	var row domain.GoogleReviewCache
	require.NoError(t, db.Where("place_id = ?", "test-place-id").First(&row).Error)
	assert.Equal(t, 4.8, row.Rating)
	assert.Equal(t, 120, row.Total)
	assert.Contains(t, row.Payload, "Spotless work")
}

func TestCachedReviewsFetchOnMiss(t *testing.T) {
	fetcher := &fakeFetcher{details: &places.Details{Rating: 4.5, Total: 10}}
	svc, _ := setupService(t, fetcher)

	row, _, err := svc.CachedGoogleReviews(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 4.5, row.Rating)
	assert.Equal(t, 1, fetcher.calls)

	// fresh cache is served without a second upstream call
	_, _, err = svc.CachedGoogleReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestCachedReviewsStaleFallback(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	svc, db := setupService(t, fetcher)

	stale := domain.GoogleReviewCache{
		ID:        common.UUIDint64(),
		PlaceId:   "test-place-id",
		Payload:   `[{"author_name":"Sam","rating":4,"text":"Great finish"}]`,
		Rating:    4.2,
		Total:     30,
		FetchedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(&stale).Error)

	row, parsed, err := svc.CachedGoogleReviews(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 4.2, row.Rating)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Sam", parsed[0].AuthorName)
}

func TestCachedReviewsNoRowNoUpstream(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	svc, _ := setupService(t, fetcher)

	row, parsed, err := svc.CachedGoogleReviews(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, row)
	assert.Empty(t, parsed)
}

func TestMergedIncludesApprovedOnly(t *testing.T) {
	fetcher := &fakeFetcher{details: &places.Details{Rating: 5, Total: 2}}
	svc, db := setupService(t, fetcher)

	require.NoError(t, db.Create(&domain.Review{
		ID: common.UUIDint64(), Name: "Alex", Rating: 5,
		Comment: "Looks brand new", Status: domain.ReviewApproved,
	}).Error)
	require.NoError(t, db.Create(&domain.Review{
		ID: common.UUIDint64(), Name: "Kim", Rating: 1,
		Comment: "spam", Status: domain.ReviewPending,
	}).Error)

	out, err := svc.Merged(context.Background())
	require.NoError(t, err)
	require.Len(t, out.SiteReviews, 1)
	assert.Equal(t, "Alex", out.SiteReviews[0].Name)
	assert.Equal(t, 5.0, out.GoogleRating)
}
