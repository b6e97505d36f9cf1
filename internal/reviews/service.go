package reviews

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/integrations/places"
	"github.com/glowbooking/glowbook/pkg/common"
)

// Service maintains the Google reviews cache row and merges it with approved
// site reviews for the public endpoint.
type Service struct {
	app     app.AppContext
	fetcher places.Fetcher
}

func New(appCtx app.AppContext, fetcher places.Fetcher) *Service {
	return &Service{app: appCtx, fetcher: fetcher}
}

// Refresh fetches place details and upserts the cache row
func (s *Service) Refresh(ctx context.Context) error {
	placeId := s.app.Config().Google.PlaceId
	if placeId == "" {
		return nil
	}

	details, err := s.fetcher.FetchDetails(ctx)
	if err != nil {
		return errors.Wrap(err, "refresh google reviews")
	}

	payload, err := jsoniter.MarshalToString(details.Reviews)
	if err != nil {
		return errors.Wrap(err, "marshal reviews payload")
	}

	db := s.app.DB().WithContext(ctx)
	var row domain.GoogleReviewCache
	err = db.Where("place_id = ?", placeId).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&domain.GoogleReviewCache{
			ID:        common.UUIDint64(),
			PlaceId:   placeId,
			Payload:   payload,
			Rating:    details.Rating,
			Total:     details.Total,
			FetchedAt: time.Now(),
		}).Error
	case err != nil:
		return errors.Wrap(err, "query reviews cache")
	}

	return db.Model(&domain.GoogleReviewCache{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"payload":    payload,
			"rating":     details.Rating,
			"total":      details.Total,
			"fetched_at": time.Now(),
		}).Error
}

func (s *Service) cacheTTL() time.Duration {
	ttl := s.app.GetSettingsInt64Value("reviews", "cache_ttl")
	if ttl <= 0 {
		ttl = s.app.Config().Google.CacheTTL
	}
	if ttl <= 0 {
		ttl = 21600
	}
	return time.Duration(ttl) * time.Second
}

// CachedGoogleReviews returns the cache row, refreshing it when stale. An
// upstream failure falls back to the stale row; with no row at all the
// result is simply empty.
func (s *Service) CachedGoogleReviews(ctx context.Context) (*domain.GoogleReviewCache, []places.Review, error) {
	placeId := s.app.Config().Google.PlaceId
	if placeId == "" {
		return nil, nil, nil
	}

	db := s.app.DB().WithContext(ctx)
	var row domain.GoogleReviewCache
	err := db.Where("place_id = ?", placeId).First(&row).Error
	missing := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !missing {
		return nil, nil, errors.Wrap(err, "query reviews cache")
	}

	if missing || time.Since(row.FetchedAt) > s.cacheTTL() {
		if rerr := s.Refresh(ctx); rerr != nil {
			if missing {
				zap.L().Warn("google reviews unavailable and no cache", zap.Error(rerr))
				return nil, nil, nil
			}
			zap.L().Warn("google reviews refresh failed, serving stale cache",
				zap.Error(rerr),
				zap.Time("fetched_at", row.FetchedAt))
		} else {
			if err := db.Where("place_id = ?", placeId).First(&row).Error; err != nil {
				return nil, nil, errors.Wrap(err, "reload reviews cache")
			}
		}
	}

	var parsed []places.Review
	if row.Payload != "" {
		if err := jsoniter.UnmarshalFromString(row.Payload, &parsed); err != nil {
			zap.L().Error("corrupt reviews cache payload", zap.Error(err))
		}
	}
	return &row, parsed, nil
}

// PublicReviews is the payload served by the public reviews endpoint
type PublicReviews struct {
	SiteReviews  []domain.Review `json:"site_reviews"`
	Google       []places.Review `json:"google_reviews"`
	GoogleRating float64         `json:"google_rating"`
	GoogleTotal  int             `json:"google_total"`
}

// Merged returns approved site reviews together with the cached Google data
func (s *Service) Merged(ctx context.Context) (*PublicReviews, error) {
	var site []domain.Review
	err := s.app.DB().WithContext(ctx).
		Where("status = ?", domain.ReviewApproved).
		Order("created_at DESC").
		Limit(100).
		Find(&site).Error
	if err != nil {
		return nil, errors.Wrap(err, "query site reviews")
	}

	out := &PublicReviews{SiteReviews: site}
	row, google, err := s.CachedGoogleReviews(ctx)
	if err != nil {
		return nil, err
	}
	if row != nil {
		out.Google = google
		out.GoogleRating = row.Rating
		out.GoogleTotal = row.Total
	}
	return out, nil
}
