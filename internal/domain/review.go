package domain

import "time"

// Review statuses
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewHidden   = "hidden"
)

var ReviewStatuses = []string{ReviewPending, ReviewApproved, ReviewHidden}

// Review is a customer review collected on the site, moderated before display
type Review struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	BookingId *int64    `gorm:"index" json:"booking_id,omitempty"`
	Name      string    `gorm:"size:200" json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Status    string    `gorm:"size:20;index;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Review) TableName() string {
	return "review"
}

// GoogleReviewCache is a single cache row per place id holding the raw
// Google Places reviews payload. Served as-is while fresh; on upstream
// failure the stale row keeps being served.
type GoogleReviewCache struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	PlaceId   string    `gorm:"size:200;uniqueIndex" json:"place_id"`
	Payload   string    `gorm:"type:text" json:"payload"`
	Rating    float64   `json:"rating"`
	Total     int       `json:"total"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TableName Specify table name
func (GoogleReviewCache) TableName() string {
	return "google_review_cache"
}
