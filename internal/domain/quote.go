package domain

import "time"

// Quote statuses
const (
	QuoteNew       = "new"
	QuoteContacted = "contacted"
	QuoteClosed    = "closed"
)

var QuoteStatuses = []string{QuoteNew, QuoteContacted, QuoteClosed}

// Quote is a public quote request submitted from the marketing site
type Quote struct {
	ID          int64     `gorm:"primaryKey" json:"id,string"`
	Ref         string    `gorm:"size:36;uniqueIndex" json:"ref"`
	Name        string    `gorm:"size:200" json:"name"`
	Email       string    `gorm:"size:200;index" json:"email"`
	Phone       string    `gorm:"size:40" json:"phone"`
	ServiceName string    `gorm:"size:200" json:"service_name"`
	Message     string    `gorm:"type:text" json:"message"`
	Status      string    `gorm:"size:20;index;default:'new'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Quote) TableName() string {
	return "quote"
}
