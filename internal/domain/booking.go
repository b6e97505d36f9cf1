package domain

import "time"

// Booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// BookingStatuses lists the valid status enum values
var BookingStatuses = []string{
	BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled,
}

type Booking struct {
	ID            int64     `gorm:"primaryKey" json:"id,string"`
	Ref           string    `gorm:"size:36;uniqueIndex" json:"ref"`
	CustomerName  string    `gorm:"size:200" json:"customer_name"`
	Email         string    `gorm:"size:200;index" json:"email"`
	Phone         string    `gorm:"size:40" json:"phone"`
	Address       string    `gorm:"size:500" json:"address"`
	PackageId     int64     `gorm:"index" json:"package_id,string"`
	PackageName   string    `gorm:"size:200" json:"package_name"`
	ScheduledAt   time.Time `gorm:"index" json:"scheduled_at"`
	Notes         string    `gorm:"type:text" json:"notes"`
	Subtotal      float64   `json:"subtotal"`
	CouponCode    string    `gorm:"size:40" json:"coupon_code"`
	Discount      float64   `json:"discount"`
	Total         float64   `json:"total"`
	DepositPct    float64   `json:"deposit_pct"`
	DepositAmount float64   `json:"deposit_amount"`
	DepositPaid   bool      `json:"deposit_paid"`
	FinalPaid     bool      `json:"final_paid"`
	// PaymentToken grants access to the customer payment page without auth
	PaymentToken    string    `gorm:"size:64;uniqueIndex" json:"-"`
	SquareDepositId string    `gorm:"size:100" json:"square_deposit_id"`
	SquareFinalId   string    `gorm:"size:100" json:"square_final_id"`
	Status          string    `gorm:"size:20;index;default:'pending'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Booking) TableName() string {
	return "booking"
}

// BookingAddon joins a booking to its selected addons, with the price frozen
// at booking time.
type BookingAddon struct {
	ID        int64   `gorm:"primaryKey" json:"id,string"`
	BookingId int64   `gorm:"index" json:"booking_id,string"`
	AddonId   int64   `gorm:"index" json:"addon_id,string"`
	Name      string  `gorm:"size:200" json:"name"`
	Price     float64 `json:"price"`
}

// TableName Specify table name
func (BookingAddon) TableName() string {
	return "booking_addon"
}
