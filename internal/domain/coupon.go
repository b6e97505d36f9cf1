package domain

import "time"

// Coupon discount types
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

type Coupon struct {
	ID           int64      `gorm:"primaryKey" json:"id,string" csv:"-"`
	Code         string     `gorm:"size:40;uniqueIndex" json:"code" csv:"code"`
	DiscountType string     `gorm:"size:20" json:"discount_type" csv:"discount_type"`
	Value        float64    `json:"value" csv:"value"`
	ValidFrom    *time.Time `json:"valid_from,omitempty" csv:"valid_from"`
	ValidTo      *time.Time `json:"valid_to,omitempty" csv:"valid_to"`
	MaxUses      int        `json:"max_uses" csv:"max_uses"`
	UsedCount    int        `json:"used_count" csv:"used_count"`
	Status       string     `gorm:"size:20;index;default:'enabled'" json:"status" csv:"status"`
	Remark       string     `gorm:"size:500" json:"remark" csv:"remark"`
	CreatedAt    time.Time  `json:"created_at" csv:"-"`
	UpdatedAt    time.Time  `json:"updated_at" csv:"-"`
}

// TableName Specify table name
func (Coupon) TableName() string {
	return "coupon"
}
