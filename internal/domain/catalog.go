package domain

import "time"

// ServicePackage is a bookable service offering with a base price
type ServicePackage struct {
	ID          int64     `gorm:"primaryKey" json:"id,string"`
	Name        string    `gorm:"size:200;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `json:"price"`
	DurationMin int       `json:"duration_min"`
	Sort        int       `json:"sort"`
	Status      string    `gorm:"size:20;index;default:'enabled'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ServicePackage) TableName() string {
	return "service_package"
}

// Addon is an optional extra that can be attached to a booking
type Addon struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Name      string    `gorm:"size:200;index" json:"name"`
	Price     float64   `json:"price"`
	Sort      int       `json:"sort"`
	Status    string    `gorm:"size:20;index;default:'enabled'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Addon) TableName() string {
	return "addon"
}

// GalleryPhoto is a portfolio image shown on the public site
type GalleryPhoto struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Title     string    `gorm:"size:200" json:"title"`
	Url       string    `gorm:"size:1024" json:"url"`
	Sort      int       `json:"sort"`
	Status    string    `gorm:"size:20;index;default:'enabled'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (GalleryPhoto) TableName() string {
	return "gallery_photo"
}
