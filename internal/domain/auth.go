package domain

import "time"

// AuthRefreshToken stores the salted SHA-256 hash of an issued refresh token.
// The raw token never touches the database, so a leaked dump cannot be
// replayed; revocation deletes or stamps the row.
type AuthRefreshToken struct {
	ID        int64      `gorm:"primaryKey" json:"id,string"`
	OprId     int64      `gorm:"index" json:"opr_id"`
	TokenHash string     `gorm:"size:64;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName Specify table name
func (AuthRefreshToken) TableName() string {
	return "auth_refresh_token"
}
