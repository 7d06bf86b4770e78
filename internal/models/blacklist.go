package models

import "time"

// BlacklistedToken records a revoked refresh token by its SHA-256
// fingerprint. Entries become dead weight once ExpiresAt passes (the token
// itself no longer verifies) and are removed by the periodic sweep.
type BlacklistedToken struct {
	TokenHash string    `json:"tokenHash" gorm:"primaryKey;type:varchar(64)"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;not null"`
}

// TableName specifies the table name for GORM
func (BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
