package domain

import "time"

// PushDevice binds a long-lived session token to the push delivery endpoint
// of a single device. At most one row exists per (user_id, token_id).
type PushDevice struct {
	UserID          string    `gorm:"type:text;primaryKey"`
	TokenID         int64     `gorm:"primaryKey;autoIncrement:false"`
	DevicePublicKey string    `gorm:"type:text;not null"`
	PushTokenHash   string    `gorm:"type:char(128);not null"`
	ProxyServer     string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime"`
}

func (PushDevice) TableName() string { return "push_devices" }

// AuthToken is the long-lived credential a device login produces. Rows are
// owned by the auth layer; this service only resolves them.
type AuthToken struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    string     `gorm:"type:text;not null;index"`
	Name      string     `gorm:"type:text"`
	ExpiresAt *time.Time
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

func (AuthToken) TableName() string { return "auth_tokens" }

// IdentityKeyPair is the per-user signing pair used to attest registration
// payloads towards the push proxy. Exactly one row per user.
type IdentityKeyPair struct {
	UserID     string    `gorm:"type:text;primaryKey"`
	PrivateKey string    `gorm:"type:text;not null"`
	PublicKey  string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}

func (IdentityKeyPair) TableName() string { return "identity_key_pairs" }
