package auth

import (
	"time"

	"talenthub-backend/shared/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is a long-lived opaque credential exchanged for a new access
// token. Rotation revokes the old row and records the forward chain in
// ReplacedByToken.
type RefreshToken struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Token           string     `json:"-" gorm:"size:500;uniqueIndex;not null"`
	ExpiresAt       time.Time  `json:"expiresAt" gorm:"not null"`
	CreatedAt       time.Time  `json:"createdAt"`
	RevokedAt       *time.Time `json:"revokedAt"`
	ReplacedByToken *string    `json:"-" gorm:"size:500"`

	// Relations
	User models.User `json:"-" gorm:"foreignKey:UserID"`
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}

func (rt *RefreshToken) IsExpired() bool {
	return !time.Now().UTC().Before(rt.ExpiresAt)
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsActive() bool {
	return !rt.IsRevoked() && !rt.IsExpired()
}
