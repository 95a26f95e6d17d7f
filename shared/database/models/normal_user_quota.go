package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCVUploadLimit is the lifetime upload cap for users outside an
// organization.
const DefaultCVUploadLimit = 2

// NormalUserQuota tracks CV uploads for DefaultUser accounts. One row per
// user, created lazily on first quota check. There is no periodic reset.
type NormalUserQuota struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	CvUploadsUsed  int       `json:"cvUploadsUsed" gorm:"default:0"`
	CvUploadsLimit int       `json:"cvUploadsLimit" gorm:"default:2"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (q *NormalUserQuota) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
