package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name               string     `json:"name" gorm:"size:200;not null"`
	Slug               string     `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	OwnerID            uuid.UUID  `json:"ownerId" gorm:"type:uuid;not null"`
	SubscriptionPlanID uuid.UUID  `json:"subscriptionPlanId" gorm:"type:uuid;not null"`
	IsActive           bool       `json:"isActive" gorm:"default:true"`
	CvUploadsThisMonth int        `json:"cvUploadsThisMonth" gorm:"default:0"`
	CvUploadsResetAt   time.Time  `json:"cvUploadsResetAt"`
	DeactivatedAt      *time.Time `json:"deactivatedAt"`
	DeactivationReason *string    `json:"deactivationReason" gorm:"type:text"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	// Relations
	Owner            *User             `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
	SubscriptionPlan *SubscriptionPlan `json:"subscriptionPlan,omitempty" gorm:"foreignKey:SubscriptionPlanID"`
	Members          []User            `json:"members,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:SET NULL"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
