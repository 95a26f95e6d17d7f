package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upgrade request status values. Approved, Rejected and Cancelled are
// terminal.
const (
	UpgradeRequestPending   = "PENDING"
	UpgradeRequestApproved  = "APPROVED"
	UpgradeRequestRejected  = "REJECTED"
	UpgradeRequestCancelled = "CANCELLED"
)

// UpgradeRequest is an organization's ask to move to a different
// subscription plan. At most one pending request per organization.
type UpgradeRequest struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `json:"organizationId" gorm:"type:uuid;not null"`

	// Plan snapshot at request time
	CurrentPlanID   uuid.UUID `json:"currentPlanId" gorm:"type:uuid;not null"`
	RequestedPlanID uuid.UUID `json:"requestedPlanId" gorm:"type:uuid;not null"`

	RequestedByID uuid.UUID `json:"requestedById" gorm:"type:uuid;not null"`
	Reason        string    `json:"reason" gorm:"type:text"`
	Status        string    `json:"status" gorm:"size:20;default:'PENDING'"`

	// Resolution details, set exactly once when the request leaves PENDING
	ProcessedByID   *uuid.UUID `json:"processedById" gorm:"type:uuid"`
	ProcessedAt     *time.Time `json:"processedAt"`
	RejectionReason *string    `json:"rejectionReason" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Organization  Organization     `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	CurrentPlan   SubscriptionPlan `json:"currentPlan,omitempty" gorm:"foreignKey:CurrentPlanID"`
	RequestedPlan SubscriptionPlan `json:"requestedPlan,omitempty" gorm:"foreignKey:RequestedPlanID"`
	RequestedBy   User             `json:"requestedBy,omitempty" gorm:"foreignKey:RequestedByID"`
	ProcessedBy   *User            `json:"processedBy,omitempty" gorm:"foreignKey:ProcessedByID"`
}

func (ur *UpgradeRequest) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == uuid.Nil {
		ur.ID = uuid.New()
	}
	return nil
}
