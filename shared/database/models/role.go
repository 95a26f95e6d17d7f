package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names. These are fixed system roles, seeded at startup.
const (
	RoleSuperAdmin        = "SuperAdmin"
	RoleOrganizationAdmin = "OrganizationAdmin"
	RoleOrganizationUser  = "OrganizationUser"
	RoleDefaultUser       = "DefaultUser"
)

type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
