package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User status values. INACTIVE is terminal for admin-driven status changes;
// the dedicated reactivate endpoint is the only path back to ACTIVE.
const (
	UserStatusPending  = "PENDING"
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

type User struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	Password           string     `json:"-" gorm:"not null"`
	FirstName          string     `json:"firstName" gorm:"size:100"`
	LastName           string     `json:"lastName" gorm:"size:100"`
	Status             string     `json:"status" gorm:"size:20;default:'ACTIVE'"`
	OrganizationID     *uuid.UUID `json:"organizationId" gorm:"type:uuid"`
	MustChangePassword bool       `json:"mustChangePassword" gorm:"default:false"`
	RequestedOrgName   *string    `json:"requestedOrgName" gorm:"size:200"`
	DeactivatedAt      *time.Time `json:"deactivatedAt"`
	DeactivationReason *string    `json:"deactivationReason" gorm:"type:text"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Roles        []Role        `json:"roles,omitempty" gorm:"many2many:user_roles;"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// RoleNames returns the names of all assigned roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first assigned role. Users carry effectively one
// role; DefaultUser is assumed when none is assigned.
func (u *User) PrimaryRole() string {
	if len(u.Roles) > 0 {
		return u.Roles[0].Name
	}
	return RoleDefaultUser
}
