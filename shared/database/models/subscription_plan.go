package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionPlan struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"size:100;uniqueIndex;not null"` // slug: starter, professional, enterprise
	DisplayName  string    `json:"displayName" gorm:"size:200;not null"`
	MaxUsers     int       `json:"maxUsers" gorm:"not null"`
	MaxCVUploads int       `json:"maxCVUploads" gorm:"not null"`
	FeaturesJSON string    `json:"-" gorm:"type:text;default:'[]'"`
	MonthlyPrice *float64  `json:"monthlyPrice"`
	DisplayOrder int       `json:"displayOrder" gorm:"default:0"`
	IsPopular    bool      `json:"isPopular" gorm:"default:false"`
	IsActive     bool      `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *SubscriptionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Features deserializes the stored feature list. Malformed data yields an
// empty list rather than an error.
func (p *SubscriptionPlan) Features() []string {
	var features []string
	if err := json.Unmarshal([]byte(p.FeaturesJSON), &features); err != nil {
		return []string{}
	}
	if features == nil {
		return []string{}
	}
	return features
}

func (p *SubscriptionPlan) SetFeatures(features []string) {
	if features == nil {
		features = []string{}
	}
	data, err := json.Marshal(features)
	if err != nil {
		p.FeaturesJSON = "[]"
		return
	}
	p.FeaturesJSON = string(data)
}
