// Package models contains domain entities and business models for the marketing platform
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/utils"
	"gorm.io/gorm"
)

// Restaurant represents the single restaurant profile owned by an authenticated user
type Restaurant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_restaurants_uuid" json:"uuid"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_restaurants_owner_user_id;index:idx_restaurants_owner_user_id" json:"owner_user_id"`

	Name    string  `gorm:"size:255;not null" json:"name"`
	Cuisine *string `gorm:"size:100" json:"cuisine,omitempty"`
	City    *string `gorm:"size:100" json:"city,omitempty"`
	State   *string `gorm:"size:50" json:"state,omitempty"`

	ContactEmail *string `gorm:"size:255" json:"contact_email,omitempty"`
	ContactPhone *string `gorm:"size:20" json:"contact_phone,omitempty"`
	WebsiteURL   *string `gorm:"size:255" json:"website_url,omitempty"`
	LogoURL      *string `gorm:"size:255" json:"logo_url,omitempty"`
	Caption      *string `gorm:"size:500" json:"caption,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_restaurants_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Campaigns []Campaign `gorm:"foreignKey:RestaurantID" json:"campaigns,omitempty"`
}

// TableName returns the table name for the model
func (Restaurant) TableName() string {
	return "restaurants"
}

// BeforeCreate is called before creating a new record
func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (r *Restaurant) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = utils.UTCNow()
	return nil
}

// RestaurantFilter represents filter criteria for restaurant queries
type RestaurantFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	OwnerUserID   *uuid.UUID
	Name          *string
	Cuisine       *string
	City          *string
	State         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
