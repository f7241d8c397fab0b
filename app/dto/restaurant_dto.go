package dto

import (
	"time"
)

// UpsertRestaurantRequest represents the request to create or update the
// caller's restaurant profile
type UpsertRestaurantRequest struct {
	OwnerUserID  string  `json:"-"`
	Name         string  `json:"name" validate:"required,min=1,max=255"`
	Cuisine      *string `json:"cuisine,omitempty" validate:"omitempty,max=100"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,len=2"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email,max=255"`
	ContactPhone *string `json:"contact_phone,omitempty" validate:"omitempty,max=20"`
	WebsiteURL   *string `json:"website_url,omitempty" validate:"omitempty,url,max=255"`
	LogoURL      *string `json:"logo_url,omitempty" validate:"omitempty,url,max=255"`
	Caption      *string `json:"caption,omitempty" validate:"omitempty,max=500"`
}

// RestaurantResponse represents a restaurant profile in responses
type RestaurantResponse struct {
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Cuisine      *string   `json:"cuisine,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	WebsiteURL   *string   `json:"website_url,omitempty"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	Caption      *string   `json:"caption,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeleteAccountResponse represents the response to an account deletion
type DeleteAccountResponse struct {
	Message          string `json:"message"`
	CampaignsDeleted int    `json:"campaigns_deleted"`
}
