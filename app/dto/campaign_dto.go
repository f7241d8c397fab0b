package dto

import (
	"time"
)

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	OwnerUserID string            `json:"-"`
	Name        string            `json:"name" validate:"required,min=1,max=255"`
	Channel     string            `json:"channel" validate:"required,oneof=email sms"`
	Subject     *string           `json:"subject,omitempty" validate:"omitempty,max=255"`
	Body        string            `json:"body" validate:"required,min=1"`
	Audience    AudienceFilterDTO `json:"filters"`
}

// RecipientPreviewDTO represents one rendered message in create responses
type RecipientPreviewDTO struct {
	DinerID        uint    `json:"diner_id"`
	RecipientName  string  `json:"recipient_name"`
	Channel        string  `json:"channel"`
	Subject        *string `json:"subject,omitempty"`
	Body           string  `json:"body"`
	DeliveryStatus string  `json:"delivery_status"`
	SentAt         string  `json:"sent_at"`
}

// CreateCampaignResponse represents the response to create a new campaign
type CreateCampaignResponse struct {
	Message      string                `json:"message"`
	UUID         string                `json:"uuid"`
	Status       string                `json:"status"`
	AudienceSize int                   `json:"audience_size"`
	Previews     []RecipientPreviewDTO `json:"previews"`
	CreatedAt    string                `json:"created_at"`
}

// CampaignSummaryDTO represents one campaign in list responses
type CampaignSummaryDTO struct {
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Channel      string    `json:"channel"`
	Status       string    `json:"status"`
	AudienceSize int       `json:"audience_size"`
	SentCount    int       `json:"sent_count"`
	FailedCount  int       `json:"failed_count"`
	ClickRate    float64   `json:"click_rate"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListCampaignsRequest represents the request to list campaigns
type ListCampaignsRequest struct {
	OwnerUserID string `json:"-"`
	Page        int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize    int    `json:"page_size" query:"page_size" validate:"omitempty,min=1"`
}

// ListCampaignsResponse represents the response to list campaigns
type ListCampaignsResponse struct {
	Campaigns []CampaignSummaryDTO `json:"campaigns"`
	Total     int64                `json:"total"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
}

// CampaignDetailResponse represents a single campaign with a sample of
// its recipients
type CampaignDetailResponse struct {
	UUID           string                `json:"uuid"`
	Name           string                `json:"name"`
	Channel        string                `json:"channel"`
	Status         string                `json:"status"`
	Subject        *string               `json:"subject,omitempty"`
	Body           string                `json:"body"`
	AudienceFilter AudienceFilterDTO     `json:"audience_filter"`
	AudienceSize   int                   `json:"audience_size"`
	Recipients     []RecipientPreviewDTO `json:"recipients"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// UpdateCampaignStatusRequest represents the request to change a campaign's
// display status
type UpdateCampaignStatusRequest struct {
	UUID        string `json:"-"`
	OwnerUserID string `json:"-"`
	Status      string `json:"status" validate:"required,oneof=active paused stopped"`
}

// UpdateCampaignStatusResponse represents the response to a status change
type UpdateCampaignStatusResponse struct {
	Message string `json:"message"`
	UUID    string `json:"uuid"`
	Status  string `json:"status"`
}

// DeleteCampaignResponse represents the response to a campaign deletion
type DeleteCampaignResponse struct {
	Message           string `json:"message"`
	RecipientsDeleted int64  `json:"recipients_deleted"`
}
