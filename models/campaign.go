package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/utils"
	"gorm.io/gorm"
)

// CampaignChannel represents the delivery channel of a campaign
type CampaignChannel string

const (
	CampaignChannelEmail CampaignChannel = "email"
	CampaignChannelSMS   CampaignChannel = "sms"
)

// String returns the string representation of the channel
func (c CampaignChannel) String() string {
	return string(c)
}

// Valid checks if the channel is valid
func (c CampaignChannel) Valid() bool {
	switch c {
	case CampaignChannelEmail, CampaignChannelSMS:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignChannel
func (c *CampaignChannel) Scan(value any) error {
	if value == nil {
		*c = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*c = CampaignChannel(v)
	case []byte:
		*c = CampaignChannel(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignChannel", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignChannel
func (c CampaignChannel) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid CampaignChannel: %s", c)
	}
	return string(c), nil
}

// CampaignStatus represents the lifecycle status of a campaign.
// Delivery is simulated at creation time, so the status only affects
// how the campaign is displayed and never triggers or cancels sends.
type CampaignStatus string

const (
	CampaignStatusActive  CampaignStatus = "active"
	CampaignStatusPaused  CampaignStatus = "paused"
	CampaignStatusStopped CampaignStatus = "stopped"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusPaused, CampaignStatusStopped:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Interest match modes accepted by audience filters
const (
	MatchAny = "any"
	MatchAll = "all"
)

// AudienceFilter is the JSON snapshot of the targeting criteria a
// campaign was materialized with
type AudienceFilter struct {
	City      *string  `json:"city,omitempty"`
	State     *string  `json:"state,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Match     string   `json:"match,omitempty"`
	Seniority []string `json:"seniority,omitempty"`
}

// Value implements the driver.Valuer interface for AudienceFilter
func (f AudienceFilter) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements the sql.Scanner interface for AudienceFilter
func (f *AudienceFilter) Scan(value any) error {
	if value == nil {
		*f = AudienceFilter{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AudienceFilter", value)
	}

	return json.Unmarshal(bytes, f)
}

// Campaign represents a materialized marketing campaign in the database
type Campaign struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid;index:idx_campaigns_uuid" json:"uuid"`
	RestaurantID uint      `gorm:"not null;index:idx_campaigns_restaurant_id" json:"restaurant_id"`

	Name    string          `gorm:"size:255;not null" json:"name"`
	Channel CampaignChannel `gorm:"size:10;not null;index:idx_campaigns_channel" json:"channel"`
	Status  CampaignStatus  `gorm:"size:20;not null;default:'active';index:idx_campaigns_status" json:"status"`

	Subject        *string        `gorm:"size:255" json:"subject,omitempty"`
	Body           string         `gorm:"type:text;not null" json:"body"`
	AudienceFilter AudienceFilter `gorm:"type:jsonb;not null;default:'{}'" json:"audience_filter"`
	AudienceSize   int            `gorm:"not null;default:0" json:"audience_size"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Restaurant *Restaurant         `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	Recipients []CampaignRecipient `gorm:"foreignKey:CampaignID" json:"recipients,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.Status == "" {
		c.Status = CampaignStatusActive
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = utils.UTCNow()
	return nil
}

// CampaignFilter represents filter criteria for campaign queries
type CampaignFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	RestaurantID  *uint
	Channel       *CampaignChannel
	Status        *CampaignStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	OrderBy       *string
	Limit         *int
	Offset        *int
}

// CampaignWithStats pairs a campaign with delivery aggregates computed
// from its recipient rows
type CampaignWithStats struct {
	Campaign
	SentCount   int `json:"sent_count"`
	FailedCount int `json:"failed_count"`
}
