package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tavolo/tavolo/utils"
	"gorm.io/gorm"
)

// DeliveryStatus represents the simulated delivery outcome of a recipient row
type DeliveryStatus string

const (
	DeliveryStatusSimulatedSent   DeliveryStatus = "simulated_sent"
	DeliveryStatusSimulatedFailed DeliveryStatus = "simulated_failed"
)

// String returns the string representation of the status
func (s DeliveryStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusSimulatedSent, DeliveryStatusSimulatedFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for DeliveryStatus
func (s *DeliveryStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = DeliveryStatus(v)
	case []byte:
		*s = DeliveryStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DeliveryStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for DeliveryStatus
func (s DeliveryStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid DeliveryStatus: %s", s)
	}
	return string(s), nil
}

// PreviewPayload is the JSON snapshot of the message exactly as it
// would have been delivered to one recipient
type PreviewPayload struct {
	Channel       string  `json:"channel"`
	Subject       *string `json:"subject,omitempty"`
	Body          string  `json:"body"`
	RecipientName string  `json:"recipient_name"`
	SentAt        string  `json:"sent_at"`
}

// Value implements the driver.Valuer interface for PreviewPayload
func (p PreviewPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for PreviewPayload
func (p *PreviewPayload) Scan(value any) error {
	if value == nil {
		*p = PreviewPayload{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PreviewPayload", value)
	}

	return json.Unmarshal(bytes, p)
}

// CampaignRecipient represents one diner a campaign was materialized for
type CampaignRecipient struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CampaignID uint `gorm:"not null;index:idx_campaign_recipients_campaign_id" json:"campaign_id"`
	DinerID    uint `gorm:"not null;index:idx_campaign_recipients_diner_id" json:"diner_id"`

	DeliveryStatus DeliveryStatus `gorm:"size:20;not null;default:'simulated_sent'" json:"delivery_status"`
	PreviewPayload PreviewPayload `gorm:"type:jsonb;not null;default:'{}'" json:"preview_payload"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	Diner    *Diner    `gorm:"foreignKey:DinerID" json:"diner,omitempty"`
}

// TableName returns the table name for the model
func (CampaignRecipient) TableName() string {
	return "campaign_recipients"
}

// BeforeCreate is called before creating a new record
func (r *CampaignRecipient) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	if r.DeliveryStatus == "" {
		r.DeliveryStatus = DeliveryStatusSimulatedSent
	}
	return nil
}

// CampaignRecipientFilter represents filter criteria for recipient queries
type CampaignRecipientFilter struct {
	ID             *uint
	CampaignID     *uint
	DinerID        *uint
	DeliveryStatus *DeliveryStatus
	Limit          *int
	Offset         *int
}
