package models

import (
	"time"

	"github.com/lib/pq"
)

// Diner seniority buckets derived from signup age
const (
	SeniorityNew         = "new"
	SeniorityEstablished = "established"
	SeniorityLoyal       = "loyal"
)

// ValidSeniorities lists the accepted seniority bucket values
var ValidSeniorities = []string{SeniorityNew, SeniorityEstablished, SeniorityLoyal}

// IsValidSeniority reports whether s is a known seniority bucket
func IsValidSeniority(s string) bool {
	for _, v := range ValidSeniorities {
		if v == s {
			return true
		}
	}
	return false
}

// Diner represents a consumer profile in the shared diner directory.
// Rows are read-only from the platform's point of view; they are seeded
// and maintained by the ingestion pipeline.
type Diner struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName *string `gorm:"size:100;index:idx_diners_first_name" json:"first_name,omitempty"`
	LastName  *string `gorm:"size:100;index:idx_diners_last_name" json:"last_name,omitempty"`
	Email     *string `gorm:"size:255;uniqueIndex:uk_diners_email" json:"email,omitempty"`
	Phone     *string `gorm:"size:20;uniqueIndex:uk_diners_phone" json:"phone,omitempty"`

	City      *string        `gorm:"size:100;index:idx_diners_city" json:"city,omitempty"`
	State     *string        `gorm:"size:2;index:idx_diners_state" json:"state,omitempty"`
	Interests pq.StringArray `gorm:"type:text[];index:idx_diners_interests,type:gin" json:"interests"`
	Seniority string         `gorm:"size:20;not null;index:idx_diners_seniority" json:"seniority"`

	ConsentEmail bool `gorm:"not null;default:false" json:"consent_email"`
	ConsentSMS   bool `gorm:"column:consent_sms;not null;default:false" json:"consent_sms"`

	SignupDate *time.Time `gorm:"type:date" json:"signup_date,omitempty"`
	CreatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (Diner) TableName() string {
	return "diners"
}

// DinerFilter represents filter criteria for diner queries.
// City matches as a case-insensitive substring, State as an exact
// two-letter code, Interests by array overlap (any) or containment (all).
type DinerFilter struct {
	City          *string
	State         *string
	InterestsAny  []string
	InterestsAll  []string
	Seniority     []string
	ConsentEmail  *bool
	ConsentSMS    *bool
	RequiredEmail bool
	RequiredPhone bool
}
