package dto

// AudienceFilterDTO represents targeting criteria in the request layer.
// Match selects how the interest list applies: "any" (overlap) or "all"
// (superset); it defaults to "any" when interests are present.
type AudienceFilterDTO struct {
	City      *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	State     *string  `json:"state,omitempty" validate:"omitempty,max=100"`
	Interests []string `json:"interests,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Match     string   `json:"match,omitempty" validate:"omitempty,oneof=any all"`
	Seniority []string `json:"seniority,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// SearchDinersRequest represents the request to search the diner directory.
// Channel is optional; when present the search is narrowed to diners
// eligible for that channel, exactly as audience resolution would.
type SearchDinersRequest struct {
	AudienceFilterDTO
	Channel  string `json:"channel,omitempty" query:"channel" validate:"omitempty,oneof=email sms"`
	Page     int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" query:"pageSize" validate:"omitempty,min=1"`
}

// DinerDTO represents one diner row in search responses. Contact details
// are masked; campaigns are the only way to reach a diner.
type DinerDTO struct {
	ID           uint     `json:"id"`
	FirstName    *string  `json:"first_name,omitempty"`
	LastName     *string  `json:"last_name,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
	Interests    []string `json:"interests"`
	Seniority    string   `json:"seniority"`
	ConsentEmail bool     `json:"consent_email"`
	ConsentSMS   bool     `json:"consent_sms"`
}

// SearchDinersResponse represents the response to a diner search
type SearchDinersResponse struct {
	Items    []DinerDTO `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// FilterOptionsResponse lists the distinct values available for targeting
type FilterOptionsResponse struct {
	Cities      []string `json:"cities"`
	States      []string `json:"states"`
	Interests   []string `json:"interests"`
	Seniorities []string `json:"seniorities"`
}
