package dto

// GenerateOfferRequest represents the request to generate marketing copy
type GenerateOfferRequest struct {
	OwnerUserID string  `json:"-"`
	Channel     string  `json:"channel" validate:"required,oneof=email sms"`
	Cuisine     *string `json:"cuisine,omitempty" validate:"omitempty,max=100"`
	Tone        *string `json:"tone,omitempty" validate:"omitempty,max=50"`
	Goal        *string `json:"goal,omitempty" validate:"omitempty,max=200"`
	Constraints *string `json:"constraints,omitempty" validate:"omitempty,max=500"`
}

// OfferContentDTO is the generated copy itself
type OfferContentDTO struct {
	Subject *string `json:"subject,omitempty"`
	Body    string  `json:"body"`
}

// OfferMetadataDTO describes how the copy was produced
type OfferMetadataDTO struct {
	AIGenerated  bool   `json:"ai_generated"`
	FallbackUsed bool   `json:"fallback_used"`
	Model        string `json:"model,omitempty"`
}

// GenerateOfferResponse represents generated marketing copy with
// provenance metadata
type GenerateOfferResponse struct {
	Channel  string           `json:"channel"`
	Content  OfferContentDTO  `json:"content"`
	Metadata OfferMetadataDTO `json:"metadata"`
}
