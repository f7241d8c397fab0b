package dto

// CheckEmailRequest represents the request to check whether an email is
// already registered with the identity provider
type CheckEmailRequest struct {
	Email string `json:"email" query:"email" validate:"required,email,max=255"`
}

// CheckEmailResponse represents the response to an email lookup. Confirmed
// is only present when the provider reports a confirmation state for a
// registered address.
type CheckEmailResponse struct {
	Registered bool  `json:"registered"`
	Confirmed  *bool `json:"confirmed,omitempty"`
}
