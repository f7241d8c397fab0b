// Package businessflow contains the core business logic and use cases for identity workflows
package businessflow

import (
	"context"
	"strings"

	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/app/services"
)

// AuthFlow handles identity provider lookups
type AuthFlow interface {
	CheckEmail(ctx context.Context, req *dto.CheckEmailRequest, metadata *ClientMetadata) (*dto.CheckEmailResponse, error)
}

// AuthFlowImpl implements the identity business flow
type AuthFlowImpl struct {
	identity services.IdentityService
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(identity services.IdentityService) AuthFlow {
	return &AuthFlowImpl{identity: identity}
}

// CheckEmail reports whether the address is already registered with the
// identity provider. Signup itself happens at the provider, not here.
// Provider failures degrade to an unregistered answer so the signup form
// never blocks on the lookup.
func (s *AuthFlowImpl) CheckEmail(ctx context.Context, req *dto.CheckEmailRequest, metadata *ClientMetadata) (*dto.CheckEmailResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	status, err := s.identity.LookupEmail(ctx, email)
	if err != nil {
		return &dto.CheckEmailResponse{Registered: false}, nil
	}

	return &dto.CheckEmailResponse{
		Registered: status.Registered,
		Confirmed:  status.Confirmed,
	}, nil
}
