package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tavolo/tavolo/config"
)

// EmailStatus is the provider's answer for one address. Confirmed is only
// reported for registered addresses.
type EmailStatus struct {
	Registered bool
	Confirmed  *bool
}

// IdentityService exposes the identity provider's admin API
type IdentityService interface {
	LookupEmail(ctx context.Context, email string) (*EmailStatus, error)
}

// IdentityServiceImpl implements IdentityService
type IdentityServiceImpl struct {
	config *config.IdentityConfig
	client *http.Client
}

// identityUserResponse is the provider's user lookup payload
type identityUserResponse struct {
	Users []struct {
		ID               string `json:"id"`
		Email            string `json:"email"`
		EmailConfirmedAt string `json:"email_confirmed_at"`
	} `json:"users"`
}

// NewIdentityService creates a new identity service instance
func NewIdentityService(cfg *config.IdentityConfig) IdentityService {
	return &IdentityServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// LookupEmail asks the provider whether any user holds the given email and
// whether that user confirmed it. With the mock base URL the lookup always
// reports the email as free.
func (s *IdentityServiceImpl) LookupEmail(ctx context.Context, email string) (*EmailStatus, error) {
	if s.config.AdminBaseURL == "mock" {
		return &EmailStatus{Registered: false}, nil
	}

	lookupURL := fmt.Sprintf("%s/admin/users?email=%s",
		strings.TrimRight(s.config.AdminBaseURL, "/"), url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, "GET", lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.AdminAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send identity lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity lookup failed with status %d", resp.StatusCode)
	}

	var result identityUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode identity lookup response: %w", err)
	}

	for _, user := range result.Users {
		if strings.EqualFold(user.Email, email) {
			confirmed := user.EmailConfirmedAt != ""
			return &EmailStatus{Registered: true, Confirmed: &confirmed}, nil
		}
	}
	return &EmailStatus{Registered: false}, nil
}

// MockIdentityService implements IdentityService for testing
type MockIdentityService struct {
	ExistingEmails  map[string]bool
	ConfirmedEmails map[string]bool
	Err             error
}

// LookupEmail reports registration state from the configured maps
func (m *MockIdentityService) LookupEmail(ctx context.Context, email string) (*EmailStatus, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	normalized := strings.ToLower(email)
	if !m.ExistingEmails[normalized] {
		return &EmailStatus{Registered: false}, nil
	}
	confirmed := m.ConfirmedEmails[normalized]
	return &EmailStatus{Registered: true, Confirmed: &confirmed}, nil
}
