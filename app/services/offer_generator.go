package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tavolo/tavolo/config"
)

// OfferPrompt describes the copy to generate
type OfferPrompt struct {
	Channel        string
	RestaurantName string
	Cuisine        string
	Tone           string
	Goal           string
	Constraints    string
}

// GeneratedOffer is raw provider output before business rules are applied
type GeneratedOffer struct {
	Subject string
	Body    string
}

// OfferGenerator produces marketing copy for a campaign channel
type OfferGenerator interface {
	GenerateOffer(ctx context.Context, prompt OfferPrompt) (*GeneratedOffer, error)
	Model() string
}

// OfferGeneratorImpl implements OfferGenerator against an OpenAI-compatible
// chat completions endpoint
type OfferGeneratorImpl struct {
	config *config.AIConfig
	client *http.Client
}

// chatCompletionRequest is the provider request payload
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the provider response payload
type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOfferGenerator creates a new offer generator instance
func NewOfferGenerator(cfg *config.AIConfig) OfferGenerator {
	return &OfferGeneratorImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Model reports the configured completion model
func (s *OfferGeneratorImpl) Model() string {
	return s.config.Model
}

// GenerateOffer asks the provider for copy. The prompt pins the output
// format to SUBJECT/BODY lines so both channels parse the same way.
func (s *OfferGeneratorImpl) GenerateOffer(ctx context.Context, prompt OfferPrompt) (*GeneratedOffer, error) {
	if !s.config.Enabled {
		return nil, fmt.Errorf("offer generation is disabled")
	}

	payload := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(prompt.Channel)},
			{Role: "user", Content: userPrompt(prompt)},
		},
		Temperature: s.config.Temperature,
		MaxTokens:   300,
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(s.config.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send completion request: %w", err)
	}
	defer resp.Body.Close()

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("completion request rejected: %s (%s)", result.Error.Message, result.Error.Type)
	}
	if resp.StatusCode != http.StatusOK || len(result.Choices) == 0 {
		return nil, fmt.Errorf("completion request failed with status %d", resp.StatusCode)
	}

	return parseOfferContent(result.Choices[0].Message.Content), nil
}

func systemPrompt(channel string) string {
	if channel == "sms" {
		return "You write short promotional SMS copy for restaurants. " +
			"Reply with a single line starting with BODY: and keep it under 160 characters. " +
			"Address the reader as {FirstName}."
	}
	return "You write promotional email copy for restaurants. " +
		"Reply with exactly two lines: SUBJECT: followed by the subject, then BODY: followed by the body. " +
		"Keep the body under 500 characters and address the reader as {FirstName}."
}

func userPrompt(p OfferPrompt) string {
	var parts []string
	if p.RestaurantName != "" {
		parts = append(parts, fmt.Sprintf("Restaurant: %s.", p.RestaurantName))
	}
	if p.Cuisine != "" {
		parts = append(parts, fmt.Sprintf("Cuisine: %s.", p.Cuisine))
	}
	if p.Tone != "" {
		parts = append(parts, fmt.Sprintf("Tone: %s.", p.Tone))
	}
	if p.Goal != "" {
		parts = append(parts, fmt.Sprintf("Goal: %s.", p.Goal))
	}
	if p.Constraints != "" {
		parts = append(parts, fmt.Sprintf("Constraints: %s.", p.Constraints))
	}
	if len(parts) == 0 {
		parts = append(parts, "Write a general promotional offer.")
	}
	return strings.Join(parts, " ")
}

// parseOfferContent splits SUBJECT:/BODY: lines out of the raw completion.
// Unlabeled output becomes the body as-is.
func parseOfferContent(content string) *GeneratedOffer {
	offer := &GeneratedOffer{}

	var bodyLines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "SUBJECT:"):
			offer.Subject = strings.TrimSpace(line[len("SUBJECT:"):])
		case strings.HasPrefix(upper, "BODY:"):
			bodyLines = append(bodyLines, strings.TrimSpace(line[len("BODY:"):]))
		default:
			bodyLines = append(bodyLines, line)
		}
	}
	offer.Body = strings.Join(bodyLines, " ")

	return offer
}

// MockOfferGenerator implements OfferGenerator for testing
type MockOfferGenerator struct {
	Offer     *GeneratedOffer
	Err       error
	Calls     []OfferPrompt
	ModelName string
}

// Model reports the configured mock model name
func (m *MockOfferGenerator) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// GenerateOffer records the prompt and returns the configured result
func (m *MockOfferGenerator) GenerateOffer(ctx context.Context, prompt OfferPrompt) (*GeneratedOffer, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Offer != nil {
		return m.Offer, nil
	}
	return &GeneratedOffer{Body: "Hi {FirstName}! Mock offer just for you."}, nil
}
