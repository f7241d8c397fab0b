// Package businessflow contains the core business logic and use cases for offer generation workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/app/services"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/repository"
	"github.com/tavolo/tavolo/utils"
)

// OfferFlow handles marketing copy generation
type OfferFlow interface {
	GenerateOffer(ctx context.Context, req *dto.GenerateOfferRequest, metadata *ClientMetadata) (*dto.GenerateOfferResponse, error)
}

// OfferFlowImpl implements the offer generation business flow
type OfferFlowImpl struct {
	generator      services.OfferGenerator
	restaurantRepo repository.RestaurantRepository
}

// NewOfferFlow creates a new offer flow instance
func NewOfferFlow(generator services.OfferGenerator, restaurantRepo repository.RestaurantRepository) OfferFlow {
	return &OfferFlowImpl{
		generator:      generator,
		restaurantRepo: restaurantRepo,
	}
}

// GenerateOffer produces campaign copy for the caller's restaurant. Provider
// failures never surface; a template fills in so the endpoint always returns
// usable copy. Output is normalized either way: a first-name placeholder is
// guaranteed and channel length caps are enforced on word boundaries.
func (s *OfferFlowImpl) GenerateOffer(ctx context.Context, req *dto.GenerateOfferRequest, metadata *ClientMetadata) (*dto.GenerateOfferResponse, error) {
	channel := models.CampaignChannel(req.Channel)
	if !channel.Valid() {
		return nil, NewBusinessError("OFFER_VALIDATION_FAILED", "Offer validation failed", ErrInvalidCampaignChannel)
	}

	restaurantName, cuisine := s.resolveRestaurantContext(ctx, req)

	prompt := services.OfferPrompt{
		Channel:        channel.String(),
		RestaurantName: restaurantName,
		Cuisine:        cuisine,
	}
	if req.Tone != nil {
		prompt.Tone = *req.Tone
	}
	if req.Goal != nil {
		prompt.Goal = *req.Goal
	}
	if req.Constraints != nil {
		prompt.Constraints = *req.Constraints
	}

	fallbackUsed := false
	offer, err := s.generator.GenerateOffer(ctx, prompt)
	if err != nil || offer == nil || strings.TrimSpace(offer.Body) == "" {
		offer = fallbackOffer(channel, cuisine)
		fallbackUsed = true
	}

	resp := &dto.GenerateOfferResponse{
		Channel: channel.String(),
		Metadata: dto.OfferMetadataDTO{
			AIGenerated:  !fallbackUsed,
			FallbackUsed: fallbackUsed,
		},
	}
	if !fallbackUsed {
		resp.Metadata.Model = s.generator.Model()
	}

	body := EnsureFirstNamePlaceholder(strings.TrimSpace(offer.Body))
	switch channel {
	case models.CampaignChannelSMS:
		resp.Content.Body = TruncateAtWordBoundary(body, utils.MaxSMSBodyLength)
	case models.CampaignChannelEmail:
		resp.Content.Body = TruncateAtWordBoundary(body, utils.MaxEmailBodyLength)
		subject := offer.Subject
		if strings.TrimSpace(subject) == "" {
			subject = fallbackSubject(cuisine)
		}
		tidied := TidySubject(subject)
		resp.Content.Subject = &tidied
	}

	return resp, nil
}

// resolveRestaurantContext fills missing prompt fields from the caller's
// profile. The lookup is best effort; generation works without a profile.
func (s *OfferFlowImpl) resolveRestaurantContext(ctx context.Context, req *dto.GenerateOfferRequest) (string, string) {
	var restaurantName, cuisine string
	if req.Cuisine != nil {
		cuisine = strings.TrimSpace(*req.Cuisine)
	}

	if restaurant, err := s.lookupRestaurant(ctx, req.OwnerUserID); err == nil && restaurant != nil {
		restaurantName = restaurant.Name
		if cuisine == "" && restaurant.Cuisine != nil {
			cuisine = *restaurant.Cuisine
		}
	}

	return restaurantName, cuisine
}

func (s *OfferFlowImpl) lookupRestaurant(ctx context.Context, ownerUserID string) (*models.Restaurant, error) {
	ownerUUID, err := uuid.Parse(ownerUserID)
	if err != nil {
		return nil, err
	}
	return s.restaurantRepo.ByOwnerUserID(ctx, ownerUUID)
}

// fallbackOffer is the template copy used when the provider is disabled or
// failing
func fallbackOffer(channel models.CampaignChannel, cuisine string) *services.GeneratedOffer {
	if cuisine == "" {
		cuisine = "chef's favorites"
	}

	if channel == models.CampaignChannelSMS {
		return &services.GeneratedOffer{
			Body: fmt.Sprintf("Hi {FirstName}! Try our %s today!", cuisine),
		}
	}

	return &services.GeneratedOffer{
		Subject: fallbackSubject(cuisine),
		Body: fmt.Sprintf("Hi {FirstName}! We would love to see you again. "+
			"Come in and enjoy our %s, made fresh every day. Reserve your table today!", cuisine),
	}
}

func fallbackSubject(cuisine string) string {
	if cuisine == "" {
		cuisine = "Chef's"
	}
	return fmt.Sprintf("Special %s Offer", cuisine)
}
