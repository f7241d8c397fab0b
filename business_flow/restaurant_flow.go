// Package businessflow contains the core business logic and use cases for restaurant profile workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/repository"
	"gorm.io/gorm"
)

// RestaurantFlow handles the restaurant profile business logic
type RestaurantFlow interface {
	GetRestaurant(ctx context.Context, ownerUserID string, metadata *ClientMetadata) (*dto.RestaurantResponse, error)
	UpsertRestaurant(ctx context.Context, req *dto.UpsertRestaurantRequest, metadata *ClientMetadata) (*dto.RestaurantResponse, error)
	DeleteAccount(ctx context.Context, ownerUserID string, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error)
}

// RestaurantFlowImpl implements the restaurant business flow
type RestaurantFlowImpl struct {
	restaurantRepo repository.RestaurantRepository
	campaignRepo   repository.CampaignRepository
	recipientRepo  repository.CampaignRecipientRepository
	db             *gorm.DB
}

// NewRestaurantFlow creates a new restaurant flow instance
func NewRestaurantFlow(
	restaurantRepo repository.RestaurantRepository,
	campaignRepo repository.CampaignRepository,
	recipientRepo repository.CampaignRecipientRepository,
	db *gorm.DB,
) RestaurantFlow {
	return &RestaurantFlowImpl{
		restaurantRepo: restaurantRepo,
		campaignRepo:   campaignRepo,
		recipientRepo:  recipientRepo,
		db:             db,
	}
}

// GetRestaurant returns the caller's restaurant profile
func (s *RestaurantFlowImpl) GetRestaurant(ctx context.Context, ownerUserID string, metadata *ClientMetadata) (*dto.RestaurantResponse, error) {
	ownerUUID, err := uuid.Parse(ownerUserID)
	if err != nil {
		return nil, NewBusinessError("INVALID_OWNER_ID", "Invalid owner user ID", err)
	}

	restaurant, err := s.restaurantRepo.ByOwnerUserID(ctx, ownerUUID)
	if err != nil {
		return nil, NewBusinessError("RESTAURANT_LOOKUP_FAILED", "Failed to lookup restaurant", err)
	}
	if restaurant == nil {
		return nil, NewBusinessError("RESTAURANT_NOT_FOUND", "Restaurant not found", ErrRestaurantNotFound)
	}

	return toRestaurantResponse(restaurant), nil
}

// UpsertRestaurant creates the caller's restaurant profile on first call and
// replaces its fields on every later call. One owner holds at most one row.
func (s *RestaurantFlowImpl) UpsertRestaurant(ctx context.Context, req *dto.UpsertRestaurantRequest, metadata *ClientMetadata) (*dto.RestaurantResponse, error) {
	ownerUUID, err := uuid.Parse(req.OwnerUserID)
	if err != nil {
		return nil, NewBusinessError("INVALID_OWNER_ID", "Invalid owner user ID", err)
	}
	if req.Name == "" {
		return nil, NewBusinessError("RESTAURANT_VALIDATION_FAILED", "Restaurant validation failed", ErrRestaurantNameRequired)
	}

	var restaurant *models.Restaurant

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.restaurantRepo.ByOwnerUserID(txCtx, ownerUUID)
		if err != nil {
			return fmt.Errorf("failed to lookup restaurant: %w", err)
		}

		if existing == nil {
			restaurant = &models.Restaurant{
				OwnerUserID: ownerUUID,
			}
			applyRestaurantFields(restaurant, req)
			return s.restaurantRepo.Save(txCtx, restaurant)
		}

		restaurant = existing
		applyRestaurantFields(restaurant, req)
		return s.restaurantRepo.Update(txCtx, restaurant)
	})
	if err != nil {
		return nil, NewBusinessError("RESTAURANT_UPSERT_FAILED", "Failed to save restaurant", err)
	}

	return toRestaurantResponse(restaurant), nil
}

// DeleteAccount removes the caller's restaurant together with all of its
// campaigns and recipient rows in one transaction
func (s *RestaurantFlowImpl) DeleteAccount(ctx context.Context, ownerUserID string, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error) {
	ownerUUID, err := uuid.Parse(ownerUserID)
	if err != nil {
		return nil, NewBusinessError("INVALID_OWNER_ID", "Invalid owner user ID", err)
	}

	restaurant, err := s.restaurantRepo.ByOwnerUserID(ctx, ownerUUID)
	if err != nil {
		return nil, NewBusinessError("RESTAURANT_LOOKUP_FAILED", "Failed to lookup restaurant", err)
	}
	if restaurant == nil {
		return nil, NewBusinessError("RESTAURANT_NOT_FOUND", "Restaurant not found", ErrRestaurantNotFound)
	}

	var campaignsDeleted int

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaigns, err := s.campaignRepo.ByFilter(txCtx, models.CampaignFilter{RestaurantID: &restaurant.ID})
		if err != nil {
			return fmt.Errorf("failed to list campaigns: %w", err)
		}

		// Recipient rows go first so no orphan references survive the delete
		for _, campaign := range campaigns {
			if err := s.recipientRepo.DeleteByCampaignID(txCtx, campaign.ID); err != nil {
				return err
			}
			if err := s.campaignRepo.Delete(txCtx, campaign.ID); err != nil {
				return err
			}
		}
		campaignsDeleted = len(campaigns)

		return s.restaurantRepo.Delete(txCtx, restaurant.ID)
	})
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_DELETION_FAILED", "Failed to delete account", err)
	}

	return &dto.DeleteAccountResponse{
		Message:          "Account deleted successfully",
		CampaignsDeleted: campaignsDeleted,
	}, nil
}

func applyRestaurantFields(restaurant *models.Restaurant, req *dto.UpsertRestaurantRequest) {
	restaurant.Name = req.Name
	restaurant.Cuisine = req.Cuisine
	restaurant.City = req.City
	restaurant.State = normalizeStatePtr(req.State)
	restaurant.ContactEmail = req.ContactEmail
	restaurant.ContactPhone = req.ContactPhone
	restaurant.WebsiteURL = req.WebsiteURL
	restaurant.LogoURL = req.LogoURL
	restaurant.Caption = req.Caption
}

func toRestaurantResponse(restaurant *models.Restaurant) *dto.RestaurantResponse {
	return &dto.RestaurantResponse{
		UUID:         restaurant.UUID.String(),
		Name:         restaurant.Name,
		Cuisine:      restaurant.Cuisine,
		City:         restaurant.City,
		State:        restaurant.State,
		ContactEmail: restaurant.ContactEmail,
		ContactPhone: restaurant.ContactPhone,
		WebsiteURL:   restaurant.WebsiteURL,
		LogoURL:      restaurant.LogoURL,
		Caption:      restaurant.Caption,
		CreatedAt:    restaurant.CreatedAt,
		UpdatedAt:    restaurant.UpdatedAt,
	}
}
