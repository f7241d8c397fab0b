// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
}

// RestaurantRepository defines operations for restaurant profiles
type RestaurantRepository interface {
	Repository[models.Restaurant, models.RestaurantFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Restaurant, error)
	ByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Delete(ctx context.Context, id uint) error
}

// DinerRepository defines read operations over the shared diner directory
type DinerRepository interface {
	ByID(ctx context.Context, id uint) (*models.Diner, error)
	ByFilter(ctx context.Context, filter models.DinerFilter, limit, offset int) ([]*models.Diner, error)
	Count(ctx context.Context, filter models.DinerFilter) (int64, error)
	DistinctCities(ctx context.Context) ([]string, error)
	DistinctStates(ctx context.Context) ([]string, error)
	DistinctInterests(ctx context.Context) ([]string, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Campaign, error)
	ByFilter(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error)
	ListWithStats(ctx context.Context, restaurantID uint, limit, offset int) ([]*models.CampaignWithStats, error)
	Count(ctx context.Context, filter models.CampaignFilter) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error
	Delete(ctx context.Context, id uint) error
}

// CampaignRecipientRepository defines operations for materialized recipients
type CampaignRecipientRepository interface {
	Repository[models.CampaignRecipient, models.CampaignRecipientFilter]
	ByCampaignID(ctx context.Context, campaignID uint, limit, offset int) ([]*models.CampaignRecipient, error)
	CountByCampaignID(ctx context.Context, campaignID uint) (int64, error)
	DeleteByCampaignID(ctx context.Context, campaignID uint) error
}
