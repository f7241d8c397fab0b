package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/models"
	"gorm.io/gorm"
)

// RestaurantRepositoryImpl implements RestaurantRepository
type RestaurantRepositoryImpl struct {
	*BaseRepository[models.Restaurant, models.RestaurantFilter]
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &RestaurantRepositoryImpl{BaseRepository: NewBaseRepository[models.Restaurant, models.RestaurantFilter](db)}
}

func (r *RestaurantRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	db := r.getDB(ctx)
	var restaurant models.Restaurant
	if err := db.Where("uuid = ?", id).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find restaurant by UUID: %w", err)
	}
	return &restaurant, nil
}

func (r *RestaurantRepositoryImpl) ByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*models.Restaurant, error) {
	db := r.getDB(ctx)
	var restaurant models.Restaurant
	if err := db.Where("owner_user_id = ?", ownerUserID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find restaurant by owner: %w", err)
	}
	return &restaurant, nil
}

func (r *RestaurantRepositoryImpl) Update(ctx context.Context, restaurant *models.Restaurant) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(restaurant).Error
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}

	return nil
}

func (r *RestaurantRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.Restaurant{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	return nil
}
