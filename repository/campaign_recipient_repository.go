package repository

import (
	"context"
	"fmt"

	"github.com/tavolo/tavolo/models"
	"gorm.io/gorm"
)

// CampaignRecipientRepositoryImpl implements CampaignRecipientRepository
type CampaignRecipientRepositoryImpl struct {
	*BaseRepository[models.CampaignRecipient, models.CampaignRecipientFilter]
}

func NewCampaignRecipientRepository(db *gorm.DB) CampaignRecipientRepository {
	return &CampaignRecipientRepositoryImpl{BaseRepository: NewBaseRepository[models.CampaignRecipient, models.CampaignRecipientFilter](db)}
}

// ByCampaignID returns recipients in insertion order so samples stay stable
// across calls.
func (r *CampaignRecipientRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint, limit, offset int) ([]*models.CampaignRecipient, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CampaignRecipient{}).
		Where("campaign_id = ?", campaignID).
		Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CampaignRecipient
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find recipients by campaign: %w", err)
	}
	return rows, nil
}

func (r *CampaignRecipientRepositoryImpl) CountByCampaignID(ctx context.Context, campaignID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.CampaignRecipient{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recipients: %w", err)
	}
	return count, nil
}

func (r *CampaignRecipientRepositoryImpl) DeleteByCampaignID(ctx context.Context, campaignID uint) error {
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

	err = db.Where("campaign_id = ?", campaignID).Delete(&models.CampaignRecipient{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete recipients by campaign: %w", err)
	}

	return nil
}
