package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tavolo/tavolo/models"
	"gorm.io/gorm"
)

// DinerRepositoryImpl implements DinerRepository. The diner directory is
// read-only; the repository never writes to it.
type DinerRepositoryImpl struct {
	DB *gorm.DB
}

func NewDinerRepository(db *gorm.DB) DinerRepository {
	return &DinerRepositoryImpl{DB: db}
}

func (r *DinerRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB
}

func (r *DinerRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Diner, error) {
	db := r.getDB(ctx)
	var diner models.Diner
	if err := db.Last(&diner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find diner by ID %d: %w", id, err)
	}
	return &diner, nil
}

// applyFilter translates the structured search criteria into SQL. City is a
// case-insensitive substring match, state an exact code match, interests use
// array overlap (any) and containment (all) so the GIN index serves both.
func (r *DinerRepositoryImpl) applyFilter(db *gorm.DB, f models.DinerFilter) *gorm.DB {
	if f.City != nil {
		db = db.Where("city ILIKE ?", "%"+*f.City+"%")
	}
	if f.State != nil {
		db = db.Where("state = ?", *f.State)
	}
	if len(f.InterestsAny) > 0 {
		db = db.Where("interests && ?", pq.Array(f.InterestsAny))
	}
	if len(f.InterestsAll) > 0 {
		db = db.Where("interests @> ?", pq.Array(f.InterestsAll))
	}
	if len(f.Seniority) > 0 {
		db = db.Where("seniority IN ?", f.Seniority)
	}
	if f.ConsentEmail != nil {
		db = db.Where("consent_email = ?", *f.ConsentEmail)
	}
	if f.ConsentSMS != nil {
		db = db.Where("consent_sms = ?", *f.ConsentSMS)
	}
	if f.RequiredEmail {
		db = db.Where("email IS NOT NULL")
	}
	if f.RequiredPhone {
		db = db.Where("phone IS NOT NULL")
	}
	return db
}

// ByFilter returns diners matching the filter ordered by last name, first
// name, then id. NULL names sort last so unnamed profiles end up at the
// bottom of every page.
func (r *DinerRepositoryImpl) ByFilter(ctx context.Context, filter models.DinerFilter, limit, offset int) ([]*models.Diner, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Diner{}), filter).
		Order("last_name ASC NULLS LAST").
		Order("first_name ASC NULLS LAST").
		Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Diner
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find diners by filter: %w", err)
	}
	return rows, nil
}

func (r *DinerRepositoryImpl) Count(ctx context.Context, filter models.DinerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Diner{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count diners: %w", err)
	}
	return count, nil
}

func (r *DinerRepositoryImpl) DistinctCities(ctx context.Context) ([]string, error) {
	db := r.getDB(ctx)
	var cities []string
	err := db.Model(&models.Diner{}).
		Where("city IS NOT NULL").
		Distinct("city").
		Order("city ASC").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct cities: %w", err)
	}
	return cities, nil
}

func (r *DinerRepositoryImpl) DistinctStates(ctx context.Context) ([]string, error) {
	db := r.getDB(ctx)
	var states []string
	err := db.Model(&models.Diner{}).
		Where("state IS NOT NULL").
		Distinct("state").
		Order("state ASC").
		Pluck("state", &states).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct states: %w", err)
	}
	return states, nil
}

func (r *DinerRepositoryImpl) DistinctInterests(ctx context.Context) ([]string, error) {
	db := r.getDB(ctx)
	var interests []string
	err := db.Model(&models.Diner{}).
		Select("DISTINCT unnest(interests) AS interest").
		Order("interest ASC").
		Pluck("interest", &interests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct interests: %w", err)
	}
	return interests, nil
}
