// Package businessflow contains the core business logic and use cases for diner discovery workflows
package businessflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/config"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/repository"
	"github.com/tavolo/tavolo/utils"
)

// DinerFlow handles the diner discovery business logic
type DinerFlow interface {
	SearchDiners(ctx context.Context, req *dto.SearchDinersRequest, metadata *ClientMetadata) (*dto.SearchDinersResponse, error)
	GetFilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error)
}

// DinerFlowImpl implements the diner discovery business flow
type DinerFlowImpl struct {
	dinerRepo   repository.DinerRepository
	cacheConfig *config.CacheConfig
	rc          *redis.Client
}

// NewDinerFlow creates a new diner flow instance
func NewDinerFlow(
	dinerRepo repository.DinerRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) DinerFlow {
	return &DinerFlowImpl{
		dinerRepo:   dinerRepo,
		cacheConfig: cacheConfig,
		rc:          rc,
	}
}

// SearchDiners pages through the diner directory using the structured
// targeting criteria. Contact columns never leave the repository layer
// unmasked; the DTO carries only consent flags.
func (s *DinerFlowImpl) SearchDiners(ctx context.Context, req *dto.SearchDinersRequest, metadata *ClientMetadata) (*dto.SearchDinersResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("SEARCH_VALIDATION_FAILED", "Search validation failed", err)
	}

	filter, err := BuildDinerFilter(req.AudienceFilterDTO)
	if err != nil {
		return nil, NewBusinessError("SEARCH_VALIDATION_FAILED", "Search validation failed", err)
	}

	// An explicit channel narrows the search to eligible diners, the same
	// clause audience resolution forces at send time
	if req.Channel != "" {
		channel := models.CampaignChannel(req.Channel)
		if !channel.Valid() {
			return nil, NewBusinessError("SEARCH_VALIDATION_FAILED", "Search validation failed", ErrInvalidCampaignChannel)
		}
		applyChannelEligibility(&filter, channel)
	}

	total, err := s.dinerRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("DINER_SEARCH_FAILED", "Failed to count diners", err)
	}

	diners, err := s.dinerRepo.ByFilter(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("DINER_SEARCH_FAILED", "Failed to search diners", err)
	}

	rows := make([]dto.DinerDTO, 0, len(diners))
	for _, diner := range diners {
		rows = append(rows, toDinerDTO(diner))
	}

	return &dto.SearchDinersResponse{
		Items:    rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetFilterOptions returns the distinct targeting values, served from redis
// when a fresh copy is cached
func (s *DinerFlowImpl) GetFilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error) {
	cacheKey := redisKey(*s.cacheConfig, utils.FilterOptionsCacheKey)

	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out dto.FilterOptionsResponse
			if err := json.Unmarshal(bs, &out); err == nil {
				return &out, nil
			}
		}
	}

	cities, err := s.dinerRepo.DistinctCities(ctx)
	if err != nil {
		return nil, NewBusinessError("FILTER_OPTIONS_FAILED", "Failed to list cities", err)
	}
	states, err := s.dinerRepo.DistinctStates(ctx)
	if err != nil {
		return nil, NewBusinessError("FILTER_OPTIONS_FAILED", "Failed to list states", err)
	}
	interests, err := s.dinerRepo.DistinctInterests(ctx)
	if err != nil {
		return nil, NewBusinessError("FILTER_OPTIONS_FAILED", "Failed to list interests", err)
	}

	out := &dto.FilterOptionsResponse{
		Cities:      cities,
		States:      states,
		Interests:   interests,
		Seniorities: models.ValidSeniorities,
	}

	if s.rc != nil {
		if bs, err := json.Marshal(out); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, s.cacheConfig.DefaultTTL).Err()
		}
	}

	return out, nil
}

// BuildDinerFilter translates request-layer targeting criteria into the
// repository filter. State values are upper-cased and matched exactly, so
// unnormalized input like "Texas" is a miss rather than an error. Interests
// are trimmed and seniority values checked against the known buckets.
func BuildDinerFilter(f dto.AudienceFilterDTO) (models.DinerFilter, error) {
	var filter models.DinerFilter

	if f.City != nil && strings.TrimSpace(*f.City) != "" {
		city := strings.TrimSpace(*f.City)
		filter.City = &city
	}

	if f.State != nil && strings.TrimSpace(*f.State) != "" {
		state := strings.ToUpper(strings.TrimSpace(*f.State))
		filter.State = &state
	}

	interests := normalizeInterests(f.Interests)
	if len(interests) > 0 {
		switch strings.ToLower(strings.TrimSpace(f.Match)) {
		case "", models.MatchAny:
			filter.InterestsAny = interests
		case models.MatchAll:
			filter.InterestsAll = interests
		default:
			return filter, ErrInvalidMatchMode
		}
	}

	for _, seniority := range f.Seniority {
		seniority = strings.ToLower(strings.TrimSpace(seniority))
		if !models.IsValidSeniority(seniority) {
			return filter, ErrInvalidSeniority
		}
		filter.Seniority = append(filter.Seniority, seniority)
	}

	return filter, nil
}

func normalizeInterests(interests []string) []string {
	out := make([]string, 0, len(interests))
	for _, interest := range interests {
		interest = strings.TrimSpace(interest)
		if interest != "" {
			out = append(out, interest)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}
	if pageSize < 1 {
		return 0, 0, ErrInvalidPageSize
	}
	// oversized requests are clamped, not rejected
	if pageSize > utils.MaxPageSize {
		pageSize = utils.MaxPageSize
	}
	return page, pageSize, nil
}

func normalizeStatePtr(state *string) *string {
	if state == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*state))
	if normalized == "" {
		return nil
	}
	return &normalized
}

func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}

func toDinerDTO(diner *models.Diner) dto.DinerDTO {
	return dto.DinerDTO{
		ID:           diner.ID,
		FirstName:    diner.FirstName,
		LastName:     diner.LastName,
		City:         diner.City,
		State:        diner.State,
		Interests:    diner.Interests,
		Seniority:    diner.Seniority,
		ConsentEmail: diner.ConsentEmail,
		ConsentSMS:   diner.ConsentSMS,
	}
}
