// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/repository"
	"github.com/tavolo/tavolo/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// simulatedClickRate approximates engagement for simulated deliveries
const simulatedClickRate = 0.15

// CampaignFlow handles the campaign business logic
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, ownerUserID, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDetailResponse, error)
	UpdateCampaignStatus(ctx context.Context, req *dto.UpdateCampaignStatusRequest, metadata *ClientMetadata) (*dto.UpdateCampaignStatusResponse, error)
	DeleteCampaign(ctx context.Context, ownerUserID, campaignUUID string, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error)
	ExportCampaign(ctx context.Context, ownerUserID, campaignUUID string, metadata *ClientMetadata) (string, []byte, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	recipientRepo  repository.CampaignRecipientRepository
	restaurantRepo repository.RestaurantRepository
	dinerRepo      repository.DinerRepository
	db             *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	recipientRepo repository.CampaignRecipientRepository,
	restaurantRepo repository.RestaurantRepository,
	dinerRepo repository.DinerRepository,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:   campaignRepo,
		recipientRepo:  recipientRepo,
		restaurantRepo: restaurantRepo,
		dinerRepo:      dinerRepo,
		db:             db,
	}
}

// CreateCampaign materializes a campaign: it resolves the full eligible
// audience, writes the campaign row and one recipient row per diner with a
// rendered preview payload, all inside a single transaction.
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	if err := s.validateCreateCampaignRequest(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}

	restaurant, err := s.getOwnedRestaurant(ctx, req.OwnerUserID)
	if err != nil {
		return nil, err
	}

	channel := models.CampaignChannel(req.Channel)

	filter, err := BuildDinerFilter(req.Audience)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}
	applyChannelEligibility(&filter, channel)

	// The audience is the full match set, never a page of it
	diners, err := s.dinerRepo.ByFilter(ctx, filter, 0, 0)
	if err != nil {
		return nil, NewBusinessError("AUDIENCE_RESOLUTION_FAILED", "Failed to resolve audience", err)
	}
	if len(diners) == 0 {
		return nil, NewBusinessError("EMPTY_AUDIENCE", "Audience filter matched no eligible diners", ErrEmptyAudience)
	}

	var campaign *models.Campaign
	var recipients []*models.CampaignRecipient

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaign = &models.Campaign{
			RestaurantID:   restaurant.ID,
			Name:           req.Name,
			Channel:        channel,
			Status:         models.CampaignStatusActive,
			Subject:        req.Subject,
			Body:           req.Body,
			AudienceFilter: toAudienceFilterModel(req.Audience),
			AudienceSize:   len(diners),
		}
		if err := s.campaignRepo.Save(txCtx, campaign); err != nil {
			return fmt.Errorf("failed to save campaign: %w", err)
		}

		sentAt := utils.UTCNowRFC3339()
		recipients = make([]*models.CampaignRecipient, 0, len(diners))
		for _, diner := range diners {
			recipients = append(recipients, buildRecipient(campaign, diner, sentAt))
		}

		return s.recipientRepo.SaveBatch(txCtx, recipients)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	previewCount := utils.CampaignPreviewCount
	if len(recipients) < previewCount {
		previewCount = len(recipients)
	}
	previews := make([]dto.RecipientPreviewDTO, 0, previewCount)
	for _, recipient := range recipients[:previewCount] {
		previews = append(previews, toRecipientPreviewDTO(recipient))
	}

	return &dto.CreateCampaignResponse{
		Message:      "Campaign created successfully",
		UUID:         campaign.UUID.String(),
		Status:       campaign.Status.String(),
		AudienceSize: campaign.AudienceSize,
		Previews:     previews,
		CreatedAt:    campaign.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ListCampaigns returns the caller's campaigns newest first with simulated
// delivery aggregates
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "List validation failed", err)
	}

	restaurant, err := s.getOwnedRestaurant(ctx, req.OwnerUserID)
	if err != nil {
		return nil, err
	}

	total, err := s.campaignRepo.Count(ctx, models.CampaignFilter{RestaurantID: &restaurant.ID})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to count campaigns", err)
	}

	rows, err := s.campaignRepo.ListWithStats(ctx, restaurant.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	campaigns := make([]dto.CampaignSummaryDTO, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, dto.CampaignSummaryDTO{
			UUID:         row.UUID.String(),
			Name:         row.Name,
			Channel:      row.Channel.String(),
			Status:       row.Status.String(),
			AudienceSize: row.AudienceSize,
			SentCount:    row.SentCount,
			FailedCount:  row.FailedCount,
			ClickRate:    simulatedClicks(row.SentCount),
			CreatedAt:    row.CreatedAt,
		})
	}

	return &dto.ListCampaignsResponse{
		Campaigns: campaigns,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// GetCampaign returns one campaign with its full recipient list
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, ownerUserID, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDetailResponse, error) {
	campaign, _, err := s.getOwnedCampaign(ctx, ownerUserID, campaignUUID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.recipientRepo.ByCampaignID(ctx, campaign.ID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to load recipients", err)
	}

	rows := make([]dto.RecipientPreviewDTO, 0, len(recipients))
	for _, recipient := range recipients {
		rows = append(rows, toRecipientPreviewDTO(recipient))
	}

	return &dto.CampaignDetailResponse{
		UUID:           campaign.UUID.String(),
		Name:           campaign.Name,
		Channel:        campaign.Channel.String(),
		Status:         campaign.Status.String(),
		Subject:        campaign.Subject,
		Body:           campaign.Body,
		AudienceFilter: toAudienceFilterDTO(campaign.AudienceFilter),
		AudienceSize:   campaign.AudienceSize,
		Recipients:     rows,
		CreatedAt:      campaign.CreatedAt,
		UpdatedAt:      campaign.UpdatedAt,
	}, nil
}

// UpdateCampaignStatus changes the display status of a campaign. No
// delivery side effects follow; sends happened at creation time.
func (s *CampaignFlowImpl) UpdateCampaignStatus(ctx context.Context, req *dto.UpdateCampaignStatusRequest, metadata *ClientMetadata) (*dto.UpdateCampaignStatusResponse, error) {
	status := models.CampaignStatus(req.Status)
	if !status.Valid() {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrInvalidCampaignStatus)
	}

	campaign, _, err := s.getOwnedCampaign(ctx, req.OwnerUserID, req.UUID)
	if err != nil {
		return nil, err
	}

	if err := s.campaignRepo.UpdateStatus(ctx, campaign.ID, status); err != nil {
		return nil, NewBusinessError("CAMPAIGN_STATUS_UPDATE_FAILED", "Failed to update campaign status", err)
	}

	return &dto.UpdateCampaignStatusResponse{
		Message: "Campaign status updated successfully",
		UUID:    campaign.UUID.String(),
		Status:  status.String(),
	}, nil
}

// DeleteCampaign removes a campaign and its recipient rows in one transaction
func (s *CampaignFlowImpl) DeleteCampaign(ctx context.Context, ownerUserID, campaignUUID string, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error) {
	campaign, _, err := s.getOwnedCampaign(ctx, ownerUserID, campaignUUID)
	if err != nil {
		return nil, err
	}

	recipientCount, err := s.recipientRepo.CountByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_DELETION_FAILED", "Failed to count recipients", err)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.recipientRepo.DeleteByCampaignID(txCtx, campaign.ID); err != nil {
			return err
		}
		return s.campaignRepo.Delete(txCtx, campaign.ID)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_DELETION_FAILED", "Campaign deletion failed", err)
	}

	return &dto.DeleteCampaignResponse{
		Message:           "Campaign deleted successfully",
		RecipientsDeleted: recipientCount,
	}, nil
}

// ExportCampaign builds an xlsx workbook with the campaign summary and all
// of its recipient rows
func (s *CampaignFlowImpl) ExportCampaign(ctx context.Context, ownerUserID, campaignUUID string, metadata *ClientMetadata) (string, []byte, error) {
	campaign, _, err := s.getOwnedCampaign(ctx, ownerUserID, campaignUUID)
	if err != nil {
		return "", nil, err
	}

	recipients, err := s.recipientRepo.ByCampaignID(ctx, campaign.ID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("CAMPAIGN_EXPORT_FAILED", "Failed to load recipients", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	summarySheet := "Campaign"
	xl.SetSheetName(xl.GetSheetName(0), summarySheet)

	subject := ""
	if campaign.Subject != nil {
		subject = *campaign.Subject
	}
	summaryRows := [][]string{
		{"uuid", campaign.UUID.String()},
		{"name", campaign.Name},
		{"channel", campaign.Channel.String()},
		{"status", campaign.Status.String()},
		{"subject", subject},
		{"body", campaign.Body},
		{"audience_size", strconv.Itoa(campaign.AudienceSize)},
		{"created_at", campaign.CreatedAt.UTC().Format(time.RFC3339)},
	}
	for ri, row := range summaryRows {
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+1)
		_ = xl.SetSheetRow(summarySheet, cellRef, &row)
	}

	recipientSheet := "Recipients"
	_, _ = xl.NewSheet(recipientSheet)

	header := []string{"id", "diner_id", "recipient_name", "delivery_status", "subject", "body", "sent_at"}
	_ = xl.SetSheetRow(recipientSheet, "A1", &header)

	for ri, recipient := range recipients {
		payloadSubject := ""
		if recipient.PreviewPayload.Subject != nil {
			payloadSubject = *recipient.PreviewPayload.Subject
		}
		record := []string{
			strconv.FormatUint(uint64(recipient.ID), 10),
			strconv.FormatUint(uint64(recipient.DinerID), 10),
			recipient.PreviewPayload.RecipientName,
			recipient.DeliveryStatus.String(),
			payloadSubject,
			recipient.PreviewPayload.Body,
			recipient.PreviewPayload.SentAt,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(recipientSheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("campaign_%s.xlsx", campaign.UUID.String())
	return filename, buf.Bytes(), nil
}

func (s *CampaignFlowImpl) validateCreateCampaignRequest(req *dto.CreateCampaignRequest) error {
	if req.Name == "" {
		return ErrCampaignNameRequired
	}
	if req.Body == "" {
		return ErrCampaignBodyRequired
	}

	channel := models.CampaignChannel(req.Channel)
	if !channel.Valid() {
		return ErrInvalidCampaignChannel
	}
	if channel == models.CampaignChannelEmail {
		if req.Subject == nil || *req.Subject == "" {
			return ErrSubjectRequiredForEmail
		}
	}

	return nil
}

func (s *CampaignFlowImpl) getOwnedRestaurant(ctx context.Context, ownerUserID string) (*models.Restaurant, error) {
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
	return restaurant, nil
}

func (s *CampaignFlowImpl) getOwnedCampaign(ctx context.Context, ownerUserID, campaignUUID string) (*models.Campaign, *models.Restaurant, error) {
	if campaignUUID == "" {
		return nil, nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignUUIDRequired)
	}
	parsedUUID, err := uuid.Parse(campaignUUID)
	if err != nil {
		return nil, nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	restaurant, err := s.getOwnedRestaurant(ctx, ownerUserID)
	if err != nil {
		return nil, nil, err
	}

	campaign, err := s.campaignRepo.ByUUID(ctx, parsedUUID)
	if err != nil {
		return nil, nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	// A campaign owned by another restaurant is indistinguishable from a
	// nonexistent one
	if campaign.RestaurantID != restaurant.ID {
		return nil, nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	return campaign, restaurant, nil
}

// applyChannelEligibility narrows the audience to diners who consented to
// the channel and have the matching contact detail on file
func applyChannelEligibility(filter *models.DinerFilter, channel models.CampaignChannel) {
	consent := true
	switch channel {
	case models.CampaignChannelEmail:
		filter.ConsentEmail = &consent
		filter.RequiredEmail = true
	case models.CampaignChannelSMS:
		filter.ConsentSMS = &consent
		filter.RequiredPhone = true
	}
}

func buildRecipient(campaign *models.Campaign, diner *models.Diner, sentAt string) *models.CampaignRecipient {
	var subject *string
	if campaign.Channel == models.CampaignChannelEmail && campaign.Subject != nil {
		rendered := RenderTemplate(*campaign.Subject, diner.FirstName)
		subject = &rendered
	}

	return &models.CampaignRecipient{
		CampaignID:     campaign.ID,
		DinerID:        diner.ID,
		DeliveryStatus: models.DeliveryStatusSimulatedSent,
		PreviewPayload: models.PreviewPayload{
			Channel:       campaign.Channel.String(),
			Subject:       subject,
			Body:          RenderTemplate(campaign.Body, diner.FirstName),
			RecipientName: DinerDisplayName(diner.FirstName, diner.LastName),
			SentAt:        sentAt,
		},
	}
}

// simulatedClicks estimates clicks for simulated deliveries
func simulatedClicks(sentCount int) float64 {
	return math.Round(float64(sentCount) * simulatedClickRate)
}

func toAudienceFilterModel(f dto.AudienceFilterDTO) models.AudienceFilter {
	return models.AudienceFilter{
		City:      f.City,
		State:     normalizeStatePtr(f.State),
		Interests: f.Interests,
		Match:     f.Match,
		Seniority: f.Seniority,
	}
}

func toAudienceFilterDTO(f models.AudienceFilter) dto.AudienceFilterDTO {
	return dto.AudienceFilterDTO{
		City:      f.City,
		State:     f.State,
		Interests: f.Interests,
		Match:     f.Match,
		Seniority: f.Seniority,
	}
}

func toRecipientPreviewDTO(recipient *models.CampaignRecipient) dto.RecipientPreviewDTO {
	return dto.RecipientPreviewDTO{
		DinerID:        recipient.DinerID,
		RecipientName:  recipient.PreviewPayload.RecipientName,
		Channel:        recipient.PreviewPayload.Channel,
		Subject:        recipient.PreviewPayload.Subject,
		Body:           recipient.PreviewPayload.Body,
		DeliveryStatus: recipient.DeliveryStatus.String(),
		SentAt:         recipient.PreviewPayload.SentAt,
	}
}
