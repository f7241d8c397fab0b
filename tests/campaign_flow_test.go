// Package tests contains integration tests for campaign flow
package tests

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavolo/tavolo/app/dto"
	businessflow "github.com/tavolo/tavolo/business_flow"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/repository"
	testingutil "github.com/tavolo/tavolo/testing"
	"github.com/tavolo/tavolo/utils"
	"github.com/xuri/excelize/v2"
)

func newCampaignFlow(testDB *testingutil.TestDB) businessflow.CampaignFlow {
	return businessflow.NewCampaignFlow(
		repository.NewCampaignRepository(testDB.DB),
		repository.NewCampaignRecipientRepository(testDB.DB),
		repository.NewRestaurantRepository(testDB.DB),
		repository.NewDinerRepository(testDB.DB),
		testDB.DB,
	)
}

func TestCampaignFlowCreate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newCampaignFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		restaurant, err := fixtures.CreateTestRestaurant()
		require.NoError(t, err)
		owner := restaurant.OwnerUserID.String()

		// seven email-eligible diners, one sms-only, one opted in without an address
		var specs []testingutil.DinerSpec
		for i := 0; i < 7; i++ {
			specs = append(specs, testingutil.DinerSpec{
				FirstName:    fmt.Sprintf("Diner%d", i),
				LastName:     fmt.Sprintf("Lane%d", i),
				Email:        fmt.Sprintf("diner%d@example.com", i),
				City:         "Austin",
				State:        "TX",
				Seniority:    models.SeniorityLoyal,
				ConsentEmail: true,
			})
		}
		specs = append(specs,
			testingutil.DinerSpec{FirstName: "Sami", Phone: "+15125550123", City: "Austin", State: "TX", ConsentSMS: true},
			testingutil.DinerSpec{FirstName: "Noor", City: "Austin", State: "TX", ConsentEmail: true},
		)
		_, err = fixtures.CreateTestDiners(specs)
		require.NoError(t, err)

		t.Run("EmailCampaignMaterializesEligibleAudience", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: owner,
				Name:        "Weekend Special",
				Channel:     "email",
				Subject:     utils.ToPtr("A table for you, {FirstName}"),
				Body:        "Hi {FirstName}! Join us this weekend.",
				Audience:    dto.AudienceFilterDTO{City: utils.ToPtr("Austin")},
			}

			resp, err := flow.CreateCampaign(ctx, req, metadata)
			require.NoError(t, err)
			require.NotNil(t, resp)

			// only opted-in diners with an address on file qualify
			assert.Equal(t, 7, resp.AudienceSize)
			assert.Equal(t, "active", resp.Status)
			assert.Len(t, resp.Previews, utils.CampaignPreviewCount)

			preview := resp.Previews[0]
			assert.Equal(t, "email", preview.Channel)
			assert.Equal(t, "simulated_sent", preview.DeliveryStatus)
			assert.Equal(t, "Hi Diner0! Join us this weekend.", preview.Body)
			require.NotNil(t, preview.Subject)
			assert.Equal(t, "A table for you, Diner0", *preview.Subject)
			assert.Equal(t, "Diner0 Lane0", preview.RecipientName)
			assert.NotEmpty(t, preview.SentAt)

			// one recipient row per audience member
			recipientRepo := repository.NewCampaignRecipientRepository(testDB.DB)
			campaign, err := repository.NewCampaignRepository(testDB.DB).ByUUID(ctx, uuid.MustParse(resp.UUID))
			require.NoError(t, err)
			require.NotNil(t, campaign)
			count, err := recipientRepo.CountByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(7), count)
		})

		t.Run("SMSCampaignRequiresPhoneAndConsent", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: owner,
				Name:        "Text Blast",
				Channel:     "sms",
				Body:        "Hi {FirstName}! Show this text for a free appetizer.",
				Audience:    dto.AudienceFilterDTO{City: utils.ToPtr("Austin")},
			}

			resp, err := flow.CreateCampaign(ctx, req, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, resp.AudienceSize)
			require.Len(t, resp.Previews, 1)
			assert.Equal(t, "Hi Sami! Show this text for a free appetizer.", resp.Previews[0].Body)
			assert.Nil(t, resp.Previews[0].Subject)
		})

		t.Run("EmailRequiresSubject", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: owner,
				Name:        "No Subject",
				Channel:     "email",
				Body:        "Hi {FirstName}!",
			}

			_, err := flow.CreateCampaign(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSubjectRequiredForEmail(err))
		})

		t.Run("InvalidChannel", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: owner,
				Name:        "Pigeon Post",
				Channel:     "pigeon",
				Body:        "Hi {FirstName}!",
			}

			_, err := flow.CreateCampaign(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidCampaignChannel(err))
		})

		t.Run("EmptyAudience", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: owner,
				Name:        "Ghost Town",
				Channel:     "email",
				Subject:     utils.ToPtr("Hello"),
				Body:        "Hi {FirstName}!",
				Audience:    dto.AudienceFilterDTO{City: utils.ToPtr("Nowhereville")},
			}

			_, err := flow.CreateCampaign(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmptyAudience(err))
		})

		t.Run("UnnormalizedStateMatchesNothing", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: owner,
				Name:        "Bad State",
				Channel:     "email",
				Subject:     utils.ToPtr("Hello"),
				Body:        "Hi {FirstName}!",
				Audience:    dto.AudienceFilterDTO{State: utils.ToPtr("Texas")},
			}

			_, err := flow.CreateCampaign(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmptyAudience(err))
		})

		t.Run("NoRestaurantForOwner", func(t *testing.T) {
			req := &dto.CreateCampaignRequest{
				OwnerUserID: uuid.New().String(),
				Name:        "Orphan",
				Channel:     "email",
				Subject:     utils.ToPtr("Hello"),
				Body:        "Hi {FirstName}!",
			}

			_, err := flow.CreateCampaign(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsRestaurantNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignFlowListAndDetail(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newCampaignFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		restaurant, err := fixtures.CreateTestRestaurant()
		require.NoError(t, err)
		owner := restaurant.OwnerUserID.String()

		var specs []testingutil.DinerSpec
		for i := 0; i < 30; i++ {
			specs = append(specs, testingutil.DinerSpec{
				FirstName:    fmt.Sprintf("Guest%02d", i),
				LastName:     fmt.Sprintf("Row%02d", i),
				Email:        fmt.Sprintf("guest%02d@example.com", i),
				ConsentEmail: true,
			})
		}
		_, err = fixtures.CreateTestDiners(specs)
		require.NoError(t, err)

		created, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
			OwnerUserID: owner,
			Name:        "Big Blast",
			Channel:     "email",
			Subject:     utils.ToPtr("Hello {FirstName}"),
			Body:        "Hi {FirstName}! Come by.",
		}, metadata)
		require.NoError(t, err)
		require.Equal(t, 30, created.AudienceSize)

		t.Run("ListWithSimulatedClickRate", func(t *testing.T) {
			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{OwnerUserID: owner}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.Total)
			assert.Equal(t, 1, resp.Page)
			assert.Equal(t, utils.DefaultPageSize, resp.PageSize)
			require.Len(t, resp.Campaigns, 1)

			summary := resp.Campaigns[0]
			assert.Equal(t, created.UUID, summary.UUID)
			assert.Equal(t, 30, summary.AudienceSize)
			assert.Equal(t, 30, summary.SentCount)
			assert.Equal(t, 0, summary.FailedCount)
			// 30 * 0.15 rounded
			assert.Equal(t, float64(5), summary.ClickRate)
		})

		t.Run("ListClampsOversizedPage", func(t *testing.T) {
			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{OwnerUserID: owner, PageSize: 101}, metadata)
			require.NoError(t, err)
			assert.Equal(t, utils.MaxPageSize, resp.PageSize)
		})

		t.Run("DetailCarriesFullRecipientList", func(t *testing.T) {
			detail, err := flow.GetCampaign(ctx, owner, created.UUID, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Big Blast", detail.Name)
			assert.Equal(t, 30, detail.AudienceSize)
			assert.Len(t, detail.Recipients, 30)
		})

		t.Run("DetailHiddenFromOtherOwner", func(t *testing.T) {
			other, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)

			_, err = flow.GetCampaign(ctx, other.OwnerUserID.String(), created.UUID, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		t.Run("DetailNotFound", func(t *testing.T) {
			_, err := flow.GetCampaign(ctx, owner, uuid.New().String(), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			resp, err := flow.UpdateCampaignStatus(ctx, &dto.UpdateCampaignStatusRequest{
				UUID:        created.UUID,
				OwnerUserID: owner,
				Status:      "paused",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "paused", resp.Status)

			detail, err := flow.GetCampaign(ctx, owner, created.UUID, metadata)
			require.NoError(t, err)
			assert.Equal(t, "paused", detail.Status)
			// status is display state only; deliveries stay untouched
			assert.Len(t, detail.Recipients, 30)
		})

		t.Run("UpdateStatusInvalid", func(t *testing.T) {
			_, err := flow.UpdateCampaignStatus(ctx, &dto.UpdateCampaignStatusRequest{
				UUID:        created.UUID,
				OwnerUserID: owner,
				Status:      "archived",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidCampaignStatus(err))
		})

		t.Run("Export", func(t *testing.T) {
			filename, content, err := flow.ExportCampaign(ctx, owner, created.UUID, metadata)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("campaign_%s.xlsx", created.UUID), filename)
			require.NotEmpty(t, content)

			xl, err := excelize.OpenReader(bytes.NewReader(content))
			require.NoError(t, err)
			defer func() { _ = xl.Close() }()

			assert.Contains(t, xl.GetSheetList(), "Campaign")
			assert.Contains(t, xl.GetSheetList(), "Recipients")

			rows, err := xl.GetRows("Recipients")
			require.NoError(t, err)
			// header plus every recipient, not just the sample
			assert.Len(t, rows, 31)
		})

		t.Run("Delete", func(t *testing.T) {
			resp, err := flow.DeleteCampaign(ctx, owner, created.UUID, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(30), resp.RecipientsDeleted)

			_, err = flow.GetCampaign(ctx, owner, created.UUID, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
