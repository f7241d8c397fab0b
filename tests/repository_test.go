// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/repository"
	testingutil "github.com/tavolo/tavolo/testing"
	"github.com/tavolo/tavolo/utils"
)

func directoryDiners() []testingutil.DinerSpec {
	return []testingutil.DinerSpec{
		{FirstName: "Ada", LastName: "Alvarez", Email: "ada@example.com", Phone: "+15125550001", City: "Austin", State: "TX", Interests: []string{"italian", "wine"}, Seniority: models.SeniorityLoyal, ConsentEmail: true, ConsentSMS: true},
		{FirstName: "Ben", LastName: "Baker", Email: "ben@example.com", City: "Austin", State: "TX", Interests: []string{"bbq"}, Seniority: models.SeniorityNew, ConsentEmail: true},
		{FirstName: "Cara", LastName: "Chen", Phone: "+15125550003", City: "Dallas", State: "TX", Interests: []string{"italian", "vegan"}, Seniority: models.SeniorityEstablished, ConsentSMS: true},
		{FirstName: "Drew", LastName: "Diaz", Email: "drew@example.com", Phone: "+15035550004", City: "Portland", State: "OR", Interests: []string{"wine", "brunch"}, Seniority: models.SeniorityLoyal, ConsentEmail: true, ConsentSMS: true},
		{Email: "anon@example.com", City: "Austin", State: "TX", Seniority: models.SeniorityNew, ConsentEmail: true},
	}
}

func TestDinerRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewDinerRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		seeded, err := fixtures.CreateTestDiners(directoryDiners())
		require.NoError(t, err)
		require.Len(t, seeded, 5)

		t.Run("ByID", func(t *testing.T) {
			diner, err := repo.ByID(ctx, seeded[0].ID)
			require.NoError(t, err)
			require.NotNil(t, diner)
			assert.Equal(t, "Ada", *diner.FirstName)
			assert.Equal(t, []string{"italian", "wine"}, []string(diner.Interests))
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			diner, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, diner)
		})

		t.Run("ByFilterCitySubstring", func(t *testing.T) {
			diners, err := repo.ByFilter(ctx, models.DinerFilter{City: utils.ToPtr("aust")}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, diners, 3)
			for _, d := range diners {
				assert.Equal(t, "Austin", *d.City)
			}
		})

		t.Run("ByFilterStateExact", func(t *testing.T) {
			diners, err := repo.ByFilter(ctx, models.DinerFilter{State: utils.ToPtr("OR")}, 0, 0)
			require.NoError(t, err)
			require.Len(t, diners, 1)
			assert.Equal(t, "Drew", *diners[0].FirstName)

			// state never matches as a substring
			diners, err = repo.ByFilter(ctx, models.DinerFilter{State: utils.ToPtr("T")}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, diners, 0)
		})

		t.Run("ByFilterInterestsAny", func(t *testing.T) {
			diners, err := repo.ByFilter(ctx, models.DinerFilter{InterestsAny: []string{"italian", "bbq"}}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, diners, 3)
		})

		t.Run("ByFilterInterestsAll", func(t *testing.T) {
			diners, err := repo.ByFilter(ctx, models.DinerFilter{InterestsAll: []string{"italian", "wine"}}, 0, 0)
			require.NoError(t, err)
			require.Len(t, diners, 1)
			assert.Equal(t, "Ada", *diners[0].FirstName)
		})

		t.Run("ByFilterSeniority", func(t *testing.T) {
			diners, err := repo.ByFilter(ctx, models.DinerFilter{Seniority: []string{models.SeniorityLoyal, models.SeniorityEstablished}}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, diners, 3)
		})

		t.Run("ByFilterConsentAndContact", func(t *testing.T) {
			// SMS eligibility: opted in and reachable by phone
			diners, err := repo.ByFilter(ctx, models.DinerFilter{ConsentSMS: utils.ToPtr(true), RequiredPhone: true}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, diners, 3)

			// email eligibility excludes the phone-only diner
			diners, err = repo.ByFilter(ctx, models.DinerFilter{ConsentEmail: utils.ToPtr(true), RequiredEmail: true}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, diners, 4)
			for _, d := range diners {
				assert.NotNil(t, d.Email)
				assert.True(t, d.ConsentEmail)
			}
		})

		t.Run("ByFilterOrdering", func(t *testing.T) {
			diners, err := repo.ByFilter(ctx, models.DinerFilter{}, 0, 0)
			require.NoError(t, err)
			require.Len(t, diners, 5)
			assert.Equal(t, "Alvarez", *diners[0].LastName)
			assert.Equal(t, "Baker", *diners[1].LastName)
			assert.Equal(t, "Chen", *diners[2].LastName)
			assert.Equal(t, "Diaz", *diners[3].LastName)
			// unnamed diner sorts last
			assert.Nil(t, diners[4].LastName)
		})

		t.Run("ByFilterPagination", func(t *testing.T) {
			page1, err := repo.ByFilter(ctx, models.DinerFilter{}, 2, 0)
			require.NoError(t, err)
			require.Len(t, page1, 2)

			page2, err := repo.ByFilter(ctx, models.DinerFilter{}, 2, 2)
			require.NoError(t, err)
			require.Len(t, page2, 2)
			assert.NotEqual(t, page1[0].ID, page2[0].ID)
		})

		t.Run("Count", func(t *testing.T) {
			count, err := repo.Count(ctx, models.DinerFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(5), count)

			count, err = repo.Count(ctx, models.DinerFilter{State: utils.ToPtr("TX")})
			require.NoError(t, err)
			assert.Equal(t, int64(4), count)
		})

		t.Run("DistinctCities", func(t *testing.T) {
			cities, err := repo.DistinctCities(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Austin", "Dallas", "Portland"}, cities)
		})

		t.Run("DistinctStates", func(t *testing.T) {
			states, err := repo.DistinctStates(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"OR", "TX"}, states)
		})

		t.Run("DistinctInterests", func(t *testing.T) {
			interests, err := repo.DistinctInterests(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"bbq", "brunch", "italian", "vegan", "wine"}, interests)
		})

		t.Run("EmailUnique", func(t *testing.T) {
			dup := &models.Diner{Email: utils.ToPtr("ada@example.com"), Interests: pq.StringArray{}, Seniority: models.SeniorityNew}
			err := testDB.DB.Create(dup).Error
			require.Error(t, err)
		})

		t.Run("PhoneUnique", func(t *testing.T) {
			dup := &models.Diner{Phone: utils.ToPtr("+15125550001"), Interests: pq.StringArray{}, Seniority: models.SeniorityNew}
			err := testDB.DB.Create(dup).Error
			require.Error(t, err)
		})

		t.Run("MissingContactNotUnique", func(t *testing.T) {
			// the seed data already has rows with NULL email and NULL phone,
			// so one more of each must not trip the unique constraints
			blank := &models.Diner{Interests: pq.StringArray{}, Seniority: models.SeniorityNew}
			err := testDB.DB.Create(blank).Error
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Delete(blank).Error)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRestaurantRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewRestaurantRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)

			restaurant, err := repo.ByUUID(ctx, original.UUID)
			require.NoError(t, err)
			require.NotNil(t, restaurant)
			assert.Equal(t, original.ID, restaurant.ID)
			assert.Equal(t, original.Name, restaurant.Name)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			restaurant, err := repo.ByUUID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, restaurant)
		})

		t.Run("ByOwnerUserID", func(t *testing.T) {
			original, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)

			restaurant, err := repo.ByOwnerUserID(ctx, original.OwnerUserID)
			require.NoError(t, err)
			require.NotNil(t, restaurant)
			assert.Equal(t, original.ID, restaurant.ID)
		})

		t.Run("ByOwnerUserIDNotFound", func(t *testing.T) {
			restaurant, err := repo.ByOwnerUserID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, restaurant)
		})

		t.Run("Update", func(t *testing.T) {
			original, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)

			original.Name = "Osteria Nuova"
			original.Cuisine = utils.ToPtr("Tuscan")
			err = repo.Update(ctx, original)
			require.NoError(t, err)

			updated, err := repo.ByUUID(ctx, original.UUID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, "Osteria Nuova", updated.Name)
			assert.Equal(t, "Tuscan", *updated.Cuisine)
		})

		t.Run("Delete", func(t *testing.T) {
			original, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)

			err = repo.Delete(ctx, original.ID)
			require.NoError(t, err)

			restaurant, err := repo.ByUUID(ctx, original.UUID)
			assert.NoError(t, err)
			assert.Nil(t, restaurant)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCampaignRepository(testDB.DB)
		recipientRepo := repository.NewCampaignRecipientRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		restaurant, err := fixtures.CreateTestRestaurant()
		require.NoError(t, err)

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestCampaign(restaurant.ID, models.CampaignChannelEmail)
			require.NoError(t, err)

			campaign, err := repo.ByUUID(ctx, original.UUID)
			require.NoError(t, err)
			require.NotNil(t, campaign)
			assert.Equal(t, original.ID, campaign.ID)
			assert.Equal(t, models.CampaignChannelEmail, campaign.Channel)
			assert.NotNil(t, campaign.Subject)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			campaign, err := repo.ByUUID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, campaign)
		})

		t.Run("ByFilterRestaurantScoped", func(t *testing.T) {
			other, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)
			_, err = fixtures.CreateTestCampaign(other.ID, models.CampaignChannelSMS)
			require.NoError(t, err)

			campaigns, err := repo.ByFilter(ctx, models.CampaignFilter{RestaurantID: &other.ID})
			require.NoError(t, err)
			require.Len(t, campaigns, 1)
			assert.Equal(t, other.ID, campaigns[0].RestaurantID)
		})

		t.Run("ListWithStats", func(t *testing.T) {
			owner, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)
			campaign, err := fixtures.CreateTestCampaign(owner.ID, models.CampaignChannelEmail)
			require.NoError(t, err)

			diners, err := fixtures.CreateTestDiners([]testingutil.DinerSpec{
				{FirstName: "Eve", Email: "eve@example.com", ConsentEmail: true},
				{FirstName: "Finn", Email: "finn@example.com", ConsentEmail: true},
				{FirstName: "Gwen", Email: "gwen@example.com", ConsentEmail: true},
			})
			require.NoError(t, err)
			for _, d := range diners {
				_, err := fixtures.CreateTestRecipient(campaign.ID, d.ID)
				require.NoError(t, err)
			}

			rows, err := repo.ListWithStats(ctx, owner.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, campaign.ID, rows[0].ID)
			assert.Equal(t, 3, rows[0].SentCount)
			assert.Equal(t, 0, rows[0].FailedCount)
		})

		t.Run("ListWithStatsNewestFirst", func(t *testing.T) {
			owner, err := fixtures.CreateTestRestaurant()
			require.NoError(t, err)
			first, err := fixtures.CreateTestCampaign(owner.ID, models.CampaignChannelEmail)
			require.NoError(t, err)
			second, err := fixtures.CreateTestCampaign(owner.ID, models.CampaignChannelSMS)
			require.NoError(t, err)

			rows, err := repo.ListWithStats(ctx, owner.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, second.ID, rows[0].ID)
			assert.Equal(t, first.ID, rows[1].ID)
		})

		t.Run("Count", func(t *testing.T) {
			count, err := repo.Count(ctx, models.CampaignFilter{RestaurantID: &restaurant.ID})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(1))
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(restaurant.ID, models.CampaignChannelEmail)
			require.NoError(t, err)

			err = repo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusPaused)
			require.NoError(t, err)

			updated, err := repo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, models.CampaignStatusPaused, updated.Status)
		})

		t.Run("UpdateStatusInvalid", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(restaurant.ID, models.CampaignChannelEmail)
			require.NoError(t, err)

			err = repo.UpdateStatus(ctx, campaign.ID, models.CampaignStatus("archived"))
			assert.Error(t, err)
		})

		t.Run("Delete", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(restaurant.ID, models.CampaignChannelSMS)
			require.NoError(t, err)

			diner, err := fixtures.CreateTestDiner(testingutil.DinerSpec{FirstName: "Hal", Phone: "+15125550099", ConsentSMS: true})
			require.NoError(t, err)
			_, err = fixtures.CreateTestRecipient(campaign.ID, diner.ID)
			require.NoError(t, err)

			err = repo.Delete(ctx, campaign.ID)
			require.NoError(t, err)

			deleted, err := repo.ByUUID(ctx, campaign.UUID)
			assert.NoError(t, err)
			assert.Nil(t, deleted)

			// recipient rows go with the campaign
			count, err := recipientRepo.CountByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignRecipientRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCampaignRecipientRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		restaurant, err := fixtures.CreateTestRestaurant()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(restaurant.ID, models.CampaignChannelEmail)
		require.NoError(t, err)

		diners, err := fixtures.CreateTestDiners([]testingutil.DinerSpec{
			{FirstName: "Ira", Email: "ira@example.com", ConsentEmail: true},
			{FirstName: "Jo", Email: "jo@example.com", ConsentEmail: true},
			{FirstName: "Kim", Email: "kim@example.com", ConsentEmail: true},
		})
		require.NoError(t, err)

		var recipients []*models.CampaignRecipient
		for _, d := range diners {
			r, err := fixtures.CreateTestRecipient(campaign.ID, d.ID)
			require.NoError(t, err)
			recipients = append(recipients, r)
		}

		t.Run("ByCampaignID", func(t *testing.T) {
			rows, err := repo.ByCampaignID(ctx, campaign.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			// insertion order
			for i, row := range rows {
				assert.Equal(t, recipients[i].ID, row.ID)
				assert.Equal(t, models.DeliveryStatusSimulatedSent, row.DeliveryStatus)
				assert.NotEmpty(t, row.PreviewPayload.Body)
			}
		})

		t.Run("ByCampaignIDLimit", func(t *testing.T) {
			rows, err := repo.ByCampaignID(ctx, campaign.ID, 2, 0)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, recipients[0].ID, rows[0].ID)

			rows, err = repo.ByCampaignID(ctx, campaign.ID, 2, 2)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, recipients[2].ID, rows[0].ID)
		})

		t.Run("CountByCampaignID", func(t *testing.T) {
			count, err := repo.CountByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})

		t.Run("DuplicateDinerRejected", func(t *testing.T) {
			_, err := fixtures.CreateTestRecipient(campaign.ID, diners[0].ID)
			assert.Error(t, err)
		})

		t.Run("DeleteByCampaignID", func(t *testing.T) {
			err := repo.DeleteByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)

			count, err := repo.CountByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		return nil
	})
	require.NoError(t, err)
}
