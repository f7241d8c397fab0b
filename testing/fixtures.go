// Package testing provides test utilities and database setup for testing the marketing system
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestRestaurant creates a restaurant owned by a fresh identity user
func (tf *TestFixtures) CreateTestRestaurant() (*models.Restaurant, error) {
	restaurant := &models.Restaurant{
		OwnerUserID: uuid.New(),
		Name:        fmt.Sprintf("Trattoria %d", rand.Intn(10000000)),
		Cuisine:     utils.ToPtr("Italian"),
		City:        utils.ToPtr("Austin"),
		State:       utils.ToPtr("TX"),
	}

	err := tf.DB.DB.Create(restaurant).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test restaurant: %w", err)
	}

	return restaurant, nil
}

// DinerSpec describes one diner row to seed
type DinerSpec struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	City         string
	State        string
	Interests    []string
	Seniority    string
	ConsentEmail bool
	ConsentSMS   bool
}

// CreateTestDiner seeds one diner row. Empty fields stay NULL so tests can
// exercise missing-contact and missing-name paths.
func (tf *TestFixtures) CreateTestDiner(spec DinerSpec) (*models.Diner, error) {
	diner := &models.Diner{
		Interests:    pq.StringArray(spec.Interests),
		Seniority:    spec.Seniority,
		ConsentEmail: spec.ConsentEmail,
		ConsentSMS:   spec.ConsentSMS,
	}
	if diner.Seniority == "" {
		diner.Seniority = models.SeniorityNew
	}
	if diner.Interests == nil {
		diner.Interests = pq.StringArray{}
	}
	if spec.FirstName != "" {
		diner.FirstName = utils.ToPtr(spec.FirstName)
	}
	if spec.LastName != "" {
		diner.LastName = utils.ToPtr(spec.LastName)
	}
	if spec.Email != "" {
		diner.Email = utils.ToPtr(spec.Email)
	}
	if spec.Phone != "" {
		diner.Phone = utils.ToPtr(spec.Phone)
	}
	if spec.City != "" {
		diner.City = utils.ToPtr(spec.City)
	}
	if spec.State != "" {
		diner.State = utils.ToPtr(spec.State)
	}

	err := tf.DB.DB.Create(diner).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test diner: %w", err)
	}

	return diner, nil
}

// CreateTestDiners seeds a batch of diners and returns them in insert order
func (tf *TestFixtures) CreateTestDiners(specs []DinerSpec) ([]*models.Diner, error) {
	var diners []*models.Diner
	for i, spec := range specs {
		diner, err := tf.CreateTestDiner(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create diner %d: %w", i, err)
		}
		diners = append(diners, diner)
	}
	return diners, nil
}

// CreateTestCampaign creates a campaign for a restaurant
func (tf *TestFixtures) CreateTestCampaign(restaurantID uint, channel models.CampaignChannel) (*models.Campaign, error) {
	campaign := &models.Campaign{
		RestaurantID: restaurantID,
		Name:         fmt.Sprintf("Campaign %d", rand.Intn(10000000)),
		Channel:      channel,
		Status:       models.CampaignStatusActive,
		Body:         "Hi {FirstName}! Come visit us this weekend.",
	}
	if channel == models.CampaignChannelEmail {
		campaign.Subject = utils.ToPtr("A table is waiting for you")
	}

	err := tf.DB.DB.Create(campaign).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestRecipient creates one materialized recipient row
func (tf *TestFixtures) CreateTestRecipient(campaignID, dinerID uint) (*models.CampaignRecipient, error) {
	recipient := &models.CampaignRecipient{
		CampaignID:     campaignID,
		DinerID:        dinerID,
		DeliveryStatus: models.DeliveryStatusSimulatedSent,
		PreviewPayload: models.PreviewPayload{
			Channel:       string(models.CampaignChannelEmail),
			Body:          "Hi Ada! Come visit us this weekend.",
			RecipientName: "Ada Alvarez",
			SentAt:        utils.UTCNowRFC3339(),
		},
	}

	err := tf.DB.DB.Create(recipient).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test recipient: %w", err)
	}

	return recipient, nil
}
