// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavolo/tavolo/models"
	"github.com/tavolo/tavolo/utils"
)

func TestCampaignChannel(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, models.CampaignChannelEmail.Valid())
		assert.True(t, models.CampaignChannelSMS.Valid())
		assert.False(t, models.CampaignChannel("push").Valid())
		assert.False(t, models.CampaignChannel("").Valid())
	})

	t.Run("ValueRejectsUnknownChannel", func(t *testing.T) {
		_, err := models.CampaignChannel("push").Value()
		assert.Error(t, err)

		v, err := models.CampaignChannelEmail.Value()
		require.NoError(t, err)
		assert.Equal(t, "email", v)
	})

	t.Run("Scan", func(t *testing.T) {
		var channel models.CampaignChannel
		require.NoError(t, channel.Scan("sms"))
		assert.Equal(t, models.CampaignChannelSMS, channel)

		require.NoError(t, channel.Scan([]byte("email")))
		assert.Equal(t, models.CampaignChannelEmail, channel)

		require.NoError(t, channel.Scan(nil))
		assert.Equal(t, models.CampaignChannel(""), channel)

		assert.Error(t, channel.Scan(42))
	})
}

func TestCampaignStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, status := range []models.CampaignStatus{
			models.CampaignStatusActive,
			models.CampaignStatusPaused,
			models.CampaignStatusStopped,
		} {
			assert.True(t, status.Valid(), status.String())
		}
		assert.False(t, models.CampaignStatus("archived").Valid())
	})

	t.Run("ValueRejectsUnknownStatus", func(t *testing.T) {
		_, err := models.CampaignStatus("archived").Value()
		assert.Error(t, err)
	})
}

func TestDeliveryStatus(t *testing.T) {
	assert.True(t, models.DeliveryStatusSimulatedSent.Valid())
	assert.True(t, models.DeliveryStatusSimulatedFailed.Valid())
	assert.False(t, models.DeliveryStatus("bounced").Valid())

	var status models.DeliveryStatus
	require.NoError(t, status.Scan("simulated_sent"))
	assert.Equal(t, models.DeliveryStatusSimulatedSent, status)
}

func TestAudienceFilterScan(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		original := models.AudienceFilter{
			City:      utils.ToPtr("Austin"),
			State:     utils.ToPtr("TX"),
			Interests: []string{"bbq", "tacos"},
			Match:     models.MatchAll,
			Seniority: []string{models.SeniorityLoyal},
		}

		value, err := original.Value()
		require.NoError(t, err)

		var decoded models.AudienceFilter
		require.NoError(t, decoded.Scan(value))
		assert.Equal(t, original, decoded)
	})

	t.Run("NilBecomesEmpty", func(t *testing.T) {
		decoded := models.AudienceFilter{City: utils.ToPtr("Dallas")}
		require.NoError(t, decoded.Scan(nil))
		assert.Nil(t, decoded.City)
	})

	t.Run("ScanString", func(t *testing.T) {
		var decoded models.AudienceFilter
		require.NoError(t, decoded.Scan(`{"state":"OR"}`))
		require.NotNil(t, decoded.State)
		assert.Equal(t, "OR", *decoded.State)
	})
}

func TestPreviewPayloadScan(t *testing.T) {
	original := models.PreviewPayload{
		Channel:       "email",
		Subject:       utils.ToPtr("Hello Ada"),
		Body:          "Hi Ada! Come by this weekend.",
		RecipientName: "Ada Alvarez",
		SentAt:        utils.UTCNowRFC3339(),
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded models.PreviewPayload
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)

	assert.Error(t, decoded.Scan(42))
}

func TestSeniority(t *testing.T) {
	for _, s := range models.ValidSeniorities {
		assert.True(t, models.IsValidSeniority(s), s)
	}
	assert.False(t, models.IsValidSeniority("vip"))
	assert.False(t, models.IsValidSeniority(""))
}
