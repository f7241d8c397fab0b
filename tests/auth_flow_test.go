// Package tests contains tests for identity lookup flow
package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/app/services"
	businessflow "github.com/tavolo/tavolo/business_flow"
)

func TestAuthFlowCheckEmail(t *testing.T) {
	ctx := context.Background()
	metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

	t.Run("RegisteredConfirmedEmail", func(t *testing.T) {
		identity := &services.MockIdentityService{
			ExistingEmails:  map[string]bool{"owner@tavolo.app": true},
			ConfirmedEmails: map[string]bool{"owner@tavolo.app": true},
		}
		flow := businessflow.NewAuthFlow(identity)

		resp, err := flow.CheckEmail(ctx, &dto.CheckEmailRequest{Email: "owner@tavolo.app"}, metadata)
		require.NoError(t, err)
		assert.True(t, resp.Registered)
		require.NotNil(t, resp.Confirmed)
		assert.True(t, *resp.Confirmed)
	})

	t.Run("RegisteredUnconfirmedEmail", func(t *testing.T) {
		identity := &services.MockIdentityService{
			ExistingEmails: map[string]bool{"owner@tavolo.app": true},
		}
		flow := businessflow.NewAuthFlow(identity)

		resp, err := flow.CheckEmail(ctx, &dto.CheckEmailRequest{Email: "owner@tavolo.app"}, metadata)
		require.NoError(t, err)
		assert.True(t, resp.Registered)
		require.NotNil(t, resp.Confirmed)
		assert.False(t, *resp.Confirmed)
	})

	t.Run("EmailNormalized", func(t *testing.T) {
		identity := &services.MockIdentityService{
			ExistingEmails: map[string]bool{"owner@tavolo.app": true},
		}
		flow := businessflow.NewAuthFlow(identity)

		resp, err := flow.CheckEmail(ctx, &dto.CheckEmailRequest{Email: "  Owner@Tavolo.App  "}, metadata)
		require.NoError(t, err)
		assert.True(t, resp.Registered)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		flow := businessflow.NewAuthFlow(&services.MockIdentityService{})

		resp, err := flow.CheckEmail(ctx, &dto.CheckEmailRequest{Email: "new@tavolo.app"}, metadata)
		require.NoError(t, err)
		assert.False(t, resp.Registered)
		assert.Nil(t, resp.Confirmed)
	})

	t.Run("ProviderFailureDegradesToUnregistered", func(t *testing.T) {
		identity := &services.MockIdentityService{Err: errors.New("connection refused")}
		flow := businessflow.NewAuthFlow(identity)

		resp, err := flow.CheckEmail(ctx, &dto.CheckEmailRequest{Email: "owner@tavolo.app"}, metadata)
		require.NoError(t, err)
		assert.False(t, resp.Registered)
		assert.Nil(t, resp.Confirmed)
	})
}
