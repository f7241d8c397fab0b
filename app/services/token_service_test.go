// Package services provides external service integrations and technical concerns like tokens and AI copy generation
package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

// generateTestPublicKeyPEM builds a PEM encoded RSA public key
func generateTestPublicKeyPEM(t *testing.T) string {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicKeyBytes,
	}))
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name           string
		accessTokenTTL time.Duration
		issuer         string
		audience       string
		useRSAKeys     bool
		publicKeyPEM   string
		secretKey      string
		expectError    bool
	}{
		{
			name:           "valid symmetric key configuration",
			accessTokenTTL: 15 * time.Minute,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     false,
			secretKey:      "test-secret-key-for-jwt-signing-32-chars",
			expectError:    false,
		},
		{
			name:           "missing secret key",
			accessTokenTTL: 15 * time.Minute,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     false,
			secretKey:      "",
			expectError:    true,
		},
		{
			name:           "rsa without public key",
			accessTokenTTL: 15 * time.Minute,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     true,
			publicKeyPEM:   "",
			expectError:    true,
		},
		{
			name:           "rsa with malformed public key",
			accessTokenTTL: 15 * time.Minute,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     true,
			publicKeyPEM:   "not a pem block",
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				tt.accessTokenTTL,
				tt.issuer,
				tt.audience,
				tt.useRSAKeys,
				tt.publicKeyPEM,
				tt.secretKey,
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestNewTokenServiceRSA(t *testing.T) {
	service, err := NewTokenService(
		15*time.Minute,
		"test-issuer",
		"test-audience",
		true,
		generateTestPublicKeyPEM(t),
		"",
	)
	require.NoError(t, err)
	require.NotNil(t, service)

	t.Run("IssuanceDisabled", func(t *testing.T) {
		_, err := service.GenerateToken("subject", "owner@tavolo.app")
		assert.Error(t, err)
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	token, err := service.GenerateToken("f6f1c283-7100-4d04-9929-24c4a0b2f1f3", "owner@tavolo.app")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims)

	assert.Equal(t, "f6f1c283-7100-4d04-9929-24c4a0b2f1f3", claims.Subject)
	assert.Equal(t, "owner@tavolo.app", claims.Email)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateTokenErrors(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("EmptyToken", func(t *testing.T) {
		_, err := service.ValidateToken("")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		token, err := service.GenerateToken("subject", "owner@tavolo.app")
		require.NoError(t, err)

		_, err = service.ValidateToken(token + "x")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("WrongSigningKey", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute,
			"test-issuer",
			"test-audience",
			false,
			"",
			"a-completely-different-signing-secret",
		)
		require.NoError(t, err)

		token, err := other.GenerateToken("subject", "owner@tavolo.app")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		expiring, err := NewTokenService(
			-1*time.Minute,
			"test-issuer",
			"test-audience",
			false,
			"",
			"test-secret-key-for-jwt-signing-32-chars",
		)
		require.NoError(t, err)

		token, err := expiring.GenerateToken("subject", "owner@tavolo.app")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}
