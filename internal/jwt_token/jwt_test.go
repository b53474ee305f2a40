package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certledger/pkg/domain-errors"
)

func TestGenerateAndResolve(t *testing.T) {
	svc := NewJWTService("test-signing-key", "certledger")

	token, err := svc.GenerateToken("0xissuer", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.ResolveIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "0xissuer", identity)
}

func TestResolveExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "certledger")

	token, err := svc.GenerateToken("0xissuer", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ResolveIdentity(token)
	require.Error(t, err)
	assert.EqualError(t, err, "token has expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestResolveWrongKey(t *testing.T) {
	minter := NewJWTService("key-one", "certledger")
	verifier := NewJWTService("key-two", "certledger")

	token, err := minter.GenerateToken("0xissuer", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ResolveIdentity(token)
	require.Error(t, err)
	assert.EqualError(t, err, "invalid token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestResolveGarbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "certledger")

	_, err := svc.ResolveIdentity("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
