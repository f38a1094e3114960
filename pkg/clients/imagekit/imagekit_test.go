package imagekit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSigner(privateKey, token string, expire time.Time) *Signer {
	signer := NewSigner("public", privateKey, "https://ik.imagekit.io/home", time.Nanosecond)
	signer.now = func() time.Time { return expire.Add(-time.Nanosecond) }
	signer.newToken = func() string { return token }
	return signer
}

func TestAuthenticate_KnownVector(t *testing.T) {
	expire := time.Unix(1655379249, 0)

	params, err := fixedSigner("private_key_test", "your_token", expire).Authenticate()
	require.NoError(t, err)
	assert.Equal(t, "your_token", params.Token)
	assert.Equal(t, int64(1655379249), params.Expire)
	assert.Equal(t, "239f84d664cd64492ebf366e2c8a1cbe529dac74", params.Signature)

	later, err := fixedSigner("private_key_test", "your_token", expire.Add(time.Second)).Authenticate()
	require.NoError(t, err)
	assert.NotEqual(t, params.Signature, later.Signature)

	otherKey, err := fixedSigner("other", "your_token", expire).Authenticate()
	require.NoError(t, err)
	assert.NotEqual(t, params.Signature, otherKey.Signature)
}

func TestAuthenticate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	signer := NewSigner("public", "private", "https://ik.imagekit.io/home", 0)
	signer.now = func() time.Time { return now }

	params, err := signer.Authenticate()
	require.NoError(t, err)

	_, err = uuid.Parse(params.Token)
	assert.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), params.Expire)
	assert.Len(t, params.Signature, 40)
	assert.Equal(t, "public", params.PublicKey)
	assert.Equal(t, "https://ik.imagekit.io/home", params.URLEndpoint)

	again := fixedSigner("private", params.Token, time.Unix(params.Expire, 0))
	replay, err := again.Authenticate()
	require.NoError(t, err)
	assert.Equal(t, params.Signature, replay.Signature)
}

func TestAuthenticate_TokensAreUnique(t *testing.T) {
	signer := NewSigner("", "private", "", time.Minute)

	first, err := signer.Authenticate()
	require.NoError(t, err)
	second, err := signer.Authenticate()
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestAuthenticate_NotConfigured(t *testing.T) {
	_, err := NewSigner("public", "", "", time.Minute).Authenticate()
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilSigner *Signer
	assert.False(t, nilSigner.Configured())
}
