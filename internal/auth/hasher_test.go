package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewHasher_RejectsOutOfRangeCost(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = NewHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	h, err := NewHasher(bcrypt.DefaultCost)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.Cost())
}

func TestHash_NeverReturnsPlaintext(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("p1")
	require.NoError(t, err)

	assert.NotEqual(t, "p1", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))
}

func TestHash_SaltsEachDigest(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHash_EmbedsConfiguredCost(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := DigestCost(digest)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHash_RejectsInvalidPasswords(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = h.Hash(strings.Repeat("x", maxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerify(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("correct horse")
	require.NoError(t, err)

	ok, err := h.Verify(digest, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(digest, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify("not-a-digest", "anything")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestVerify_DigestFromDifferentCost(t *testing.T) {
	old, err := NewHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)
	digest, err := old.Hash("legacy")
	require.NoError(t, err)

	ok, err := newTestHasher(t).Verify(digest, "legacy")
	require.NoError(t, err)
	assert.True(t, ok)
}
