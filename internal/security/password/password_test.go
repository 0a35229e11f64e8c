package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/bookshelf-api/internal/security/password"
)

var fast = password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	h := password.NewHasher(fast)

	phc, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(phc, "$argon2id$"))

	ok, rehash, err := h.Verify("correct horse", phc)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _, err = h.Verify("wrong horse", phc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNeedsRehashOnStrongerPolicy(t *testing.T) {
	phc, err := password.NewHasher(fast).Hash("correct horse")
	require.NoError(t, err)

	stronger := fast
	stronger.Iterations = 2
	assert.True(t, password.NewHasher(stronger).NeedsRehash(phc))
	assert.True(t, password.NewHasher(fast).NeedsRehash("not-a-phc"))
}

func TestValidate(t *testing.T) {
	got, err := password.Validate("  hunter22  ")
	require.NoError(t, err)
	assert.Equal(t, "hunter22", got)

	_, err = password.Validate("short")
	assert.ErrorIs(t, err, password.ErrTooShort)

	_, err = password.Validate(strings.Repeat("x", password.MaxLen+1))
	assert.ErrorIs(t, err, password.ErrTooLong)
}
