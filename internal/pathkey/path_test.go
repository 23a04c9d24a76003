package pathkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"users",
		"users/alice",
		"users/alice/orders/42",
		"a-b_c/D9",
	}
	for _, p := range valid {
		assert.NoErrorf(t, Validate(p), "expected %q to be valid", p)
	}

	invalid := []string{
		"",
		"/users",
		"users/",
		"users//alice",
		"users/al ice",
		"users/al.ice",
		strings.Repeat("a", MaxLength+1),
	}
	for _, p := range invalid {
		assert.Errorf(t, Validate(p), "expected %q to be invalid", p)
	}
}

func TestValidateNeverPanics(t *testing.T) {
	weird := []string{"/", "//", "a//", "//a", string([]byte{0, 1, 2})}
	for _, p := range weird {
		require.NotPanics(t, func() { _ = Validate(p) })
	}
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"users", "alice", "orders", "42"}, Segments("users/alice/orders/42"))
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("users/alice", "users"))
	assert.True(t, HasPrefix("users", "users"))
	assert.False(t, HasPrefix("users2", "users"))
	assert.False(t, HasPrefix("userset/al", "users"))
}
