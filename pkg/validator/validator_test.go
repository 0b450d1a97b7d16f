package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hotube/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.Required("username", "frida"),
			validator.ValidEmail("email", "frida@example.com"),
			validator.MinLength("password", "abc123", 6),
		)
		require.NoError(t, err)
	})

	t.Run("collects every failing rule", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.Required("username", ""),
			validator.ValidEmail("email", "nope"),
		)
		require.Error(t, err)

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 2)
		assert.True(t, ve.Has("username"))
		assert.True(t, ve.Has("email"))
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "user.name+tag@example.com"}
	for _, e := range valid {
		assert.NoError(t, validator.Apply(validator.ValidEmail("email", e)), e)
	}

	invalid := []string{"", "plain", "missing@tld", "@example.com"}
	for _, e := range invalid {
		assert.Error(t, validator.Apply(validator.ValidEmail("email", e)), e)
	}
}

func TestLengthRules(t *testing.T) {
	t.Parallel()

	assert.Error(t, validator.Apply(validator.MinLength("password", "abc", 6)))
	assert.Error(t, validator.Apply(validator.MaxLength("title", "very long title", 5)))
	assert.NoError(t, validator.Apply(validator.MaxLength("title", "short", 5)))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.Matches("password2", "abc123", "abc123")))
	assert.Error(t, validator.Apply(validator.Matches("password2", "abc123", "abc124")))
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.ExtractValidationErrors(nil).IsEmpty())
	assert.True(t, validator.ExtractValidationErrors(assert.AnError).IsEmpty())
}
