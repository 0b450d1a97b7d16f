package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/hotube/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "frida@example.com", sanitizer.NormalizeEmail("  Frida@Example.COM  "))
	assert.Equal(t, "f.k@example.com", sanitizer.NormalizeEmail("f..k@example.com"))
	assert.Equal(t, "fk@example.com", sanitizer.NormalizeEmail(".fk.@example.com"))
	assert.Equal(t, "not-an-email", sanitizer.NormalizeEmail("Not-An-Email"))
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "frida", sanitizer.NormalizeUsername("  Frida "))
}

func TestTrimText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Oslo", sanitizer.TrimText("  Oslo \n"))
	assert.Empty(t, sanitizer.TrimText("   "))
}
