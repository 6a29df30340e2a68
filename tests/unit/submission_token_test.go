package unit_test

import (
	"testing"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseSubmissionToken(t *testing.T) {
	direct := domain.ParseSubmissionToken("direct")
	assert.True(t, direct.IsDirect())
	assert.Empty(t, direct.Token())

	// Legacy kiosks send the sentinel with varying case and whitespace.
	assert.True(t, domain.ParseSubmissionToken(" DIRECT ").IsDirect())

	tokenized := domain.ParseSubmissionToken("a1b2c3")
	assert.False(t, tokenized.IsDirect())
	assert.Equal(t, "a1b2c3", tokenized.Token())

	// An absent token is tokenized-and-empty, never the direct bypass.
	empty := domain.ParseSubmissionToken("")
	assert.False(t, empty.IsDirect())
	assert.Empty(t, empty.Token())
}

func TestPhoneVariants(t *testing.T) {
	assert.Equal(t, []string{"9876543210", "919876543210"}, domain.PhoneVariants("98765 43210", "91"))
	assert.Nil(t, domain.PhoneVariants("no digits", "91"))

	// Numbers already carrying the country code also match the bare form.
	variants := domain.PhoneVariants("919876543210", "91")
	assert.Contains(t, variants, "919876543210")
	assert.Contains(t, variants, "9876543210")
}
