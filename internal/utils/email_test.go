package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmailAddress(t *testing.T) {
	assert.Equal(t, "user@domain.com", ExtractEmailAddress("User Name <user@domain.com>"))
	assert.Equal(t, "user@domain.com", ExtractEmailAddress("<user@domain.com>"))
	assert.Equal(t, "user@domain.com", ExtractEmailAddress("user@domain.com"))
	assert.Equal(t, "user@domain.com", ExtractEmailAddress("  user@domain.com  "))
	assert.Equal(t, "", ExtractEmailAddress(""))
}

func TestExtractDomainFromEmail(t *testing.T) {
	assert.Equal(t, "domain.com", ExtractDomainFromEmail("user@domain.com"))
	assert.Equal(t, "domain.com", ExtractDomainFromEmail("User <user@Domain.COM>"))
	assert.Equal(t, "", ExtractDomainFromEmail("not-an-email"))
}

func TestNormalizeEmailSubject(t *testing.T) {
	assert.Equal(t, "Quick question", NormalizeEmailSubject("Re: Quick question"))
	assert.Equal(t, "Quick question", NormalizeEmailSubject("RE: re: Quick question"))
	assert.Equal(t, "Quick question", NormalizeEmailSubject("Fwd: Quick question"))
	assert.Equal(t, "Quick question", NormalizeEmailSubject("Re[2]: Quick question"))
	assert.Equal(t, "Quick question", NormalizeEmailSubject("Quick question"))
}
