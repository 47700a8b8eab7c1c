package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	valid := []string{
		"test@example.com",
		"user.name@domain.co.uk",
		"first+tag@sub.domain.io",
		"a_b%c-d@host-name.org",
	}
	for _, addr := range valid {
		assert.True(t, IsValidAddress(addr), addr)
	}

	invalid := []string{
		"not-an-email",
		"@domain.com",
		"user@",
		"user@domain",
		"user@domain.c",
		"",
		"user @domain.com",
	}
	for _, addr := range invalid {
		assert.False(t, IsValidAddress(addr), addr)
	}
}

func TestNewRecipientNameDefaulting(t *testing.T) {
	r := NewRecipient("alice@example.com", "")
	assert.Equal(t, "alice", r.Name)

	r = NewRecipient("alice@example.com", "Alice A.")
	assert.Equal(t, "Alice A.", r.Name)
}

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "bob", LocalPart("bob@example.com"))
	assert.Equal(t, "no-at-sign", LocalPart("no-at-sign"))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "Jo Doe <jo@example.com>", FormatAddress("Jo Doe", "jo@example.com"))
	assert.Equal(t, "jo@example.com", FormatAddress("", "jo@example.com"))
}
