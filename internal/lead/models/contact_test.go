package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		want    ContactKind
	}{
		{"plain email", "ana@acme.com", ContactEmail},
		{"email with plus", "ana+leads@acme.co.uk", ContactEmail},
		{"international phone", "+34 600 123 456", ContactPhone},
		{"phone with parens and dashes", "(555) 123-4567", ContactPhone},
		{"nine digits", "123456789", ContactPhone},
		{"twenty characters", "+1 (555) 123-4567 89", ContactPhone},
		{"eight digits too short", "12345678", ContactInvalid},
		{"twenty one characters too long", "123456789012345678901", ContactInvalid},
		{"letters in phone", "555-CALL-NOW", ContactInvalid},
		{"missing domain dot", "ana@acme", ContactInvalid},
		{"space inside email", "ana @acme.com", ContactInvalid},
		{"two at signs", "a@b@c.com", ContactInvalid},
		{"empty", "", ContactInvalid},
		{"free text", "not-a-contact", ContactInvalid},
		{"no-break space inside email", "ana\u00a0x@acme.com", ContactInvalid},
		{"em space inside email", "ana\u2003x@acme.com", ContactInvalid},
		{"vertical tab inside email", "ana\vx@acme.com", ContactInvalid},
		{"byte order mark inside email", "ana\ufeffx@acme.com", ContactInvalid},
		{"phone with no-break spaces", "600\u00a0123\u00a0456", ContactPhone},
		{"phone with narrow no-break spaces", "+34\u202f600\u202f123\u202f456", ContactPhone},
		{"phone with vertical tab", "600\v123\v456", ContactPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contact))
		})
	}
}

func TestClassify_EmailWinsOverPhone(t *testing.T) {
	// Digits on both sides of the @ still classify as email.
	contact := "600123456@1.1"
	assert.Equal(t, ContactEmail, Classify(contact))
	assert.NotEqual(t, ContactPhone, Classify(contact))
}

func TestClassify_Idempotent(t *testing.T) {
	for _, contact := range []string{"ana@acme.com", "+34 600 123 456", "nope"} {
		first := Classify(contact)
		assert.Equal(t, first, Classify(contact), contact)
	}
}

func TestContactKindString(t *testing.T) {
	assert.Equal(t, "email", ContactEmail.String())
	assert.Equal(t, "phone", ContactPhone.String())
	assert.Equal(t, "invalid", ContactInvalid.String())
}
