package models

import "regexp"

// ContactKind is the outcome of classifying the free-text contact field.
type ContactKind int

const (
	ContactInvalid ContactKind = iota
	ContactEmail
	ContactPhone
)

func (k ContactKind) String() string {
	switch k {
	case ContactEmail:
		return "email"
	case ContactPhone:
		return "phone"
	default:
		return "invalid"
	}
}

// RE2's \s is ASCII-only, so the space classes also list \v, the Unicode
// separators and the BOM.
var (
	emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	phonePattern = regexp.MustCompile(`^[\d+\-\s\v\p{Z}\x{FEFF}()]{9,20}$`)
)

// Classify decides whether an already trimmed contact is an email or a phone
// number. Email wins when both shapes match.
func Classify(contact string) ContactKind {
	switch {
	case emailPattern.MatchString(contact):
		return ContactEmail
	case phonePattern.MatchString(contact):
		return ContactPhone
	default:
		return ContactInvalid
	}
}
