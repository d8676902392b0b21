package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field limits.
const (
	MaxTextLength = 100
	MinTeamSize   = 1
	MaxTeamSize   = 5000
)

// Validation messages, appended in this order.
const (
	ErrMsgName     = "Name is invalid or exceeds 100 characters."
	ErrMsgCompany  = "Company name is invalid or exceeds 100 characters."
	ErrMsgTeamSize = "Team size must be between 1 and 5000."
	ErrMsgContact  = "Contact must be a valid email or phone number."
)

// Validate checks every rule and reports all violations at once. On success the
// returned submission has no IPAddress; the caller attaches it.
func Validate(sub Submission) (NormalizedSubmission, []string) {
	var errs []string
	var out NormalizedSubmission

	name, ok := textField(sub, "name")
	if !ok {
		errs = append(errs, ErrMsgName)
	}
	out.Name = name

	company, ok := textField(sub, "company")
	if !ok {
		errs = append(errs, ErrMsgCompany)
	}
	out.Company = company

	teamSize, ok := ParseTeamSize(sub["team_size"])
	if !ok || teamSize < MinTeamSize || teamSize > MaxTeamSize {
		errs = append(errs, ErrMsgTeamSize)
	}
	out.TeamSize = teamSize

	contact, _ := sub["contact"].(string)
	contact = strings.TrimSpace(contact)
	switch Classify(contact) {
	case ContactEmail:
		out.Email = &contact
	case ContactPhone:
		out.Phone = &contact
	default:
		errs = append(errs, ErrMsgContact)
	}

	if len(errs) > 0 {
		return NormalizedSubmission{}, errs
	}
	return out, nil
}

func textField(sub Submission, key string) (string, bool) {
	s, ok := sub[key].(string)
	if !ok || s == "" || utf8.RuneCountInString(s) > MaxTextLength {
		return "", false
	}
	return s, true
}

// ParseTeamSize accepts a decimal string (surrounding whitespace allowed) or
// an integral JSON number, including forms like 12.0 and 1e2. Partial
// numerics such as "12abc" and fractions such as 12.5 are rejected.
func ParseTeamSize(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case json.Number:
		if n, err := strconv.Atoi(t.String()); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(t)
	case int:
		return t, true
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
