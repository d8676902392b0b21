package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the raw, untrusted JSON object posted by the form.
type Submission map[string]any

// NormalizedSubmission is a validated lead. Exactly one of Email and Phone is set.
type NormalizedSubmission struct {
	Name      string  `json:"name"`
	Company   string  `json:"company"`
	TeamSize  int     `json:"team_size"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IPAddress string  `json:"ip_address"`
}

// WithIP returns a copy of n attributed to the given origin address.
func (n NormalizedSubmission) WithIP(ip string) NormalizedSubmission {
	n.IPAddress = ip
	return n
}

// Contact returns whichever contact method is set.
func (n NormalizedSubmission) Contact() (ContactKind, string) {
	switch {
	case n.Email != nil:
		return ContactEmail, *n.Email
	case n.Phone != nil:
		return ContactPhone, *n.Phone
	default:
		return ContactInvalid, ""
	}
}

// Record is a stored submission. Records are never updated or deleted.
type Record struct {
	ID uuid.UUID `json:"id"`
	NormalizedSubmission
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord assigns identity and creation time to a submission.
func NewRecord(sub NormalizedSubmission, now time.Time) *Record {
	return &Record{
		ID:                   uuid.New(),
		NormalizedSubmission: sub,
		CreatedAt:            now.UTC(),
	}
}
