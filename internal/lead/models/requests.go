package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxBodyBytes caps the size of a submission body.
const MaxBodyBytes = 64 << 10

// ErrMalformedBody is returned when the body is not a single JSON object.
var ErrMalformedBody = errors.New("malformed submission body")

// DecodeSubmission reads one JSON object from r. Numbers are kept as
// json.Number so team sizes are parsed without float rounding.
func DecodeSubmission(r io.Reader) (Submission, error) {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes+1))
	dec.UseNumber()

	var sub Submission
	if err := dec.Decode(&sub); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: body is null", ErrMalformedBody)
	}
	if dec.InputOffset() > MaxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, MaxBodyBytes)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedBody)
	}
	return sub, nil
}
