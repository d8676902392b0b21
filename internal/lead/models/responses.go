package models

import "leadgate/pkg/platform/httputil"

// Client-facing messages. None of them carries internal detail.
const (
	MsgAccepted    = "Submission received successfully."
	MsgRateLimited = "You have exceeded the allowed number of submissions."
	MsgInternal    = httputil.MsgInternalError
)

// SubmitResponse is the body for 200, 429 and 500 responses.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the body for 400 responses.
type ValidationErrorResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}
