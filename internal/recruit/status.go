// Package recruit contains the business logic for job postings and the
// application lifecycle. It is transport-agnostic: the HTTP handler lives in
// handler.go and delegates everything here.
package recruit

import "strings"

// Known application statuses. The status column is free text by contract —
// operators may write any value — these four are the ones the admin UI
// presents. There is deliberately no transition validation: any status may
// overwrite any other, and concurrent writes are last-write-wins.
const (
	StatusSubmitted = "Submitted"
	StatusInterview = "Interview"
	StatusHired     = "Hired"
	StatusRejected  = "Rejected"
)

var canonicalStatus = map[string]string{
	"submitted": StatusSubmitted,
	"interview": StatusInterview,
	"hired":     StatusHired,
	"rejected":  StatusRejected,
}

// NormalizeStatus trims the input, canonicalises the casing of the four known
// statuses and passes any other non-empty value through verbatim.
func NormalizeStatus(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &ValidationError{Msg: "status must not be empty"}
	}
	if c, ok := canonicalStatus[strings.ToLower(trimmed)]; ok {
		return c, nil
	}
	return trimmed, nil
}
