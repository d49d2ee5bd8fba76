package schema

import (
	"github.com/skybi/soa-bridge/internal/failure"
)

var emptyMap = map[string]interface{}{}

var (
	ErrInternal = &Error{
		Type:    "generic.internal",
		Message: "An internal error occurred.",
		Details: emptyMap,
	}
	ErrNotFound = &Error{
		Type:    "generic.notFound",
		Message: "Resource not found.",
		Details: emptyMap,
	}
	ErrMethodNotAllowed = &Error{
		Type:    "generic.methodNotAllowed",
		Message: "Method not allowed.",
		Details: emptyMap,
	}
	ErrItemNotCreated = &Error{
		Type:    "bridge.item.notCreated",
		Message: "The remote service did not create the item.",
		Details: emptyMap,
	}
	ErrLoginRejected = func(reason string) *Error {
		return &Error{
			Type:    "bridge.session.loginRejected",
			Message: "The remote service rejected the login.",
			Details: map[string]interface{}{
				"reason": reason,
			},
		}
	}
)

// ErrorResponse represents the response structure sent by the bridge API whenever errors occurred
type ErrorResponse struct {
	Status int      `json:"status"`
	Errors []*Error `json:"errors"`
}

// Error represents a single error present in the ErrorResponse
type Error struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

// FromFailure converts a failed call against the remote service into an Error of the type 'soa.<kind>'
func FromFailure(fail *failure.Error) *Error {
	details := map[string]interface{}{
		"kind": fail.Kind.String(),
	}
	if fail.Endpoint != "" {
		details["endpoint"] = fail.Endpoint
	}
	if fail.Status != 0 {
		details["status"] = fail.Status
	}
	return &Error{
		Type:    "soa." + fail.Kind.String(),
		Message: fail.Error(),
		Details: details,
	}
}
