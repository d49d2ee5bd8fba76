// Package failure defines the failure taxonomy shared by every call made against the remote service.
// Callers branch on the Kind of a returned *Error rather than on its message.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents the category of a failure
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidEndpoint
	KindNotAuthenticated
	KindTransport
	KindHTTPStatus
	KindDecode
	KindServerReported
	KindSessionNotEstablished
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindInvalidEndpoint:       "invalidEndpoint",
	KindNotAuthenticated:      "notAuthenticated",
	KindTransport:             "transport",
	KindHTTPStatus:            "httpStatus",
	KindDecode:                "decode",
	KindServerReported:        "serverReported",
	KindSessionNotEstablished: "sessionNotEstablished",
}

func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(kind))
}

// Error represents a single failed call
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int
	Message  string
	Wrapping error
}

var (
	ErrInvalidEndpoint       = &Error{Kind: KindInvalidEndpoint, Message: "the endpoint address is malformed"}
	ErrNotAuthenticated      = &Error{Kind: KindNotAuthenticated, Message: "no session has been established"}
	ErrTransport             = &Error{Kind: KindTransport, Message: "the request could not be transported"}
	ErrHTTPStatus            = &Error{Kind: KindHTTPStatus, Message: "the server answered with a non-2xx status"}
	ErrDecode                = &Error{Kind: KindDecode, Message: "the response does not match the expected schema"}
	ErrServerReported        = &Error{Kind: KindServerReported, Message: "the server reported an error"}
	ErrSessionNotEstablished = &Error{Kind: KindSessionNotEstablished, Message: "the login succeeded but no session token was issued"}
)

func (err *Error) Error() string {
	builder := new(strings.Builder)
	builder.WriteString(err.Kind.String())
	if err.Endpoint != "" {
		builder.WriteString(" [")
		builder.WriteString(err.Endpoint)
		builder.WriteString("]")
	}
	if err.Status != 0 {
		fmt.Fprintf(builder, " (HTTP %d)", err.Status)
	}
	if err.Message != "" {
		builder.WriteString(": ")
		builder.WriteString(err.Message)
	}
	if err.Wrapping != nil {
		builder.WriteString(": ")
		builder.WriteString(err.Wrapping.Error())
	}
	return builder.String()
}

// Unwrap returns the wrapped cause
func (err *Error) Unwrap() error {
	return err.Wrapping
}

// Is matches any *Error of the same kind, so the package-level sentinels can be used with errors.Is
func (err *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == err.Kind
}

// New creates a new failure of the given kind
func New(kind Kind, endpoint, message string) *Error {
	return &Error{
		Kind:     kind,
		Endpoint: endpoint,
		Message:  message,
	}
}

// Wrap creates a new failure of the given kind wrapping a cause
func Wrap(kind Kind, endpoint string, cause error) *Error {
	return &Error{
		Kind:     kind,
		Endpoint: endpoint,
		Wrapping: cause,
	}
}

// KindOf returns the kind of the first *Error in the chain of err or KindUnknown
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// Is reports whether err carries a failure of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
