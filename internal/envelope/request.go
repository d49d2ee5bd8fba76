// Package envelope implements the {header, body} request and {.QName, ServiceData} response wrappers shared by every
// operation of the remote service.
package envelope

import (
	"encoding/json"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
)

// Header represents the request header carrying server-side directives
type Header struct {
	State  map[string]jsonvalue.Value `json:"state"`
	Policy map[string]jsonvalue.Value `json:"policy"`
}

// Request represents an outbound request envelope
type Request struct {
	Header Header `json:"header"`
	Body   any    `json:"body"`
}

// Wrap builds a new request envelope around the given body.
// The state and policy overrides are copied; both are materialized as empty objects if nil.
func Wrap(body any, state, policy map[string]jsonvalue.Value) *Request {
	return &Request{
		Header: Header{
			State:  copyDirectives(state),
			Policy: copyDirectives(policy),
		},
		Body: body,
	}
}

// MarshalJSON always writes both header keys as objects.
// The remote parser treats a missing or null state/policy differently from an empty one.
func (header Header) MarshalJSON() ([]byte, error) {
	type plain Header
	return json.Marshal(plain{
		State:  copyDirectives(header.State),
		Policy: copyDirectives(header.Policy),
	})
}

// Marshal encodes the envelope. A nil body is written as an empty object.
func (request *Request) Marshal() ([]byte, error) {
	body := request.Body
	if body == nil {
		body = struct{}{}
	}
	return json.Marshal(&Request{
		Header: request.Header,
		Body:   body,
	})
}

func copyDirectives(directives map[string]jsonvalue.Value) map[string]jsonvalue.Value {
	copied := make(map[string]jsonvalue.Value, len(directives))
	for key, val := range directives {
		copied[key] = val
	}
	return copied
}
