package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Wrap(KindTransport, "Core-2011-06-Session/login", errors.New("connection refused"))

	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrDecode))
	assert.True(t, Is(fmt.Errorf("outer: %w", err), KindTransport))
	assert.Equal(t, KindTransport, KindOf(fmt.Errorf("outer: %w", err)))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Kind:     KindHTTPStatus,
		Endpoint: "Query-2012-10-Finder/performSearch",
		Status:   502,
		Message:  "bad gateway",
	}
	assert.Equal(t, "httpStatus [Query-2012-10-Finder/performSearch] (HTTP 502): bad gateway", err.Error())

	wrapped := Wrap(KindDecode, "", errors.New("unexpected end of JSON input"))
	assert.Equal(t, "decode: unexpected end of JSON input", wrapped.Error())
	assert.Equal(t, "unexpected end of JSON input", errors.Unwrap(wrapped).Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "sessionNotEstablished", KindSessionNotEstablished.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
