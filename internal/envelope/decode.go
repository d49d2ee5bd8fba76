package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"reflect"
	"strings"
)

const exceptionMarker = "Exception"

// Peek holds the fields read by the loose decoding pass
type Peek struct {
	QName   string
	Message string
	Code    jsonvalue.Value
	Level   jsonvalue.Value
}

// IsException reports whether the response is a server exception payload
func (peek *Peek) IsException() bool {
	return strings.Contains(peek.QName, exceptionMarker) || peek.Message != ""
}

// HasMarker reports whether the qualified name contains the given marker
func (peek *Peek) HasMarker(marker string) bool {
	return marker != "" && strings.Contains(peek.QName, marker)
}

// ServerFailure converts the peeked exception payload into a failure
func (peek *Peek) ServerFailure() *failure.Error {
	message := peek.Message
	if message == "" {
		message = fmt.Sprintf("unexpected response type %q", peek.QName)
	}
	return &failure.Error{
		Kind:    failure.KindServerReported,
		Message: message,
	}
}

// PeekQName performs the loose decoding pass.
// It only requires the payload to be a JSON object; every field it reads is optional.
func PeekQName(raw []byte) (*Peek, error) {
	doc, err := jsonvalue.Parse(raw)
	if err != nil {
		return nil, failure.Wrap(failure.KindDecode, "", err)
	}
	if doc.Kind() != jsonvalue.ObjectKind {
		return nil, &failure.Error{
			Kind:    failure.KindDecode,
			Message: fmt.Sprintf("expected a JSON object but got %s", doc.Kind()),
		}
	}

	peek := new(Peek)
	if qname, ok := doc.Field(".QName"); ok {
		peek.QName, _ = qname.AsString()
	}
	if message, ok := doc.Field("message"); ok {
		if text, ok := message.AsString(); ok {
			peek.Message = text
		} else if !message.IsNull() {
			peek.Message = message.String()
		}
	}
	peek.Code, _ = doc.Field("code")
	peek.Level, _ = doc.Field("level")
	return peek, nil
}

// Decode performs the strict decoding pass into an operation-specific response structure.
// Server exception payloads yield a failure.KindServerReported, everything that does not match T (including missing
// fields tagged `required:"true"`) a failure.KindDecode.
func Decode[T any](raw []byte) (*T, error) {
	peek, err := PeekQName(raw)
	if err != nil {
		return nil, err
	}
	if peek.IsException() {
		return nil, peek.ServerFailure()
	}

	target := new(T)
	if err := json.Unmarshal(raw, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &failure.Error{
				Kind:     failure.KindDecode,
				Message:  fmt.Sprintf("field '%s' could not be assigned to the required type (%s)", typeErr.Field, typeErr.Type.String()),
				Wrapping: err,
			}
		}
		return nil, failure.Wrap(failure.KindDecode, "", err)
	}

	if missing := missingRequired("", reflect.ValueOf(target)); len(missing) > 0 {
		return nil, &failure.Error{
			Kind:    failure.KindDecode,
			Message: "missing required fields: " + strings.Join(missing, ", "),
		}
	}
	return target, nil
}

// missingRequired walks a decoded value and collects the paths of every zero-valued field tagged `required:"true"`
func missingRequired(prefix string, val reflect.Value) []string {
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	var missing []string
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < typ.NumField(); i++ {
			fieldDef := typ.Field(i)
			if !fieldDef.IsExported() {
				continue
			}
			field := val.Field(i)

			path := prefix
			if !fieldDef.Anonymous {
				path = joinPath(prefix, fieldName(fieldDef))
			}
			if strings.EqualFold(fieldDef.Tag.Get("required"), "true") && field.IsZero() {
				missing = append(missing, path)
				continue
			}
			missing = append(missing, missingRequired(path, field)...)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			missing = append(missing, missingRequired(fmt.Sprintf("%s[%d]", prefix, i), val.Index(i))...)
		}
	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			missing = append(missing, missingRequired(fmt.Sprintf("%s[%v]", prefix, iter.Key().Interface()), iter.Value())...)
		}
	}
	return missing
}

func fieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	if name == "" {
		return def.Name
	}
	return name
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
