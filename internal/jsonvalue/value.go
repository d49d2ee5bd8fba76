package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

var (
	ErrTrailingData  = errors.New("unexpected data after the top-level JSON value")
	ErrInvalidNumber = errors.New("invalid JSON number literal")
)

// Value represents an immutable JSON value whose shape is not known in advance.
// The zero value is JSON null.
type Value struct {
	kind    Kind
	boolean bool
	text    string
	items   []Value
	fields  map[string]Value
}

// Null returns the JSON null value
func Null() Value {
	return Value{}
}

// Bool returns a JSON boolean value
func Bool(val bool) Value {
	return Value{kind: BoolKind, boolean: val}
}

// Int returns a JSON number value holding an integer
func Int(val int64) Value {
	return Value{kind: NumberKind, text: strconv.FormatInt(val, 10)}
}

// Float returns a JSON number value holding a floating point number
func Float(val float64) Value {
	return Value{kind: NumberKind, text: strconv.FormatFloat(val, 'g', -1, 64)}
}

// Number returns a JSON number value holding the given literal.
// The literal is validated to be a JSON number.
func Number(literal json.Number) (Value, error) {
	if !json.Valid([]byte(literal)) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, literal)
	}
	if _, err := literal.Float64(); err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, literal)
	}
	return Value{kind: NumberKind, text: literal.String()}, nil
}

// String returns a JSON string value
func String(val string) Value {
	return Value{kind: StringKind, text: val}
}

// Array returns a JSON array value holding copies of the given items
func Array(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: ArrayKind, items: copied}
}

// Object returns a JSON object value holding a copy of the given fields
func Object(fields map[string]Value) Value {
	copied := make(map[string]Value, len(fields))
	for key, val := range fields {
		copied[key] = val
	}
	return Value{kind: ObjectKind, fields: copied}
}

// Of converts an arbitrary Go value into a Value by encoding it to JSON and parsing the result
func Of(val any) (Value, error) {
	if existing, ok := val.(Value); ok {
		return existing, nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return Value{}, err
	}
	return Parse(raw)
}

// Parse parses a single JSON document.
// The kind of every value is decided by its first token, so every value is decoded exactly once.
func Parse(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	val, err := parseValue(decoder)
	if err != nil {
		return Value{}, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrTrailingData
	}
	return val, nil
}

// PeekKind returns the kind of the JSON document by inspecting its first significant byte only.
// It does not validate the document.
func PeekKind(data []byte) (Kind, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return NullKind, io.ErrUnexpectedEOF
	}
	switch trimmed[0] {
	case 'n':
		return NullKind, nil
	case 't', 'f':
		return BoolKind, nil
	case '"':
		return StringKind, nil
	case '[':
		return ArrayKind, nil
	case '{':
		return ObjectKind, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return NumberKind, nil
	}
	return NullKind, fmt.Errorf("invalid character %q at the start of a JSON value", trimmed[0])
}

func parseValue(decoder *json.Decoder) (Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return Value{}, err
	}

	switch typed := token.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(typed), nil
	case json.Number:
		return Value{kind: NumberKind, text: typed.String()}, nil
	case string:
		return String(typed), nil
	case json.Delim:
		switch typed {
		case '[':
			items := []Value{}
			for decoder.More() {
				item, err := parseValue(decoder)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := decoder.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: ArrayKind, items: items}, nil
		case '{':
			fields := map[string]Value{}
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return Value{}, fmt.Errorf("expected an object key but got %v", keyToken)
				}
				val, err := parseValue(decoder)
				if err != nil {
					return Value{}, err
				}
				fields[key] = val
			}
			if _, err := decoder.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: ObjectKind, fields: fields}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", token)
}

// Kind returns the kind of the value
func (val Value) Kind() Kind {
	return val.kind
}

// IsNull reports whether the value is JSON null
func (val Value) IsNull() bool {
	return val.kind == NullKind
}

// AsBool returns the boolean held by the value
func (val Value) AsBool() (bool, bool) {
	return val.boolean, val.kind == BoolKind
}

// AsNumber returns the number literal held by the value
func (val Value) AsNumber() (json.Number, bool) {
	if val.kind != NumberKind {
		return "", false
	}
	return json.Number(val.text), true
}

// AsInt64 returns the number held by the value if it is an integer
func (val Value) AsInt64() (int64, bool) {
	if val.kind != NumberKind {
		return 0, false
	}
	n, err := strconv.ParseInt(val.text, 10, 64)
	return n, err == nil
}

// AsFloat64 returns the number held by the value as a float
func (val Value) AsFloat64() (float64, bool) {
	if val.kind != NumberKind {
		return 0, false
	}
	f, err := strconv.ParseFloat(val.text, 64)
	return f, err == nil
}

// AsString returns the string held by the value
func (val Value) AsString() (string, bool) {
	if val.kind != StringKind {
		return "", false
	}
	return val.text, true
}

// AsArray returns a copy of the items held by the value
func (val Value) AsArray() ([]Value, bool) {
	if val.kind != ArrayKind {
		return nil, false
	}
	copied := make([]Value, len(val.items))
	copy(copied, val.items)
	return copied, true
}

// AsObject returns a copy of the fields held by the value
func (val Value) AsObject() (map[string]Value, bool) {
	if val.kind != ObjectKind {
		return nil, false
	}
	copied := make(map[string]Value, len(val.fields))
	for key, field := range val.fields {
		copied[key] = field
	}
	return copied, true
}

// Len returns the amount of items or fields of an array or object and 0 for every other kind
func (val Value) Len() int {
	switch val.kind {
	case ArrayKind:
		return len(val.items)
	case ObjectKind:
		return len(val.fields)
	default:
		return 0
	}
}

// IsEmptyContainer reports whether the value is an empty array or an empty object.
// The remote service uses both interchangeably for "nothing".
func (val Value) IsEmptyContainer() bool {
	return val.kind.IsContainer() && val.Len() == 0
}

// Index returns the item at the given index of an array
func (val Value) Index(i int) (Value, bool) {
	if val.kind != ArrayKind || i < 0 || i >= len(val.items) {
		return Value{}, false
	}
	return val.items[i], true
}

// Field returns the field with the given key of an object
func (val Value) Field(key string) (Value, bool) {
	if val.kind != ObjectKind {
		return Value{}, false
	}
	field, ok := val.fields[key]
	return field, ok
}

// Lookup follows a path of object keys
func (val Value) Lookup(path ...string) (Value, bool) {
	current := val
	for _, key := range path {
		next, ok := current.Field(key)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// Keys returns the sorted keys of an object
func (val Value) Keys() []string {
	if val.kind != ObjectKind {
		return nil
	}
	keys := make([]string, 0, len(val.fields))
	for key := range val.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both values are structurally equal.
// Numbers are compared by their numeric value.
func (val Value) Equal(other Value) bool {
	if val.kind != other.kind {
		return false
	}
	switch val.kind {
	case NullKind:
		return true
	case BoolKind:
		return val.boolean == other.boolean
	case NumberKind:
		if val.text == other.text {
			return true
		}
		a, errA := strconv.ParseFloat(val.text, 64)
		b, errB := strconv.ParseFloat(other.text, 64)
		return errA == nil && errB == nil && a == b
	case StringKind:
		return val.text == other.text
	case ArrayKind:
		if len(val.items) != len(other.items) {
			return false
		}
		for i := range val.items {
			if !val.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		if len(val.fields) != len(other.fields) {
			return false
		}
		for key, field := range val.fields {
			otherField, ok := other.fields[key]
			if !ok || !field.Equal(otherField) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes the value. Object keys are written in sorted order.
func (val Value) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := val.writeTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (val Value) writeTo(buf *bytes.Buffer) error {
	switch val.kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(val.boolean))
	case NumberKind:
		buf.WriteString(val.text)
	case StringKind:
		encoded, err := json.Marshal(val.text)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case ArrayKind:
		buf.WriteByte('[')
		for i, item := range val.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeTo(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectKind:
		buf.WriteByte('{')
		for i, key := range val.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err := val.fields[key].writeTo(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode value of kind %s", val.kind)
	}
	return nil
}

// UnmarshalJSON decodes the value using Parse
func (val *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*val = parsed
	return nil
}

// String returns the compact JSON representation of the value
func (val Value) String() string {
	raw, err := val.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(raw)
}
