// Package jsonvalue implements a self-describing JSON value used for payload positions whose shape is not modelled
// as a fixed Go structure.
package jsonvalue

import "fmt"

// Kind represents the kind of a JSON value
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

var kindNames = map[Kind]string{
	NullKind:   "Null",
	BoolKind:   "Bool",
	NumberKind: "Number",
	StringKind: "String",
	ArrayKind:  "Array",
	ObjectKind: "Object",
}

func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return "<unknown kind>"
}

// MarshalText encodes the kind as its name
func (kind Kind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

// UnmarshalText decodes a kind name
func (kind *Kind) UnmarshalText(data []byte) error {
	for candidate, name := range kindNames {
		if name == string(data) {
			*kind = candidate
			return nil
		}
	}
	return fmt.Errorf("unrecognized kind %q", data)
}

// IsContainer reports whether values of this kind hold other values
func (kind Kind) IsContainer() bool {
	return kind == ArrayKind || kind == ObjectKind
}
