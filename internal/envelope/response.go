package envelope

import (
	"encoding/json"
	"fmt"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
)

// Response holds the fields shared by every response envelope.
// Operation-specific response structures embed it.
type Response struct {
	QName       string       `json:".QName"`
	ServiceData *ServiceData `json:"ServiceData,omitempty"`
}

// ServiceData represents the server's uniform side-channel for object references, deltas and partial errors
type ServiceData struct {
	Plain         []string       `json:"plain,omitempty"`
	ModelObjects  ModelObjects   `json:"modelObjects,omitempty"`
	Updated       []string       `json:"updated,omitempty"`
	Created       []string       `json:"created,omitempty"`
	Deleted       []string       `json:"deleted,omitempty"`
	PartialErrors []PartialError `json:"partialErrors,omitempty"`
}

// Lookup returns the model object with the given UID.
// A nil ServiceData or a missing entry is reported as a miss.
func (data *ServiceData) Lookup(uid string) (*ObjectRecord, bool) {
	if data == nil || data.ModelObjects == nil {
		return nil, false
	}
	record, ok := data.ModelObjects[uid]
	if !ok || record == nil {
		return nil, false
	}
	return record, true
}

// ObjectRef represents a lightweight reference to a server object
type ObjectRef struct {
	UID       string `json:"uid" required:"true"`
	ClassName string `json:"className,omitempty"`
	Type      string `json:"type,omitempty"`
	ObjectID  string `json:"objectID,omitempty"`
}

// StableID returns the object ID of the reference and falls back to its UID
func (ref *ObjectRef) StableID() string {
	if ref.ObjectID != "" {
		return ref.ObjectID
	}
	return ref.UID
}

// ObjectRecord represents a full model object as found in ServiceData.modelObjects
type ObjectRecord struct {
	ObjectRef
	Properties map[string]PropertyValue `json:"props,omitempty"`
}

// Property returns the property value with the given name
func (record *ObjectRecord) Property(name string) (PropertyValue, bool) {
	if record == nil || record.Properties == nil {
		return PropertyValue{}, false
	}
	val, ok := record.Properties[name]
	return val, ok
}

// PropertyValue represents a possibly multi-valued property.
// A single read uses either the database or the display values, never both.
type PropertyValue struct {
	DBValues []string `json:"dbValues,omitempty"`
	UIValues []string `json:"uiValues,omitempty"`
}

// FirstUI returns the first display value
func (val PropertyValue) FirstUI() (string, bool) {
	if len(val.UIValues) == 0 {
		return "", false
	}
	return val.UIValues[0], true
}

// FirstDB returns the first database value
func (val PropertyValue) FirstDB() (string, bool) {
	if len(val.DBValues) == 0 {
		return "", false
	}
	return val.DBValues[0], true
}

// PartialError represents an error the server reported for a single input while the call as a whole succeeded
type PartialError struct {
	UID         string       `json:"uid,omitempty"`
	ClientID    string       `json:"clientId,omitempty"`
	ErrorValues []ErrorValue `json:"errorValues,omitempty"`
}

// ErrorValue represents a single server error message
type ErrorValue struct {
	Code    jsonvalue.Value `json:"code"`
	Level   jsonvalue.Value `json:"level"`
	Message string          `json:"message"`
}

// ModelObjects maps UIDs to their full model objects.
// The server sends an empty array instead of an empty object when there are no objects, and some service versions
// send a plain array of records; both are accepted.
type ModelObjects map[string]*ObjectRecord

// UnmarshalJSON decodes the model objects after inspecting the kind of the payload
func (objects *ModelObjects) UnmarshalJSON(data []byte) error {
	kind, err := jsonvalue.PeekKind(data)
	if err != nil {
		return err
	}

	switch kind {
	case jsonvalue.NullKind:
		*objects = nil
		return nil
	case jsonvalue.ObjectKind:
		decoded := map[string]*ObjectRecord{}
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
		*objects = decoded
		return nil
	case jsonvalue.ArrayKind:
		var records []*ObjectRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		decoded := make(map[string]*ObjectRecord, len(records))
		for _, record := range records {
			if record == nil || record.UID == "" {
				continue
			}
			decoded[record.UID] = record
		}
		*objects = decoded
		return nil
	}
	return fmt.Errorf("modelObjects must be an object or an array but is %s", kind)
}
