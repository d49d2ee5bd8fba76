// Package normalize flattens decoded service responses into stable domain results.
// Every function tolerates a nil ServiceData and missing side-map entries; both yield empty results, never errors.
package normalize

import (
	"github.com/skybi/soa-bridge/internal/envelope"
	"sort"
)

// Record represents a flattened model object with single-valued properties
type Record struct {
	UID        string            `json:"uid"`
	ClassName  string            `json:"class_name"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// Properties reads the first display value of every requested attribute of the object with the given UID.
// Attributes the server did not return are present with an empty value.
func Properties(data *envelope.ServiceData, uid string, attrs []string) map[string]string {
	return read(data, uid, attrs, envelope.PropertyValue.FirstUI)
}

// DatabaseProperties works like Properties but reads the first database value
func DatabaseProperties(data *envelope.ServiceData, uid string, attrs []string) map[string]string {
	return read(data, uid, attrs, envelope.PropertyValue.FirstDB)
}

func read(data *envelope.ServiceData, uid string, attrs []string, first func(envelope.PropertyValue) (string, bool)) map[string]string {
	result := make(map[string]string, len(attrs))
	record, _ := data.Lookup(uid)
	for _, attr := range attrs {
		result[attr] = ""
		if prop, ok := record.Property(attr); ok {
			if val, ok := first(prop); ok {
				result[attr] = val
			}
		}
	}
	return result
}

// Children resolves the children of a container.
// Given references are resolved against the side map in their order; references without a side-map entry are kept
// as bare records. Without references every model object except the container is a child, ordered by UID.
func Children(data *envelope.ServiceData, containerUID string, refs []envelope.ObjectRef) []*envelope.ObjectRecord {
	seen := map[string]bool{containerUID: true}
	children := []*envelope.ObjectRecord{}

	if len(refs) > 0 {
		for _, ref := range refs {
			if ref.UID == "" || seen[ref.UID] {
				continue
			}
			seen[ref.UID] = true
			if record, ok := data.Lookup(ref.UID); ok {
				children = append(children, record)
			} else {
				children = append(children, &envelope.ObjectRecord{ObjectRef: ref})
			}
		}
		return children
	}

	if data == nil {
		return children
	}
	for uid, record := range data.ModelObjects {
		if record == nil || seen[uid] {
			continue
		}
		seen[uid] = true
		children = append(children, record)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].UID < children[j].UID
	})
	return children
}

// FirstCreated returns the first element of a creation output sequence.
// An empty sequence is the regular "nothing was created" outcome.
func FirstCreated[T any](output []T) (T, bool) {
	if len(output) == 0 {
		var zero T
		return zero, false
	}
	return output[0], true
}
