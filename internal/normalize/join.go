package normalize

import (
	"github.com/skybi/soa-bridge/internal/envelope"
)

// Joined represents a reference projected through its side-map record
type Joined struct {
	ID        string            `json:"id"`
	UID       string            `json:"uid"`
	ClassName string            `json:"class_name"`
	Type      string            `json:"type"`
	Fields    map[string]string `json:"fields"`
}

// Projection defines which display values a join reads.
// A reference lacking any Required attribute is skipped; Optional attributes default to an empty value.
type Projection struct {
	Required []string
	Optional []string
}

// Join looks up every reference in the side map and projects the requested attributes.
// References without a side-map entry are skipped. The identifier is the object ID of the reference, then the
// object ID of the record and finally the UID.
func Join(refs []envelope.ObjectRef, data *envelope.ServiceData, projection Projection) []*Joined {
	joined := []*Joined{}
	for _, ref := range refs {
		record, ok := data.Lookup(ref.UID)
		if !ok {
			continue
		}

		fields := make(map[string]string, len(projection.Required)+len(projection.Optional))
		complete := true
		for _, attr := range projection.Required {
			val, ok := firstDisplay(record, attr)
			if !ok {
				complete = false
				break
			}
			fields[attr] = val
		}
		if !complete {
			continue
		}
		for _, attr := range projection.Optional {
			val, _ := firstDisplay(record, attr)
			fields[attr] = val
		}

		id := ref.ObjectID
		if id == "" {
			id = record.StableID()
		}
		joined = append(joined, &Joined{
			ID:        id,
			UID:       ref.UID,
			ClassName: firstNonEmpty(ref.ClassName, record.ClassName),
			Type:      firstNonEmpty(ref.Type, record.Type),
			Fields:    fields,
		})
	}
	return joined
}

func firstDisplay(record *envelope.ObjectRecord, attr string) (string, bool) {
	prop, ok := record.Property(attr)
	if !ok {
		return "", false
	}
	return prop.FirstUI()
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if val != "" {
			return val
		}
	}
	return ""
}
