package envelope

import (
	"github.com/skybi/soa-bridge/internal/jsonvalue"
)

// StateOptions is a typed builder for the header state directives.
// Unset fields are not sent.
type StateOptions struct {
	Locale                   string
	FormatProperties         *bool
	Stateless                *bool
	UnloadObjects            *bool
	EnableServerStateHeaders *bool
	ClientID                 string
}

// Build returns the state directives as sent in the request header
func (options *StateOptions) Build() map[string]jsonvalue.Value {
	state := map[string]jsonvalue.Value{}
	if options == nil {
		return state
	}
	if options.Locale != "" {
		state["locale"] = jsonvalue.String(options.Locale)
	}
	if options.ClientID != "" {
		state["clientID"] = jsonvalue.String(options.ClientID)
	}
	setFlag(state, "formatProperties", options.FormatProperties)
	setFlag(state, "stateless", options.Stateless)
	setFlag(state, "unloadObjects", options.UnloadObjects)
	setFlag(state, "enableServerStateHeaders", options.EnableServerStateHeaders)
	return state
}

func setFlag(target map[string]jsonvalue.Value, key string, flag *bool) {
	if flag != nil {
		target[key] = jsonvalue.Bool(*flag)
	}
}

// PropertyPolicy is a typed builder for the object property policy sent in the request header.
// It tells the server which properties to return for which object types.
type PropertyPolicy struct {
	useRefCount bool
	typeNames   []string
	properties  map[string][]string
}

// NewPropertyPolicy creates a new empty property policy
func NewPropertyPolicy() *PropertyPolicy {
	return &PropertyPolicy{
		properties: map[string][]string{},
	}
}

// WithType requests the given properties for all objects of a type.
// Calling it again for the same type appends the properties.
func (policy *PropertyPolicy) WithType(typeName string, properties ...string) *PropertyPolicy {
	if _, ok := policy.properties[typeName]; !ok {
		policy.typeNames = append(policy.typeNames, typeName)
	}
	policy.properties[typeName] = append(policy.properties[typeName], properties...)
	return policy
}

// WithRefCount enables reference counting of policy types on the server
func (policy *PropertyPolicy) WithRefCount(enabled bool) *PropertyPolicy {
	policy.useRefCount = enabled
	return policy
}

// Build returns the policy directives as sent in the request header.
// Types are written in the order they were added.
func (policy *PropertyPolicy) Build() map[string]jsonvalue.Value {
	if policy == nil || len(policy.typeNames) == 0 {
		return map[string]jsonvalue.Value{}
	}

	types := make([]jsonvalue.Value, 0, len(policy.typeNames))
	for _, typeName := range policy.typeNames {
		properties := make([]jsonvalue.Value, 0, len(policy.properties[typeName]))
		for _, property := range policy.properties[typeName] {
			properties = append(properties, jsonvalue.Object(map[string]jsonvalue.Value{
				"name": jsonvalue.String(property),
			}))
		}
		types = append(types, jsonvalue.Object(map[string]jsonvalue.Value{
			"name":       jsonvalue.String(typeName),
			"properties": jsonvalue.Array(properties...),
		}))
	}

	return map[string]jsonvalue.Value{
		"useRefCount": jsonvalue.Bool(policy.useRefCount),
		"types":       jsonvalue.Array(types...),
	}
}
