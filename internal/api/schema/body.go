package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

var (
	errRequestBodyInvalidJSON = func(err string) *Error {
		return &Error{
			Type:    "validation.requestBody.invalidJSON",
			Message: "Request body is not a valid JSON input.",
			Details: map[string]any{
				"error": err,
			},
		}
	}
	errRequestBodyParameterInvalidType = func(name, expectedType string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.invalidType",
			Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"expected_type": expectedType,
			},
		}
	}
	errRequestBodyParameterMissing = func(name string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.missing",
			Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errRequestBodyParameterNumberOutOfRange = func(name string, value, min, max int64) *Error {
		comparison := ""
		if value < min {
			comparison = fmt.Sprintf("%d [given] < %d [min]", value, min)
		} else if value > max {
			comparison = fmt.Sprintf("%d [given] > %d [max]", value, max)
		}

		return &Error{
			Type:    "validation.requestBody.parameter.number.outOfRange",
			Message: fmt.Sprintf("The request body parameter '%s' is out of the required range (%s).", name, comparison),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
	errRequestBodyParameterTooManyItems = func(name string, count, max int) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.tooManyItems",
			Message: fmt.Sprintf("The request body parameter '%s' contains %d items but at most %d are allowed.", name, count, max),
			Details: map[string]any{
				"parameter": name,
				"count":     count,
				"max":       max,
			},
		}
	}
)

// UnmarshalBody parses and decodes a JSON request body and performs validations on it.
// The struct tags 'required', 'min', 'max' and 'max_items' are evaluated; see fieldRules.
func UnmarshalBody[T any](request *http.Request) (*T, []*Error, error) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, nil, err
	}

	target := new(T)
	if err := json.Unmarshal(body, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, []*Error{errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())}, nil
		}
		return nil, []*Error{errRequestBodyInvalidJSON(err.Error())}, nil
	}

	errs, err := validateStruct("", reflect.ValueOf(target))
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

// fieldRules represents the validation rules declared on a single struct field
type fieldRules struct {
	name     string
	required bool
	min      int64
	max      int64
	maxItems int
}

func rulesOf(def reflect.StructField) fieldRules {
	rules := fieldRules{
		name:     fieldName(def),
		required: strings.EqualFold(def.Tag.Get("required"), "true"),
		min:      math.MinInt64,
		max:      math.MaxInt64,
		maxItems: -1,
	}
	if min, err := strconv.ParseInt(def.Tag.Get("min"), 10, 64); err == nil {
		rules.min = min
	}
	if max, err := strconv.ParseInt(def.Tag.Get("max"), 10, 64); err == nil {
		rules.max = max
	}
	if maxItems, err := strconv.Atoi(def.Tag.Get("max_items")); err == nil {
		rules.maxItems = maxItems
	}
	return rules
}

// check validates a single field value against the rules
func (rules fieldRules) check(path string, field reflect.Value) []*Error {
	if isAbsent(field) {
		if rules.required {
			return []*Error{errRequestBodyParameterMissing(path)}
		}
		return nil
	}
	if field.Kind() == reflect.Pointer {
		field = field.Elem()
	}

	var errs []*Error
	switch {
	case field.CanUint():
		val := int64(field.Uint())
		if val < rules.min || val > rules.max {
			errs = append(errs, errRequestBodyParameterNumberOutOfRange(path, val, rules.min, rules.max))
		}
	case field.CanInt():
		val := field.Int()
		if val < rules.min || val > rules.max {
			errs = append(errs, errRequestBodyParameterNumberOutOfRange(path, val, rules.min, rules.max))
		}
	case field.Kind() == reflect.Slice || field.Kind() == reflect.Map:
		if rules.maxItems >= 0 && field.Len() > rules.maxItems {
			errs = append(errs, errRequestBodyParameterTooManyItems(path, field.Len(), rules.maxItems))
		}
	}
	return errs
}

func validateStruct(prefix string, ref reflect.Value) ([]*Error, error) {
	if ref.Kind() == reflect.Pointer {
		ref = ref.Elem()
	}
	if ref.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	typ := ref.Type()

	var errs []*Error
	for i := 0; i < typ.NumField(); i++ {
		def := typ.Field(i)
		if !def.IsExported() {
			continue
		}
		rules := rulesOf(def)
		path := prefix + rules.name
		field := ref.Field(i)

		errs = append(errs, rules.check(path, field)...)

		// Descend into nested payload objects
		nested := field
		if nested.Kind() == reflect.Pointer && !nested.IsNil() {
			nested = nested.Elem()
		}
		if nested.Kind() == reflect.Struct {
			subErrs, err := validateStruct(path+".", nested)
			if err != nil {
				return nil, err
			}
			errs = append(errs, subErrs...)
		}
	}
	return errs, nil
}

// isAbsent reports whether a field was not set by the request body.
// Strings consisting of whitespace only count as absent.
func isAbsent(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.Pointer:
		if field.IsNil() {
			return true
		}
		if field.Elem().Kind() == reflect.String {
			return strings.TrimSpace(field.Elem().String()) == ""
		}
		return false
	case reflect.Map, reflect.Slice, reflect.Interface:
		return field.IsNil()
	case reflect.String:
		return strings.TrimSpace(field.String()) == ""
	}
	return field.IsZero()
}

func fieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	return name
}
