package templates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names a filter a template can accept.
type Field string

const (
	FieldHMOID              Field = "hmo_id"
	FieldDateFrom           Field = "date_from"
	FieldDateTo             Field = "date_to"
	FieldDateField          Field = "date_field"
	FieldHMOStatus          Field = "hmo_status"
	FieldProviderStatus     Field = "provider_status"
	FieldProviderName       Field = "provider_name"
	FieldVettedOnly         Field = "vetted_only"
	FieldHasUnmatchedTariff Field = "has_unmatched_tariff"
	FieldCareTypeMedication Field = "care_type_medication"
	FieldERPPrefix          Field = "erp_prefix"
	FieldFlaggedStatus      Field = "flagged_status"
	FieldVariationFilter    Field = "variation_filter"

	// FieldDateRange is what templates declare to get a from/to picker.
	// Values are always stored under FieldDateFrom and FieldDateTo.
	FieldDateRange Field = "date_range"
)

var knownFields = map[Field]struct{}{
	FieldHMOID: {}, FieldDateFrom: {}, FieldDateTo: {}, FieldDateField: {},
	FieldHMOStatus: {}, FieldProviderStatus: {}, FieldProviderName: {},
	FieldVettedOnly: {}, FieldHasUnmatchedTariff: {}, FieldCareTypeMedication: {},
	FieldERPPrefix: {}, FieldFlaggedStatus: {}, FieldVariationFilter: {},
}

// ParseField validates a filter field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := knownFields[f]; !ok {
		return "", fmt.Errorf("unknown filter field %q", name)
	}
	return f, nil
}

// Filters holds filter values with explicit presence: a field that was never
// set means "no filter", which is different from a field set to "false" or "".
// The zero value is an empty filter set.
type Filters struct {
	values map[Field]string
}

// Set stores a value for field.
func (f *Filters) Set(field Field, value string) {
	if f.values == nil {
		f.values = make(map[Field]string)
	}
	f.values[field] = value
}

// SetBool stores a boolean value for field.
func (f *Filters) SetBool(field Field, value bool) {
	f.Set(field, strconv.FormatBool(value))
}

// Unset removes field.
func (f *Filters) Unset(field Field) {
	delete(f.values, field)
}

// Get returns the raw value of field and whether it was set.
func (f Filters) Get(field Field) (string, bool) {
	v, ok := f.values[field]
	return v, ok
}

// Has reports whether field was set.
func (f Filters) Has(field Field) bool {
	_, ok := f.values[field]
	return ok
}

// Bool returns the boolean value of field. present is false when the field
// was never set; unparsable values read as false.
func (f Filters) Bool(field Field) (value, present bool) {
	v, ok := f.values[field]
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b, true
}

// Fields returns the set fields in name order.
func (f Filters) Fields() []Field {
	out := make([]Field, 0, len(f.values))
	for k := range f.values {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	var out Filters
	for k, v := range f.values {
		out.Set(k, v)
	}
	return out
}

// text returns a trimmed, non-blank value.
func (f Filters) text(field Field) (string, bool) {
	v, ok := f.values[field]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// enabled reports whether a boolean filter is present and true.
func (f Filters) enabled(field Field) bool {
	v, _ := f.Bool(field)
	return v
}

// ParseFilters builds Filters from decoded JSON or GraphQL input. Nil values
// are treated as absent; unknown fields are rejected.
func ParseFilters(raw map[string]any) (Filters, error) {
	var f Filters
	for name, value := range raw {
		field, err := ParseField(name)
		if err != nil {
			return Filters{}, err
		}
		switch v := value.(type) {
		case nil:
			continue
		case string:
			f.Set(field, v)
		case bool:
			f.SetBool(field, v)
		case int:
			f.Set(field, strconv.Itoa(v))
		case int64:
			f.Set(field, strconv.FormatInt(v, 10))
		case float64:
			f.Set(field, strconv.FormatFloat(v, 'f', -1, 64))
		case fmt.Stringer:
			f.Set(field, v.String())
		default:
			return Filters{}, fmt.Errorf("filter %q: unsupported value type %T", name, value)
		}
	}
	return f, nil
}
