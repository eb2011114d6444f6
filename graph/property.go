package graph

import "strings"

// PropertyType is a graph-native property type tag.
type PropertyType string

// Graph-native property type tags.
const (
	TypeUnknown     PropertyType = "UNKNOWN"
	TypeBool        PropertyType = "BOOL"
	TypeInt8        PropertyType = "INT8"
	TypeInt16       PropertyType = "INT16"
	TypeInt32       PropertyType = "INT32"
	TypeInt64       PropertyType = "INT64"
	TypeVID         PropertyType = "VID"
	TypeFloat       PropertyType = "FLOAT"
	TypeDouble      PropertyType = "DOUBLE"
	TypeString      PropertyType = "STRING"
	TypeFixedString PropertyType = "FIXED_STRING"
	TypeTimestamp   PropertyType = "TIMESTAMP"
	TypeDate        PropertyType = "DATE"
	TypeTime        PropertyType = "TIME"
	TypeDateTime    PropertyType = "DATETIME"
	TypeDuration    PropertyType = "DURATION"
	TypeGeography   PropertyType = "GEOGRAPHY"
)

// known lists every concrete tag in declaration order. TypeUnknown is a tag
// of the graph store itself but carries no value type, so it is excluded.
var known = []PropertyType{
	TypeBool,
	TypeInt8,
	TypeInt16,
	TypeInt32,
	TypeInt64,
	TypeVID,
	TypeFloat,
	TypeDouble,
	TypeString,
	TypeFixedString,
	TypeTimestamp,
	TypeDate,
	TypeTime,
	TypeDateTime,
	TypeDuration,
	TypeGeography,
}

// PropertyTypes returns the concrete property type tags.
func PropertyTypes() []PropertyType {
	return append([]PropertyType(nil), known...)
}

// ParsePropertyType normalises a raw tag. Unknown tags are returned
// upper-cased rather than rejected.
func ParsePropertyType(s string) PropertyType {
	return PropertyType(strings.ToUpper(strings.TrimSpace(s)))
}

// String returns the tag.
func (t PropertyType) String() string { return string(t) }

// Known reports whether t is one of the concrete tags.
func (t PropertyType) Known() bool {
	for _, k := range known {
		if k == t {
			return true
		}
	}
	return false
}

// Integer reports whether values of t are whole numbers.
func (t PropertyType) Integer() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeTimestamp:
		return true
	}
	return false
}

// Numeric reports whether values of t are numbers.
func (t PropertyType) Numeric() bool {
	return t.Integer() || t == TypeFloat || t == TypeDouble
}

// MarshalText implements encoding.TextMarshaler.
func (t PropertyType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PropertyType) UnmarshalText(text []byte) error {
	*t = ParsePropertyType(string(text))
	return nil
}
