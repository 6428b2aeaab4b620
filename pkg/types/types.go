package types

import (
	"fmt"
	"math"
	"strings"
)

// Type is a logical SQL column type. Physical widths are fixed per type
// except for Varchar, which the fixed-width paths reject.
type Type int

const (
	InvalidType Type = iota
	BooleanType
	TinyIntType
	SmallIntType
	IntegerType
	BigIntType
	DecimalType
	DateType
	TimestampType
	VarcharType
)

// typeInfo holds the static properties of a type.
type typeInfo struct {
	name     string
	size     uint16
	integral bool
	min, max int64
}

var typeInfos = map[Type]typeInfo{
	BooleanType:   {name: "BOOLEAN", size: 1, min: 0, max: 1},
	TinyIntType:   {name: "TINYINT", size: 1, integral: true, min: math.MinInt8, max: math.MaxInt8},
	SmallIntType:  {name: "SMALLINT", size: 2, integral: true, min: math.MinInt16, max: math.MaxInt16},
	IntegerType:   {name: "INTEGER", size: 4, integral: true, min: math.MinInt32, max: math.MaxInt32},
	BigIntType:    {name: "BIGINT", size: 8, integral: true, min: math.MinInt64, max: math.MaxInt64},
	DecimalType:   {name: "DECIMAL", size: 8, integral: true, min: math.MinInt64, max: math.MaxInt64},
	DateType:      {name: "DATE", size: 4, min: 0, max: math.MaxUint32},
	TimestampType: {name: "TIMESTAMP", size: 8, min: math.MinInt64, max: math.MaxInt64},
	VarcharType:   {name: "VARCHAR"},
}

// String returns a string representation of the type
func (t Type) String() string {
	if info, ok := typeInfos[t]; ok {
		return info.name
	}
	return "UNKNOWN_TYPE"
}

// IsValidType reports whether t is one of the declared types.
func IsValidType(t Type) bool {
	_, ok := typeInfos[t]
	return ok
}

// Size returns the physical width of the type in bytes. The second result is
// false for variable-width and unknown types.
func (t Type) Size() (uint16, bool) {
	info, ok := typeInfos[t]
	if !ok || info.size == 0 {
		return 0, false
	}
	return info.size, true
}

// IsFixedWidth reports whether values of t occupy a fixed number of bytes.
func (t Type) IsFixedWidth() bool {
	_, ok := t.Size()
	return ok
}

// IsIntegral reports whether t is generated from the signed integer
// distributions (TINYINT through BIGINT, and DECIMAL stored as int64).
func (t Type) IsIntegral() bool {
	return typeInfos[t].integral
}

// Range returns the inclusive value range representable in t's width. It
// returns ok=false for types without a fixed width.
func (t Type) Range() (lo, hi int64, ok bool) {
	info, exists := typeInfos[t]
	if !exists || info.size == 0 {
		return 0, 0, false
	}
	return info.min, info.max, true
}

// Contains reports whether v is representable in t.
func (t Type) Contains(v int64) bool {
	lo, hi, ok := t.Range()
	return ok && v >= lo && v <= hi
}

// ParseType parses a type name. Common aliases (INT, INT4, BOOL, ...) are
// accepted, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BOOLEAN", "BOOL":
		return BooleanType, nil
	case "TINYINT", "INT1":
		return TinyIntType, nil
	case "SMALLINT", "INT2":
		return SmallIntType, nil
	case "INTEGER", "INT", "INT4":
		return IntegerType, nil
	case "BIGINT", "INT8":
		return BigIntType, nil
	case "DECIMAL", "NUMERIC":
		return DecimalType, nil
	case "DATE":
		return DateType, nil
	case "TIMESTAMP":
		return TimestampType, nil
	case "VARCHAR", "TEXT", "STRING":
		return VarcharType, nil
	default:
		return InvalidType, fmt.Errorf("unknown type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !IsValidType(t) {
		return nil, fmt.Errorf("cannot marshal type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
