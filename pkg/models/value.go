package models

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the scalar kinds a table cell can hold.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
)

// Value is one scalar cell as it appeared on the wire. Integer and
// decimal numbers are kept apart because rendering treats them
// differently: decimals get fixed-point formatting, integers keep
// their natural digits.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

func NullValue() Value {
	return Value{Kind: KindNull}
}

func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func IntValue(n int64) Value {
	return Value{Kind: KindInt, Str: strconv.FormatInt(n, 10), Num: float64(n)}
}

func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Str: strconv.FormatFloat(f, 'f', -1, 64), Num: f}
}

// NumberToken builds a Value from a raw JSON number token. A token
// carrying a fraction or exponent part is a decimal; a bare digit run
// is an integer and keeps its exact text.
func NumberToken(tok string) Value {
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return StringValue(tok)
	}
	if strings.ContainsAny(tok, ".eE") {
		return Value{Kind: KindFloat, Str: tok, Num: f}
	}
	return Value{Kind: KindInt, Str: tok, Num: f}
}

// Field is one named cell within a row.
type Field struct {
	Name  string
	Value Value
}

// Row is a single table row with its fields in wire order. Duplicate
// field names are kept as-is; lookup returns the first match.
type Row struct {
	Fields []Field
}

// Get returns the value of the first field named name.
func (r Row) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// TableDescriptor pairs a table's server-side name with the name shown
// to the user. RawName is always the key for row fetches and export;
// DisplayName never is.
type TableDescriptor struct {
	RawName     string
	DisplayName string
}

// NewTableDescriptor derives the display name by removing the first
// occurrence of "_<logID>" from the raw name. The raw name is kept
// untouched as the lookup key.
func NewTableDescriptor(rawName, logID string) TableDescriptor {
	return TableDescriptor{
		RawName:     rawName,
		DisplayName: strings.Replace(rawName, "_"+logID, "", 1),
	}
}
