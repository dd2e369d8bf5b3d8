// Package schema describes the typed, ordered field lists that flow
// through every logical and physical plan node.
package schema

import (
	"fmt"
	"strings"
)

// DataType is one of the five closed primitive types columns can hold.
type DataType int

const (
	Boolean DataType = iota
	Int64
	UInt64
	Float64
	Utf8
)

func (t DataType) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case Int64:
		return "Int64"
	case UInt64:
		return "UInt64"
	case Float64:
		return "Float64"
	case Utf8:
		return "Utf8"
	default:
		return "Unknown"
	}
}

// Field is a single named, typed column slot. Qualifier is the table
// (or table-alias) name the field came from, and may be empty for
// fields produced by expressions (e.g. aggregate results).
type Field struct {
	Qualifier string
	Name      string
	Type      DataType
	Nullable  bool
}

// QualifiedName renders "qualifier.name", or bare "name" when there is
// no qualifier.
func (f Field) QualifiedName() string {
	if f.Qualifier == "" {
		return f.Name
	}
	return f.Qualifier + "." + f.Name
}

func (f Field) String() string {
	null := ""
	if f.Nullable {
		null = ";N"
	}
	return fmt.Sprintf("%s:%s%s", f.QualifiedName(), f.Type, null)
}

// Schema is an ordered list of fields. Order is significant: it is the
// physical column order of every batch carrying this schema.
type Schema struct {
	Fields []Field
}

// New builds a Schema from the given fields, preserving order.
func New(fields ...Field) Schema {
	return Schema{Fields: fields}
}

func (s Schema) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

// IndexOf resolves a possibly-qualified column reference to its field
// index. When qualifier is empty, the first field whose Name matches is
// returned (unqualified lookup). Returns -1 if nothing matches.
func (s Schema) IndexOf(qualifier, name string) int {
	if qualifier != "" {
		for i, f := range s.Fields {
			if f.Qualifier == qualifier && f.Name == name {
				return i
			}
		}
		return -1
	}
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Field returns the field at idx, or the zero Field and false if idx is
// out of range.
func (s Schema) Field(idx int) (Field, bool) {
	if idx < 0 || idx >= len(s.Fields) {
		return Field{}, false
	}
	return s.Fields[idx], true
}

// Len returns the number of fields in the schema.
func (s Schema) Len() int {
	return len(s.Fields)
}

// Join concatenates two schemas' field lists, preserving the order of
// the left schema followed by the right schema. Used for cross/hash
// join output schemas.
func Join(left, right Schema) Schema {
	fields := make([]Field, 0, len(left.Fields)+len(right.Fields))
	fields = append(fields, left.Fields...)
	fields = append(fields, right.Fields...)
	return Schema{Fields: fields}
}

// WithQualifier returns a copy of the schema with every field's
// Qualifier replaced, used when a table is referenced through an alias.
func (s Schema) WithQualifier(qualifier string) Schema {
	fields := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		f.Qualifier = qualifier
		fields[i] = f
	}
	return Schema{Fields: fields}
}

// Select projects the schema down to the given field indices, in the
// order given, used when a scan is narrowed to a column projection.
func (s Schema) Select(indices []int) Schema {
	fields := make([]Field, len(indices))
	for i, idx := range indices {
		fields[i] = s.Fields[idx]
	}
	return Schema{Fields: fields}
}
