// Package geodata implements the geodata ingestion and diagnostics pipeline:
// format dispatch, coordinate-field inference, attribute classification,
// summary statistics, and typed failure remediation.
package geodata

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SemanticType is the inferred field type tag, matching the type names
// shapefile attribute tables use.
type SemanticType string

const (
	TypeShortInteger SemanticType = "Short Integer"
	TypeLongInteger  SemanticType = "Long Integer"
	TypeFloat        SemanticType = "Float"
	TypeDouble       SemanticType = "Double"
	TypeDate         SemanticType = "Date"
	TypeText         SemanticType = "Text"
	TypeGeometry     SemanticType = "Geometry"
	TypeUnknown      SemanticType = "Unknown"
)

// Kind is the declared storage kind of a column, known at load time.
// Tabular loaders derive it from the cell contents; the shapefile loader
// derives it from the DBF field descriptor.
type Kind int

const (
	// KindObject is untyped storage (strings, or mixed content).
	KindObject Kind = iota
	// KindInt is integral numeric storage.
	KindInt
	// KindFloat32 is single-precision floating-point storage.
	KindFloat32
	// KindFloat64 is double-precision floating-point storage.
	KindFloat64
	// KindDate is declared calendar-date storage (DBF 'D' fields).
	KindDate
)

// missingTokens are cell contents treated as missing values.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {}, "None": {},
}

// Value is one cell of a column.
type Value struct {
	Raw     string
	Num     float64
	IsNum   bool
	Missing bool
}

// NewValue parses a raw cell into a Value. Leading and trailing whitespace
// is not significant.
func NewValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if _, ok := missingTokens[s]; ok {
		return Value{Raw: s, Missing: true}
	}
	v := Value{Raw: s}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		v.Num = n
		v.IsNum = true
	}
	return v
}

// isIntegral reports whether the value is a whole number written without
// a decimal point or exponent.
func (v Value) isIntegral() bool {
	if !v.IsNum || v.Missing {
		return false
	}
	if strings.ContainsAny(v.Raw, ".eE") {
		return false
	}
	_, err := strconv.ParseInt(v.Raw, 10, 64)
	return err == nil
}

// Column is a named column of values with its storage kind.
type Column struct {
	Name   string
	Index  int
	Kind   Kind
	Values []Value
}

// NonMissing returns the column's non-missing values.
func (c Column) NonMissing() []Value {
	out := make([]Value, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v)
		}
	}
	return out
}

// IsNumeric reports whether every non-missing value parses as a number.
// Columns with no non-missing values are not numeric.
func (c Column) IsNumeric() bool {
	seen := false
	for _, v := range c.Values {
		if v.Missing {
			continue
		}
		if !v.IsNum {
			return false
		}
		seen = true
	}
	return seen
}

// MinMax returns the numeric minimum and maximum of the column.
// ok is false when the column has no non-missing numeric values.
func (c Column) MinMax() (minV, maxV float64, ok bool) {
	for _, v := range c.Values {
		if v.Missing || !v.IsNum {
			continue
		}
		if !ok {
			minV, maxV, ok = v.Num, v.Num, true
			continue
		}
		if v.Num < minV {
			minV = v.Num
		}
		if v.Num > maxV {
			maxV = v.Num
		}
	}
	return minV, maxV, ok
}

// Mean returns the arithmetic mean of the column's numeric values.
func (c Column) Mean() (float64, bool) {
	var sum float64
	var n int
	for _, v := range c.Values {
		if v.Missing || !v.IsNum {
			continue
		}
		sum += v.Num
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// InRangeFraction is the membership ratio: the fraction of non-missing
// values falling inside [lo, hi]. Returns 0 for empty columns.
func (c Column) InRangeFraction(lo, hi float64) float64 {
	var in, total int
	for _, v := range c.Values {
		if v.Missing {
			continue
		}
		total++
		if v.IsNum && v.Num >= lo && v.Num <= hi {
			in++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(in) / float64(total)
}

// inferKind derives the storage kind of a loaded tabular column.
func inferKind(values []Value) Kind {
	numeric, integral, seen := true, true, false
	for _, v := range values {
		if v.Missing {
			continue
		}
		seen = true
		if !v.IsNum {
			numeric = false
			break
		}
		if !v.isIntegral() {
			integral = false
		}
	}
	switch {
	case !seen || !numeric:
		return KindObject
	case integral:
		return KindInt
	default:
		return KindFloat64
	}
}

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
}

// Extend grows the bounds to include another box.
func (b *Bounds) Extend(o Bounds) {
	if o.MinLon < b.MinLon {
		b.MinLon = o.MinLon
	}
	if o.MaxLon > b.MaxLon {
		b.MaxLon = o.MaxLon
	}
	if o.MinLat < b.MinLat {
		b.MinLat = o.MinLat
	}
	if o.MaxLat > b.MaxLat {
		b.MaxLat = o.MaxLat
	}
}

// Dataset is an in-memory table of named columns. A dataset is owned by the
// single request that loaded it and is never shared.
type Dataset struct {
	Path      string
	Name      string
	Format    string // extension without the dot
	Columns   []Column
	Rows      int
	HasHeader bool

	// Vector datasets only.
	CRS           string
	GeometryKinds []string
	Extent        *Bounds
	Features      int
}

// dateLayouts are the calendar-date formats the classifier recognizes.
// Compact digit-only layouts are deliberately excluded for object columns
// so numeric identifiers never classify as dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// dbfDateLayout is the raw DBF 'D' field encoding.
const dbfDateLayout = "20060102"

// ParseDate parses a value as a calendar date according to the column's
// storage kind. The compact layout applies to declared date storage and to
// eight-digit integral values, so shorter identifiers stay numeric.
func ParseDate(v Value, kind Kind) (time.Time, bool) {
	if v.Missing {
		return time.Time{}, false
	}
	if kind == KindDate || (kind == KindInt && len(v.Raw) == 8) {
		if t, err := time.Parse(dbfDateLayout, v.Raw); err == nil {
			return t, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v.Raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
