package geodata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sample-value limits: text fields list their literal values only when the
// unique count stays at or below the limit.
const (
	TabularSampleLimit = 3
	VectorSampleLimit  = 5
)

// systemFieldNames are identifier columns excluded from the generic field
// report and counted separately.
var systemFieldNames = map[string]struct{}{
	"id": {}, "fid": {}, "oid": {}, "objectid": {},
}

// IsSystemField reports whether a column name denotes a system/identifier
// field.
func IsSystemField(name string) bool {
	_, ok := systemFieldNames[strings.ToLower(name)]
	return ok
}

// FieldStats is the stats block for one attribute field.
type FieldStats struct {
	Name        string       `json:"name"`
	Type        SemanticType `json:"type"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Mean        *float64     `json:"mean,omitempty"`
	MinDate     string       `json:"min_date,omitempty"`
	MaxDate     string       `json:"max_date,omitempty"`
	UniqueCount *int         `json:"unique_count,omitempty"`
	Samples     []string     `json:"sample_values,omitempty"`
	Features    *int         `json:"features,omitempty"`
}

// SystemField records a recognized identifier column.
type SystemField struct {
	Name  string       `json:"name"`
	Type  SemanticType `json:"type"`
	Count int          `json:"count"`
}

// Summarize computes the stats block for a classified column. sampleLimit
// is the text sample threshold (TabularSampleLimit or VectorSampleLimit).
// Summarizing the same column twice yields identical stats.
func Summarize(col Column, sem SemanticType, sampleLimit int) FieldStats {
	stats := FieldStats{Name: col.Name, Type: sem}

	switch sem {
	case TypeShortInteger, TypeLongInteger, TypeFloat, TypeDouble:
		if minV, maxV, ok := col.MinMax(); ok {
			mean, _ := col.Mean()
			stats.Min, stats.Max, stats.Mean = &minV, &maxV, &mean
		}

	case TypeDate:
		if minD, maxD, ok := dateRange(col); ok {
			stats.MinDate = minD.Format("2006-01-02")
			stats.MaxDate = maxD.Format("2006-01-02")
		}

	case TypeText:
		uniques := uniqueValues(col)
		n := len(uniques)
		stats.UniqueCount = &n
		if n <= sampleLimit {
			stats.Samples = uniques
		}
	}

	return stats
}

// ReportLine renders the human-readable summary line for the field.
func (s FieldStats) ReportLine() string {
	switch s.Type {
	case TypeShortInteger, TypeLongInteger, TypeFloat, TypeDouble:
		if s.Mean == nil {
			return fmt.Sprintf("field [%s] (%s): no values", s.Name, s.Type)
		}
		return fmt.Sprintf("field [%s] (%s): mean=%.2f, max=%s, min=%s",
			s.Name, s.Type, *s.Mean, formatNumber(*s.Max), formatNumber(*s.Min))

	case TypeDate:
		return fmt.Sprintf("field [%s]: range %s to %s", s.Name, s.MinDate, s.MaxDate)

	case TypeText:
		if s.Samples != nil {
			return fmt.Sprintf("field [%s]: values %s", s.Name, strings.Join(s.Samples, ", "))
		}
		n := 0
		if s.UniqueCount != nil {
			n = *s.UniqueCount
		}
		return fmt.Sprintf("field [%s]: %d unique values", s.Name, n)

	case TypeGeometry:
		n := 0
		if s.Features != nil {
			n = *s.Features
		}
		return fmt.Sprintf("geometry field: %d features", n)
	}

	return fmt.Sprintf("field [%s] (%s)", s.Name, s.Type)
}

// ReportLine renders the summary line for a system field.
func (f SystemField) ReportLine() string {
	return fmt.Sprintf("system field [%s]: %s, %d records", f.Name, f.Type, f.Count)
}

// SummarizeSystem builds the system-field record for an identifier column.
// Integral identifiers are widened to Long Integer regardless of range.
func SummarizeSystem(col Column, sem SemanticType) SystemField {
	if sem == TypeShortInteger {
		sem = TypeLongInteger
	}
	return SystemField{
		Name:  col.Name,
		Type:  sem,
		Count: len(uniqueValues(col)),
	}
}

// dateRange returns the earliest and latest dates in the column.
func dateRange(col Column) (minD, maxD time.Time, ok bool) {
	for _, v := range col.Values {
		t, parsed := ParseDate(v, col.Kind)
		if !parsed {
			continue
		}
		if !ok {
			minD, maxD, ok = t, t, true
			continue
		}
		if t.Before(minD) {
			minD = t
		}
		if t.After(maxD) {
			maxD = t
		}
	}
	return minD, maxD, ok
}

// uniqueValues returns distinct non-missing raw values in first-occurrence
// order.
func uniqueValues(col Column) []string {
	seen := make(map[string]struct{}, len(col.Values))
	out := make([]string, 0, len(col.Values))
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		if _, dup := seen[v.Raw]; dup {
			continue
		}
		seen[v.Raw] = struct{}{}
		out = append(out, v.Raw)
	}
	return out
}

// formatNumber renders a float without a trailing ".0" for whole numbers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
