package geodata

import (
	"fmt"
	"strings"
)

// FileInfo is the file-level metadata block of an analysis.
type FileInfo struct {
	FileName         string   `json:"file_name"`
	FileType         string   `json:"file_type"`
	TotalPoints      int      `json:"total_points"`
	CoordinatesRange *Bounds  `json:"coordinates_range,omitempty"`
	CRS              string   `json:"crs,omitempty"`
	GeometryTypes    []string `json:"geometry_types,omitempty"`
	FeatureCount     int      `json:"feature_count,omitempty"`
}

// Attributes holds the per-field stats blocks.
type Attributes struct {
	Fields       []FieldStats  `json:"fields"`
	SystemFields []SystemField `json:"system_fields"`
}

// Analysis is the machine-readable result of one ingestion.
type Analysis struct {
	FileInfo   FileInfo   `json:"file_info"`
	Attributes Attributes `json:"attributes"`
}

// Render produces the fixed human-readable report layout.
func (a *Analysis) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "- geodata processing complete: %s\n", a.FileInfo.FileName)
	b.WriteString("  - overview:\n")
	fmt.Fprintf(&b, "    - file type: %s\n", strings.ToUpper(a.FileInfo.FileType))
	fmt.Fprintf(&b, "    - total points: %s\n", groupThousands(a.FileInfo.TotalPoints))

	if r := a.FileInfo.CoordinatesRange; r != nil {
		b.WriteString("  - coordinate range:\n")
		fmt.Fprintf(&b, "    - longitude: %.4f ~ %.4f\n", r.MinLon, r.MaxLon)
		fmt.Fprintf(&b, "    - latitude: %.4f ~ %.4f\n", r.MinLat, r.MaxLat)
	}

	if a.FileInfo.CRS != "" {
		fmt.Fprintf(&b, "  - coordinate system: %s\n", a.FileInfo.CRS)
	}
	if len(a.FileInfo.GeometryTypes) > 0 {
		fmt.Fprintf(&b, "  - geometry types: %s\n", strings.Join(a.FileInfo.GeometryTypes, ", "))
	}

	b.WriteString("  - attribute fields:\n")
	for _, f := range a.Attributes.Fields {
		fmt.Fprintf(&b, "    - %s\n", f.ReportLine())
	}
	for _, f := range a.Attributes.SystemFields {
		fmt.Fprintf(&b, "    - %s\n", f.ReportLine())
	}

	return strings.TrimRight(b.String(), "\n")
}

// groupThousands formats an integer with comma separators.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
