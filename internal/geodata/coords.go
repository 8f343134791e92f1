package geodata

import (
	"fmt"
	"strconv"
)

// Coordinate column name synonyms, matched case-sensitively.
var (
	lonSynonyms = []string{"经度", "longitude", "lon", "lng", "x", "X"}
	latSynonyms = []string{"纬度", "latitude", "lat", "y", "Y"}
)

// Reference bounding region used as a plausibility filter during statistical
// pairing. Regional bounds, not a hard geographic constraint.
const (
	refLonMin = 73.66
	refLonMax = 135.05
	refLatMin = 18.15
	refLatMax = 53.55

	// inRangeThreshold is the minimum membership ratio for a column to
	// qualify as a coordinate-axis candidate.
	inRangeThreshold = 0.95
)

// Assignment names the longitude and latitude columns by index.
type Assignment struct {
	Lon int
	Lat int
}

// InferCoordinates finds the longitude/latitude columns of a tabular
// dataset. Stages, each short-circuiting on success per axis:
// caller-supplied specs, name matching, headerless positional fallback,
// and statistical pairing over adjacent numeric columns. Both assigned
// columns must coerce to numeric.
func InferCoordinates(ds *Dataset, lonSpec, latSpec string) (Assignment, error) {
	lon, err := resolveSpec(ds, lonSpec, "longitude")
	if err != nil {
		return Assignment{}, err
	}
	lat, err := resolveSpec(ds, latSpec, "latitude")
	if err != nil {
		return Assignment{}, err
	}

	if lon < 0 {
		lon = matchName(ds, lonSynonyms)
	}
	if lat < 0 {
		lat = matchName(ds, latSynonyms)
	}

	if !ds.HasHeader && len(ds.Columns) >= 2 {
		if lon < 0 {
			lon = 0
		}
		if lat < 0 {
			lat = 1
		}
	}

	if lon < 0 || lat < 0 {
		pair, ok := pairByMembership(ds)
		if !ok {
			return Assignment{}, newInvalidValue(ReasonCoordinatesUndetectable, ds.Path,
				fmt.Errorf("coordinate fields undetectable; specify lon_col and lat_col explicitly"))
		}
		lon, lat = pair.Lon, pair.Lat
	}

	if !ds.Columns[lon].IsNumeric() {
		return Assignment{}, newCoordinateValidation(ds.Path, ds.Columns[lon].Name, "longitude")
	}
	if !ds.Columns[lat].IsNumeric() {
		return Assignment{}, newCoordinateValidation(ds.Path, ds.Columns[lat].Name, "latitude")
	}

	return Assignment{Lon: lon, Lat: lat}, nil
}

// resolveSpec resolves a caller-supplied column identifier, either a name
// or a zero-based index. Empty spec resolves to -1 (unassigned).
func resolveSpec(ds *Dataset, spec, axis string) (int, error) {
	if spec == "" {
		return -1, nil
	}
	if idx, err := strconv.Atoi(spec); err == nil {
		if idx < 0 || idx >= len(ds.Columns) {
			return 0, newInvalidValue(ReasonBadValue, ds.Path,
				fmt.Errorf("%s column index %d out of range (dataset has %d columns)", axis, idx, len(ds.Columns)))
		}
		return idx, nil
	}
	for i, c := range ds.Columns {
		if c.Name == spec {
			return i, nil
		}
	}
	return 0, newInvalidValue(ReasonBadValue, ds.Path,
		fmt.Errorf("%s column %q not found", axis, spec))
}

func matchName(ds *Dataset, synonyms []string) int {
	for _, name := range synonyms {
		for i, c := range ds.Columns {
			if c.Name == name {
				return i
			}
		}
	}
	return -1
}

// pairByMembership scans adjacent numeric column pairs and selects the
// ordered (lon, lat) pair maximizing the summed membership ratios against
// the reference region. Ties keep the first pair in column order.
func pairByMembership(ds *Dataset) (Assignment, bool) {
	var best Assignment
	bestScore := -1.0

	for i := 0; i+1 < len(ds.Columns); i++ {
		c1, c2 := ds.Columns[i], ds.Columns[i+1]
		if !c1.IsNumeric() || !c2.IsNumeric() || !adjacent(c1, c2) {
			continue
		}

		lon1 := c1.InRangeFraction(refLonMin, refLonMax)
		lat1 := c1.InRangeFraction(refLatMin, refLatMax)
		lon2 := c2.InRangeFraction(refLonMin, refLonMax)
		lat2 := c2.InRangeFraction(refLatMin, refLatMax)

		if lon1 > inRangeThreshold && lat2 > inRangeThreshold {
			if score := lon1 + lat2; score > bestScore {
				best, bestScore = Assignment{Lon: i, Lat: i + 1}, score
			}
		} else if lat1 > inRangeThreshold && lon2 > inRangeThreshold {
			if score := lon2 + lat1; score > bestScore {
				best, bestScore = Assignment{Lon: i + 1, Lat: i}, score
			}
		}
	}

	return best, bestScore >= 0
}

// adjacent reports whether two columns sit next to each other, by position
// or by consecutive numeric names.
func adjacent(c1, c2 Column) bool {
	if c2.Index == c1.Index+1 {
		return true
	}
	n1, err1 := strconv.Atoi(c1.Name)
	n2, err2 := strconv.Atoi(c2.Name)
	return err1 == nil && err2 == nil && n2 == n1+1
}
