package geodata

import "unicode/utf8"

// shortIntegerMin and shortIntegerMax bound the signed 16-bit range used to
// split integral columns into Short Integer and Long Integer.
const (
	shortIntegerMin = -32768
	shortIntegerMax = 32767
)

// maxVectorTextBytes is the widest text value a shapefile attribute field
// can carry. Wider values are unsupported (reported as Unknown).
const maxVectorTextBytes = 254

// Classify infers the semantic type of a tabular column from its storage
// kind and values. First match wins; an all-missing column is Unknown.
func Classify(kind Kind, values []Value) SemanticType {
	if allMissing(values) {
		return TypeUnknown
	}
	if allDates(kind, values) {
		return TypeDate
	}

	switch kind {
	case KindFloat64:
		return TypeDouble
	case KindFloat32:
		return TypeFloat
	case KindInt:
		return classifyIntegral(values)
	case KindDate:
		return TypeDate
	case KindObject:
		// Object storage holds raw strings; numeric-looking entries mixed
		// into a string column do not stop it being text.
		return TypeText
	}
	return TypeUnknown
}

// ClassifyVector infers the semantic type of a vector-dataset attribute
// column. Identical to Classify except for untyped storage, where only a
// single value is sampled and wide text is unsupported by the format.
func ClassifyVector(kind Kind, values []Value) SemanticType {
	if allMissing(values) {
		return TypeUnknown
	}
	if allDates(kind, values) {
		return TypeDate
	}

	switch kind {
	case KindFloat64:
		return TypeDouble
	case KindFloat32:
		return TypeFloat
	case KindInt:
		return classifyIntegral(values)
	case KindDate:
		return TypeDate
	case KindObject:
		sample, ok := firstNonMissing(values)
		if !ok {
			return TypeUnknown
		}
		if utf8.ValidString(sample.Raw) && len(sample.Raw) < maxVectorTextBytes {
			return TypeText
		}
		return TypeUnknown
	}
	return TypeUnknown
}

// classifyIntegral splits integral columns on the signed 16-bit range.
func classifyIntegral(values []Value) SemanticType {
	minV, maxV, ok := (Column{Values: values}).MinMax()
	if !ok {
		return TypeUnknown
	}
	if minV >= shortIntegerMin && maxV <= shortIntegerMax {
		return TypeShortInteger
	}
	return TypeLongInteger
}

// allDates reports whether every non-missing value parses as a calendar date.
func allDates(kind Kind, values []Value) bool {
	seen := false
	for _, v := range values {
		if v.Missing {
			continue
		}
		if _, ok := ParseDate(v, kind); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func allMissing(values []Value) bool {
	for _, v := range values {
		if !v.Missing {
			return false
		}
	}
	return true
}

func firstNonMissing(values []Value) (Value, bool) {
	for _, v := range values {
		if !v.Missing {
			return v, true
		}
	}
	return Value{}, false
}
