package geodata

import (
	"strconv"
	"strings"
	"testing"
)

func values(raw ...string) []Value {
	out := make([]Value, len(raw))
	for i, s := range raw {
		out[i] = NewValue(s)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		values []Value
		want   SemanticType
	}{
		{
			name:   "short integer within 16-bit range",
			kind:   KindInt,
			values: values("-32768", "0", "32767"),
			want:   TypeShortInteger,
		},
		{
			name:   "long integer below 16-bit minimum",
			kind:   KindInt,
			values: values("-32769", "0"),
			want:   TypeLongInteger,
		},
		{
			name:   "long integer above 16-bit maximum",
			kind:   KindInt,
			values: values("0", "32768"),
			want:   TypeLongInteger,
		},
		{
			name:   "double precision storage",
			kind:   KindFloat64,
			values: values("1.5", "2.25"),
			want:   TypeDouble,
		},
		{
			name:   "single precision storage",
			kind:   KindFloat32,
			values: values("1.5", "2.25"),
			want:   TypeFloat,
		},
		{
			name:   "iso dates",
			kind:   KindObject,
			values: values("2023-01-15", "2023-06-30"),
			want:   TypeDate,
		},
		{
			name:   "declared date storage with dbf encoding",
			kind:   KindDate,
			values: values("20230115", "20230630"),
			want:   TypeDate,
		},
		{
			name:   "plain strings",
			kind:   KindObject,
			values: values("alpha", "beta"),
			want:   TypeText,
		},
		{
			name:   "mixed strings and numbers",
			kind:   KindObject,
			values: values("alpha", "42"),
			want:   TypeText,
		},
		{
			name:   "all missing",
			kind:   KindObject,
			values: values("", "NA", "null"),
			want:   TypeUnknown,
		},
		{
			name:   "dates dominate declared numeric storage",
			kind:   KindInt,
			values: values("20230115"),
			want:   TypeDate,
		},
		{
			name:   "numeric identifiers are not dates",
			kind:   KindInt,
			values: values("10001", "10002"),
			want:   TypeShortInteger,
		},
		{
			name:   "eight-digit numbers without a valid date stay integers",
			kind:   KindInt,
			values: values("12345678"),
			want:   TypeLongInteger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.kind, tt.values)
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}

			// Classification is deterministic for identical input.
			if again := Classify(tt.kind, tt.values); again != got {
				t.Errorf("Classify() second run = %q, first run %q", again, got)
			}
		})
	}
}

func TestClassifyVector(t *testing.T) {
	wide := strings.Repeat("x", 300)

	tests := []struct {
		name   string
		kind   Kind
		values []Value
		want   SemanticType
	}{
		{
			name:   "short text sample",
			kind:   KindObject,
			values: values("district A", "district B"),
			want:   TypeText,
		},
		{
			name:   "text beyond attribute width limit",
			kind:   KindObject,
			values: values(wide),
			want:   TypeUnknown,
		},
		{
			name:   "text at exactly the limit",
			kind:   KindObject,
			values: values(strings.Repeat("x", 254)),
			want:   TypeUnknown,
		},
		{
			name:   "text one byte under the limit",
			kind:   KindObject,
			values: values(strings.Repeat("x", 253)),
			want:   TypeText,
		},
		{
			name:   "only the first non-missing value is sampled",
			kind:   KindObject,
			values: values("", "short", wide),
			want:   TypeText,
		},
		{
			name:   "declared float storage",
			kind:   KindFloat64,
			values: values("3.14"),
			want:   TypeDouble,
		},
		{
			name:   "all missing",
			kind:   KindObject,
			values: values("", ""),
			want:   TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyVector(tt.kind, tt.values); got != tt.want {
				t.Errorf("ClassifyVector() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   Kind
	}{
		{"integers", values("1", "2", "3"), KindInt},
		{"floats", values("1.5", "2"), KindFloat64},
		{"exponent notation is not integral", values("1e3"), KindFloat64},
		{"strings", values("a", "b"), KindObject},
		{"all missing", values("", "NA"), KindObject},
		{"integers with gaps", values("1", "", "3"), KindInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferKind(tt.values); got != tt.want {
				t.Errorf("inferKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyIntegralBoundaries(t *testing.T) {
	for _, n := range []int{-32768, 32767} {
		if got := classifyIntegral(values(strconv.Itoa(n))); got != TypeShortInteger {
			t.Errorf("classifyIntegral(%d) = %q, want %q", n, got, TypeShortInteger)
		}
	}
	for _, n := range []int{-32769, 32768} {
		if got := classifyIntegral(values(strconv.Itoa(n))); got != TypeLongInteger {
			t.Errorf("classifyIntegral(%d) = %q, want %q", n, got, TypeLongInteger)
		}
	}
}
