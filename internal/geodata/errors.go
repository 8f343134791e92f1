package geodata

import (
	"errors"
	"fmt"
)

// FailureKind is the closed enumeration of ingestion failure kinds.
// Every failure raised inside a processor carries exactly one kind; the
// remediation factory switches over it exhaustively.
type FailureKind int

const (
	KindUnclassified FailureKind = iota
	KindFileNotFound
	KindUnsupportedExtension
	KindInvalidValue
	KindCRSFailure
	KindDataSourceFailure
	KindParseFailure
	KindPermissionFailure
)

// Code returns the machine-readable error code for the kind.
func (k FailureKind) Code() string {
	switch k {
	case KindFileNotFound:
		return "file_not_found"
	case KindUnsupportedExtension:
		return "unsupported_extension"
	case KindInvalidValue:
		return "invalid_value"
	case KindCRSFailure:
		return "crs_failure"
	case KindDataSourceFailure:
		return "data_source_failure"
	case KindParseFailure:
		return "parse_failure"
	case KindPermissionFailure:
		return "permission_failure"
	default:
		return "unclassified"
	}
}

// ValueReason is the structured sub-cause of an invalid-value failure,
// set at the point of failure rather than sniffed from message text.
type ValueReason int

const (
	ReasonNone ValueReason = iota
	// ReasonCoordinatesUndetectable: no inference stage produced a
	// coordinate assignment.
	ReasonCoordinatesUndetectable
	// ReasonNonNumericCoordinate: an assigned coordinate column failed
	// numeric coercion.
	ReasonNonNumericCoordinate
	// ReasonBadValue: a caller-supplied column name or index did not
	// resolve, or a value was otherwise out of contract.
	ReasonBadValue
)

// SourceReason is the structured sub-cause of a data-source failure.
type SourceReason int

const (
	SourceUnknown SourceReason = iota
	// SourceMissingCompanion: a shapefile companion (.shx/.dbf) is absent.
	SourceMissingCompanion
	// SourceLocked: the file is held open elsewhere or unreadable.
	SourceLocked
	// SourceMismatchedExtension: the content does not match the extension.
	SourceMismatchedExtension
	// SourceEmpty: the source contains no records.
	SourceEmpty
)

// Failure is the typed error every processor raises. The dispatcher never
// surfaces it raw; it always passes through the remediation factory first.
type Failure struct {
	Kind         FailureKind
	Reason       ValueReason
	SourceReason SourceReason
	Path         string
	Extension    string
	Column       string
	Axis         string
	Err          error
}

func (f *Failure) Error() string {
	msg := f.Kind.Code()
	if f.Path != "" {
		msg += ": " + f.Path
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts the Failure from err, wrapping foreign errors as
// unclassified so the remediation switch stays total.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindUnclassified, Err: err}
}

func newFileNotFound(path string, err error) *Failure {
	return &Failure{Kind: KindFileNotFound, Path: path, Err: err}
}

func newUnsupportedExtension(path, ext string) *Failure {
	return &Failure{
		Kind:      KindUnsupportedExtension,
		Path:      path,
		Extension: ext,
		Err:       fmt.Errorf("unsupported file extension %q", ext),
	}
}

func newInvalidValue(reason ValueReason, path string, err error) *Failure {
	return &Failure{Kind: KindInvalidValue, Reason: reason, Path: path, Err: err}
}

// newCoordinateValidation flags a coordinate column that failed numeric
// coercion, naming the column and axis.
func newCoordinateValidation(path, column, axis string) *Failure {
	return &Failure{
		Kind:   KindInvalidValue,
		Reason: ReasonNonNumericCoordinate,
		Path:   path,
		Column: column,
		Axis:   axis,
		Err:    fmt.Errorf("%s column %q contains non-numeric data", axis, column),
	}
}

func newCRSFailure(path string, err error) *Failure {
	return &Failure{Kind: KindCRSFailure, Path: path, Err: err}
}

func newDataSourceFailure(reason SourceReason, path string, err error) *Failure {
	return &Failure{Kind: KindDataSourceFailure, SourceReason: reason, Path: path, Err: err}
}

func newParseFailure(path string, err error) *Failure {
	return &Failure{Kind: KindParseFailure, Path: path, Err: err}
}

func newPermissionFailure(path string, err error) *Failure {
	return &Failure{Kind: KindPermissionFailure, Path: path, Err: err}
}
