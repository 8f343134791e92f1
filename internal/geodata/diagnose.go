package geodata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

// Diagnostic is the structured failure report: a cause, technical findings,
// and remediation suggestions. Immutable once built.
type Diagnostic struct {
	Cause       string   `json:"cause"`
	Findings    []string `json:"findings"`
	Suggestions []string `json:"suggestions"`
}

// Render produces the fixed three-section text layout.
func (d *Diagnostic) Render() string {
	sections := []string{
		"■ cause\n" + d.Cause,
		"▼ findings\n" + strings.Join(d.Findings, "\n"),
		"⚙ suggestions\n" + strings.Join(d.Suggestions, "\n"),
	}
	return strings.Join(sections, "\n")
}

// Remediator maps a pipeline failure to its diagnostic handler. Exactly one
// handler per failure kind; only the CRS handler attempts recovery.
type Remediator struct {
	notifier notify.Notifier
	logger   *slog.Logger

	// reread loads a vector dataset again after the sidecar has been
	// moved aside. Injected by the dispatcher.
	reread func(ctx context.Context, path string) (*Dataset, error)
}

// NewRemediator creates a remediation factory.
func NewRemediator(notifier notify.Notifier, logger *slog.Logger,
	reread func(ctx context.Context, path string) (*Dataset, error)) *Remediator {
	return &Remediator{notifier: notifier, logger: logger, reread: reread}
}

// Handle dispatches a failure to its handler. A non-nil Dataset means
// remediation recovered and the pipeline may resume at classification;
// otherwise the Diagnostic is terminal.
func (r *Remediator) Handle(ctx context.Context, path string, err error) (*Dataset, *Diagnostic) {
	f := AsFailure(err)

	switch f.Kind {
	case KindFileNotFound:
		return nil, diagnoseFileNotFound(f)
	case KindUnsupportedExtension:
		return nil, diagnoseUnsupportedExtension(f)
	case KindInvalidValue:
		return nil, diagnoseInvalidValue(f)
	case KindCRSFailure:
		return r.remediateCRS(ctx, path, f)
	case KindDataSourceFailure:
		return nil, diagnoseDataSource(f)
	case KindParseFailure:
		return nil, diagnoseParse(f)
	case KindPermissionFailure:
		return nil, diagnosePermission(f)
	default:
		return nil, diagnoseUnclassified(f)
	}
}

func diagnoseFileNotFound(f *Failure) *Diagnostic {
	return &Diagnostic{
		Cause: "file path does not exist",
		Findings: []string{
			fmt.Sprintf("requested path: %s", f.Path),
			fmt.Sprintf("system error: %v", f.Err),
			"the path may contain special characters, or the file was moved or deleted",
		},
		Suggestions: []string{
			"check the path for typos, spaces or non-ASCII characters",
			"use an absolute path",
			"verify the file exists at the given location",
		},
	}
}

func diagnoseUnsupportedExtension(f *Failure) *Diagnostic {
	return &Diagnostic{
		Cause: fmt.Sprintf("unsupported file format: %s", f.Extension),
		Findings: []string{
			fmt.Sprintf("requested path: %s", f.Path),
			"only tabular (.csv/.txt/.xlsx/.xls) and shapefile (.shp) inputs are accepted",
		},
		Suggestions: []string{
			"convert the data to csv, txt, xlsx or shp and upload again",
		},
	}
}

func diagnoseInvalidValue(f *Failure) *Diagnostic {
	switch f.Reason {
	case ReasonCoordinatesUndetectable:
		return &Diagnostic{
			Cause: "coordinate fields undetectable",
			Findings: []string{
				"no column was named, positioned or distributed like a coordinate axis",
			},
			Suggestions: []string{
				"pass lon_col and lat_col explicitly (column name or zero-based index)",
				"or rename the longitude column to one of: 经度, longitude, lon, lng, x, X",
				"and the latitude column to one of: 纬度, latitude, lat, y, Y",
			},
		}
	case ReasonNonNumericCoordinate:
		return &Diagnostic{
			Cause: "coordinate field failed validation",
			Findings: []string{
				fmt.Sprintf("%s column %q contains non-numeric data", f.Axis, f.Column),
			},
			Suggestions: []string{
				"inspect the column for stray text or unit suffixes",
				"pass a different column via lon_col/lat_col",
			},
		}
	default:
		return &Diagnostic{
			Cause:       "invalid value",
			Findings:    []string{fmt.Sprintf("%v", f.Err)},
			Suggestions: []string{"check that the supplied parameters are within contract"},
		}
	}
}

func diagnoseDataSource(f *Failure) *Diagnostic {
	findings := []string{fmt.Sprintf("driver error: %v", f.Err)}
	switch f.SourceReason {
	case SourceMissingCompanion:
		findings = append(findings, "the shapefile is incomplete: a companion file (.shx/.dbf) is missing")
	case SourceLocked:
		findings = append(findings, "the file is held open by another program or unreadable")
	case SourceMismatchedExtension:
		findings = append(findings, "the file extension does not match the actual content")
	case SourceEmpty:
		findings = append(findings, "the source contains no records")
	default:
		findings = append(findings, "unknown data-source error; further diagnosis needed")
	}
	return &Diagnostic{
		Cause:    "data source could not be read",
		Findings: findings,
		Suggestions: []string{
			"check the file set is complete (.shp with .shx and .dbf)",
			"verify the file encoding with a text editor",
			"open the file in a GIS tool to confirm it is valid",
		},
	}
}

func diagnoseParse(f *Failure) *Diagnostic {
	return &Diagnostic{
		Cause: "tabular file could not be parsed",
		Findings: []string{
			fmt.Sprintf("parser error: %v", f.Err),
		},
		Suggestions: []string{
			"check the file encoding (try UTF-8 or GBK)",
			"verify the file is not truncated or corrupted",
			"check the delimiter is consistent across rows",
			"legacy .xls workbooks should be resaved as .xlsx",
		},
	}
}

func diagnosePermission(f *Failure) *Diagnostic {
	return &Diagnostic{
		Cause: "file access denied",
		Findings: []string{
			fmt.Sprintf("system error: %v", f.Err),
			"the file is locked by another program or restricted by permissions",
		},
		Suggestions: []string{
			"close other programs holding the file open",
			"check the file's access permissions",
		},
	}
}

func diagnoseUnclassified(f *Failure) *Diagnostic {
	return &Diagnostic{
		Cause:       "unclassified failure",
		Findings:    []string{fmt.Sprintf("raw error: %v", f.Err)},
		Suggestions: []string{"inspect the log for the full error context"},
	}
}

// remediateCRS is the only handler with an effect beyond reporting: it moves
// the sidecar definition aside, re-reads the dataset without it, and restores
// the sidecar afterwards regardless of the retry outcome.
func (r *Remediator) remediateCRS(ctx context.Context, path string, f *Failure) (*Dataset, *Diagnostic) {
	interim := &Diagnostic{
		Cause: "coordinate system definition error",
		Findings: []string{
			fmt.Sprintf("original error: %v", f.Err),
			"the .prj sidecar is missing, corrupted, or uses a non-standard definition",
		},
		Suggestions: []string{
			"attempting automatic repair...",
		},
	}
	r.notifier.Send(ctx, interim.Render())
	r.logger.Info("attempting crs remediation", "path", path)

	sidecar := SidecarPath(path)
	parked := ""
	if _, err := os.Stat(sidecar); err == nil {
		parked = filepath.Join(os.TempDir(), fmt.Sprintf("%s.%s.prj", filepath.Base(path), uuid.NewString()))
		if err := moveFile(sidecar, parked); err != nil {
			r.logger.Error("failed to park sidecar", "error", err)
			return nil, crsTerminal(f, err)
		}
		r.logger.Info("sidecar parked", "from", sidecar, "to", parked)
		defer func() {
			if err := moveFile(parked, sidecar); err != nil {
				r.logger.Error("failed to restore sidecar", "error", err, "parked", parked)
				return
			}
			r.logger.Info("sidecar restored", "path", sidecar)
		}()
	}

	ds, err := r.reread(ctx, path)
	if err != nil {
		return nil, crsTerminal(f, err)
	}

	r.notifier.Send(ctx, fmt.Sprintf(
		"successfully read %s\n- coordinate system after removing invalid sidecar: %s",
		filepath.Base(path), ds.CRS))

	return ds, nil
}

// crsTerminal builds the terminal diagnosis carrying both the original and
// the retry error.
func crsTerminal(f *Failure, retryErr error) *Diagnostic {
	return &Diagnostic{
		Cause: "coordinate system repair failed",
		Findings: []string{
			fmt.Sprintf("original error: %v", f.Err),
			fmt.Sprintf("error after removing sidecar: %v", retryErr),
			"the coordinate values themselves may be out of range, or the geometry is damaged",
		},
		Suggestions: []string{
			"inspect the coordinate value range with a text editor",
			"infer the correct reference system from the data source",
			"redefine the projection in a GIS tool and export again",
		},
	}
}

// moveFile moves a file across filesystems by copy-and-remove.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
