package geodata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

// CRSUndefined is the reference system reported when no sidecar definition
// is present.
const CRSUndefined = "undefined"

// wktTokens are the WKT root keywords a sidecar definition may start with.
var wktTokens = []string{
	"GEOGCS", "PROJCS", "GEOGCRS", "PROJCRS", "GEODCRS",
	"COMPD_CS", "COMPOUNDCRS", "LOCAL_CS", "VERT_CS",
}

// VectorProcessor ingests geometry-vector files (ESRI shapefiles).
type VectorProcessor struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewVectorProcessor creates a vector processor.
func NewVectorProcessor(notifier notify.Notifier, logger *slog.Logger) *VectorProcessor {
	return &VectorProcessor{notifier: notifier, logger: logger}
}

// Process runs the full vector pipeline: load → classified → summarized →
// reported. Geometry is intrinsic, so there is no coordinate inference.
func (p *VectorProcessor) Process(ctx context.Context, path string) (*Result, error) {
	ds, err := p.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, ds)
}

// Load reads a shapefile and its sidecar reference-system definition into a
// Dataset. A missing sidecar yields an undefined reference system; an
// unreadable one raises a CRS failure.
func (p *VectorProcessor) Load(ctx context.Context, path string) (*Dataset, error) {
	crs, err := readSidecarCRS(path)
	if err != nil {
		return nil, err
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, classifyDriverError(path, err)
	}
	defer r.Close()

	fields := r.Fields()
	columns := make([]Column, len(fields))
	for j, f := range fields {
		columns[j] = Column{
			Name:  f.String(),
			Index: j,
			Kind:  dbfKind(f),
		}
	}

	var (
		extent    *Bounds
		kinds     []string
		kindsSeen = map[string]struct{}{}
		features  int
	)
	for r.Next() {
		row, shape := r.Shape()
		features++

		if kind := shapeKind(shape); kind != "" {
			if _, dup := kindsSeen[kind]; !dup {
				kindsSeen[kind] = struct{}{}
				kinds = append(kinds, kind)
			}
			box := shape.BBox()
			b := Bounds{MinLon: box.MinX, MaxLon: box.MaxX, MinLat: box.MinY, MaxLat: box.MaxY}
			if extent == nil {
				extent = &b
			} else {
				extent.Extend(b)
			}
		}

		for j := range fields {
			columns[j].Values = append(columns[j].Values, NewValue(r.ReadAttribute(row, j)))
		}
	}
	if err := r.Err(); err != nil {
		return nil, classifyDriverError(path, err)
	}

	ds := &Dataset{
		Path:          path,
		Name:          filepath.Base(path),
		Format:        strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Columns:       columns,
		Rows:          features,
		HasHeader:     true,
		CRS:           crs,
		GeometryKinds: kinds,
		Extent:        extent,
		Features:      features,
	}

	p.logger.Info("vector file loaded",
		"file", ds.Name, "features", features, "crs", crs, "geometry_types", kinds)
	p.notifier.Send(ctx, fmt.Sprintf("loaded %s: %d features, crs=%s", ds.Name, features, crs))

	return ds, nil
}

// Analyze classifies and summarizes a loaded vector dataset. It is also the
// re-entry point after CRS remediation recovers a dataset.
func (p *VectorProcessor) Analyze(_ context.Context, ds *Dataset) (*Result, error) {
	analysis := &Analysis{
		FileInfo: FileInfo{
			FileName:         ds.Name,
			FileType:         ds.Format,
			TotalPoints:      ds.Features,
			CoordinatesRange: ds.Extent,
			CRS:              ds.CRS,
			GeometryTypes:    ds.GeometryKinds,
			FeatureCount:     ds.Features,
		},
	}

	// The geometry column is a special field, not run through the
	// generic classifier.
	features := ds.Features
	analysis.Attributes.Fields = append(analysis.Attributes.Fields, FieldStats{
		Name:     "geometry",
		Type:     TypeGeometry,
		Features: &features,
	})

	for _, col := range ds.Columns {
		sem := ClassifyVector(col.Kind, col.Values)
		if IsSystemField(col.Name) {
			analysis.Attributes.SystemFields = append(analysis.Attributes.SystemFields, SummarizeSystem(col, sem))
			continue
		}
		analysis.Attributes.Fields = append(analysis.Attributes.Fields, Summarize(col, sem, VectorSampleLimit))
	}

	return &Result{Analysis: analysis, Report: analysis.Render()}, nil
}

// SidecarPath returns the reference-system sidecar path for a vector file.
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
}

// readSidecarCRS reads and validates the .prj sidecar. Absence is not an
// error; malformed content is.
func readSidecarCRS(path string) (string, error) {
	data, err := os.ReadFile(SidecarPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CRSUndefined, nil
		}
		return "", newCRSFailure(path, fmt.Errorf("read sidecar: %w", err))
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", newCRSFailure(path, errors.New("sidecar definition is empty"))
	}
	for _, token := range wktTokens {
		if strings.HasPrefix(content, token) {
			return crsName(content), nil
		}
	}
	return "", newCRSFailure(path, fmt.Errorf("sidecar does not contain a WKT definition: %.40q", content))
}

// crsName extracts the quoted name of the WKT root node, falling back to
// the root keyword.
func crsName(wkt string) string {
	open := strings.Index(wkt, `["`)
	if open < 0 {
		return strings.FieldsFunc(wkt, func(r rune) bool { return r == '[' || r == ' ' })[0]
	}
	rest := wkt[open+2:]
	if close := strings.Index(rest, `"`); close > 0 {
		return rest[:close]
	}
	return wkt[:open]
}

// dbfKind maps a DBF field descriptor to a storage kind.
func dbfKind(f shp.Field) Kind {
	switch f.Fieldtype {
	case 'N':
		if f.Precision == 0 {
			return KindInt
		}
		return KindFloat64
	case 'F':
		return KindFloat64
	case 'D':
		return KindDate
	default:
		return KindObject
	}
}

// shapeKind names the geometry kind of a shape. Null shapes yield "".
func shapeKind(s shp.Shape) string {
	switch s.(type) {
	case *shp.Point, *shp.PointZ, *shp.PointM:
		return "Point"
	case *shp.MultiPoint, *shp.MultiPointZ, *shp.MultiPointM:
		return "MultiPoint"
	case *shp.PolyLine, *shp.PolyLineZ, *shp.PolyLineM:
		return "LineString"
	case *shp.Polygon, *shp.PolygonZ, *shp.PolygonM:
		return "Polygon"
	default:
		return ""
	}
}

// classifyDriverError converts an opaque shapefile-driver error into a
// structured data-source failure. The driver reports conditions only as
// message text, so the sub-cause is derived here, at the raise site.
func classifyDriverError(path string, err error) *Failure {
	if errors.Is(err, fs.ErrNotExist) {
		msg := err.Error()
		if strings.Contains(msg, ".dbf") || strings.Contains(msg, ".shx") {
			return newDataSourceFailure(SourceMissingCompanion, path, err)
		}
		return newFileNotFound(path, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return newDataSourceFailure(SourceLocked, path, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, ".shx") || strings.Contains(msg, ".dbf"):
		return newDataSourceFailure(SourceMissingCompanion, path, err)
	case strings.Contains(msg, "failed to open") || strings.Contains(msg, "locked"):
		return newDataSourceFailure(SourceLocked, path, err)
	case strings.Contains(msg, "unexpected eof") || strings.Contains(msg, "invalid") || strings.Contains(msg, "unrecognized"):
		return newDataSourceFailure(SourceMismatchedExtension, path, err)
	default:
		return newDataSourceFailure(SourceUnknown, path, err)
	}
}
