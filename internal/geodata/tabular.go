package geodata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

// Options carries the caller-supplied coordinate column identifiers, each a
// column name or a zero-based index.
type Options struct {
	LonColumn string
	LatColumn string
}

// Result is a processor's successful output: the structured analysis and
// its rendered report.
type Result struct {
	Analysis *Analysis
	Report   string
}

// tabularExtensions is the supported tabular file extension set.
var tabularExtensions = map[string]struct{}{
	".csv": {}, ".txt": {}, ".xlsx": {}, ".xls": {},
}

// TabularProcessor ingests delimited and spreadsheet point files.
type TabularProcessor struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewTabularProcessor creates a tabular processor.
func NewTabularProcessor(notifier notify.Notifier, logger *slog.Logger) *TabularProcessor {
	return &TabularProcessor{notifier: notifier, logger: logger}
}

// tabularState is the immutable per-stage pipeline context. Each stage
// returns a new state built from the previous one plus its own output.
type tabularState struct {
	path     string
	opts     Options
	ds       *Dataset
	assign   Assignment
	analysis *Analysis
	report   string
}

// Process runs the full tabular pipeline:
// load → coordinates assigned → classified → summarized → reported.
func (p *TabularProcessor) Process(ctx context.Context, path string, opts Options) (*Result, error) {
	st := tabularState{path: path, opts: opts}

	stages := []func(context.Context, tabularState) (tabularState, error){
		p.load,
		p.assignCoordinates,
		p.analyze,
		p.render,
	}
	for _, stage := range stages {
		var err error
		if st, err = stage(ctx, st); err != nil {
			return nil, err
		}
	}

	return &Result{Analysis: st.analysis, Report: st.report}, nil
}

// load validates the extension and reads the file into a Dataset.
func (p *TabularProcessor) load(ctx context.Context, st tabularState) (tabularState, error) {
	ext := strings.ToLower(filepath.Ext(st.path))
	if _, ok := tabularExtensions[ext]; !ok {
		return st, newUnsupportedExtension(st.path, ext)
	}

	var rows [][]string
	var err error
	switch ext {
	case ".csv":
		rows, err = readDelimited(st.path, ',')
	case ".txt":
		rows, err = readDelimited(st.path, '\t')
	default:
		rows, err = readSpreadsheet(st.path)
	}
	if err != nil {
		return st, err
	}
	if len(rows) == 0 {
		return st, newParseFailure(st.path, errors.New("no data rows"))
	}

	ds := buildDataset(st.path, ext, rows)
	p.logger.Info("tabular file loaded",
		"file", ds.Name, "rows", ds.Rows, "columns", len(ds.Columns), "header", ds.HasHeader)
	p.notifier.Send(ctx, fmt.Sprintf("loaded %s: %d rows, %d columns", ds.Name, ds.Rows, len(ds.Columns)))

	next := st
	next.ds = ds
	return next, nil
}

// assignCoordinates runs coordinate-field inference.
func (p *TabularProcessor) assignCoordinates(ctx context.Context, st tabularState) (tabularState, error) {
	assign, err := InferCoordinates(st.ds, st.opts.LonColumn, st.opts.LatColumn)
	if err != nil {
		return st, err
	}

	lonName := st.ds.Columns[assign.Lon].Name
	latName := st.ds.Columns[assign.Lat].Name
	p.logger.Info("coordinate columns assigned", "longitude", lonName, "latitude", latName)
	p.notifier.Send(ctx, fmt.Sprintf("coordinate columns: longitude=%s, latitude=%s", lonName, latName))

	next := st
	next.assign = assign
	return next, nil
}

// analyze classifies and summarizes every non-coordinate column.
func (p *TabularProcessor) analyze(_ context.Context, st tabularState) (tabularState, error) {
	ds, assign := st.ds, st.assign

	lonMin, lonMax, _ := ds.Columns[assign.Lon].MinMax()
	latMin, latMax, _ := ds.Columns[assign.Lat].MinMax()

	analysis := &Analysis{
		FileInfo: FileInfo{
			FileName:    ds.Name,
			FileType:    ds.Format,
			TotalPoints: ds.Rows,
			CoordinatesRange: &Bounds{
				MinLon: lonMin, MaxLon: lonMax,
				MinLat: latMin, MaxLat: latMax,
			},
		},
	}

	for i, col := range ds.Columns {
		if i == assign.Lon || i == assign.Lat {
			continue
		}
		sem := Classify(col.Kind, col.Values)
		if IsSystemField(col.Name) {
			analysis.Attributes.SystemFields = append(analysis.Attributes.SystemFields, SummarizeSystem(col, sem))
			continue
		}
		analysis.Attributes.Fields = append(analysis.Attributes.Fields, Summarize(col, sem, TabularSampleLimit))
	}

	next := st
	next.analysis = analysis
	return next, nil
}

// render produces the textual report.
func (p *TabularProcessor) render(_ context.Context, st tabularState) (tabularState, error) {
	next := st
	next.report = st.analysis.Render()
	return next, nil
}

// readDelimited loads a CSV or tab-separated file.
func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, newFileNotFound(path, err)
		case errors.Is(err, fs.ErrPermission):
			return nil, newPermissionFailure(path, err)
		default:
			return nil, newDataSourceFailure(SourceLocked, path, err)
		}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, newParseFailure(path, err)
	}
	if len(rows) == 0 {
		return nil, newParseFailure(path, errors.New("empty data"))
	}
	return rows, nil
}

// readSpreadsheet loads the first sheet of an OOXML workbook. Legacy binary
// .xls workbooks fail here and surface through the parse-failure diagnosis.
func readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, newFileNotFound(path, err)
		case errors.Is(err, fs.ErrPermission):
			return nil, newPermissionFailure(path, err)
		default:
			return nil, newParseFailure(path, err)
		}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newParseFailure(path, errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, newParseFailure(path, err)
	}
	return rows, nil
}

// buildDataset turns raw rows into a typed Dataset. The file is considered
// headerless when every cell of the first row is numeric or empty; such
// files get positional column names.
func buildDataset(path, ext string, rows [][]string) *Dataset {
	hasHeader := false
	for _, cell := range rows[0] {
		v := NewValue(cell)
		if !v.Missing && !v.IsNum {
			hasHeader = true
			break
		}
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var names []string
	data := rows
	if hasHeader {
		names = rows[0]
		data = rows[1:]
	}

	columns := make([]Column, width)
	for j := 0; j < width; j++ {
		name := strconv.Itoa(j)
		if hasHeader && j < len(names) {
			name = strings.TrimSpace(names[j])
		}

		values := make([]Value, len(data))
		for i, row := range data {
			if j < len(row) {
				values[i] = NewValue(row[j])
			} else {
				values[i] = Value{Missing: true}
			}
		}

		columns[j] = Column{
			Name:   name,
			Index:  j,
			Kind:   inferKind(values),
			Values: values,
		}
	}

	return &Dataset{
		Path:      path,
		Name:      filepath.Base(path),
		Format:    strings.TrimPrefix(ext, "."),
		Columns:   columns,
		Rows:      len(data),
		HasHeader: hasHeader,
	}
}
