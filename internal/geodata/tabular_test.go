package geodata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTabularProcessExplicitColumns(t *testing.T) {
	path := writeFile(t, "points.csv",
		"lng,lat,name\n"+
			"116.4,39.9,A\n"+
			"121.5,31.2,B\n")

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	res, err := p.Process(context.Background(), path, Options{})
	require.NoError(t, err)

	info := res.Analysis.FileInfo
	assert.Equal(t, "points.csv", info.FileName)
	assert.Equal(t, "csv", info.FileType)
	assert.Equal(t, 2, info.TotalPoints)

	require.NotNil(t, info.CoordinatesRange)
	assert.Equal(t, 116.4, info.CoordinatesRange.MinLon)
	assert.Equal(t, 121.5, info.CoordinatesRange.MaxLon)
	assert.Equal(t, 31.2, info.CoordinatesRange.MinLat)
	assert.Equal(t, 39.9, info.CoordinatesRange.MaxLat)

	require.Len(t, res.Analysis.Attributes.Fields, 1)
	name := res.Analysis.Attributes.Fields[0]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, TypeText, name.Type)
	require.NotNil(t, name.UniqueCount)
	assert.Equal(t, 2, *name.UniqueCount)
	assert.Equal(t, []string{"A", "B"}, name.Samples)

	assert.Contains(t, res.Report, "field [name]: values A, B")
}

func TestTabularProcessTabDelimited(t *testing.T) {
	path := writeFile(t, "points.txt",
		"lon\tlat\tcount\n"+
			"116.4\t39.9\t5\n"+
			"117.2\t36.6\t7\n")

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	res, err := p.Process(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "txt", res.Analysis.FileInfo.FileType)
	require.Len(t, res.Analysis.Attributes.Fields, 1)
	assert.Equal(t, TypeShortInteger, res.Analysis.Attributes.Fields[0].Type)
}

func TestTabularProcessHeaderless(t *testing.T) {
	path := writeFile(t, "bare.csv",
		"116.4,39.9,12\n"+
			"121.5,31.2,34\n")

	notifier := &recordingNotifier{}
	p := NewTabularProcessor(notifier, testLogger())
	res, err := p.Process(context.Background(), path, Options{})
	require.NoError(t, err)

	// Positional fallback: column 0 is longitude, column 1 is latitude.
	assert.Contains(t, notifier.all(), "longitude=0, latitude=1")
	require.Len(t, res.Analysis.Attributes.Fields, 1)
	assert.Equal(t, "2", res.Analysis.Attributes.Fields[0].Name)
}

func TestTabularProcessSystemFields(t *testing.T) {
	path := writeFile(t, "points.csv",
		"id,lng,lat,label\n"+
			"1,116.4,39.9,A\n"+
			"2,121.5,31.2,B\n")

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	res, err := p.Process(context.Background(), path, Options{})
	require.NoError(t, err)

	require.Len(t, res.Analysis.Attributes.SystemFields, 1)
	sf := res.Analysis.Attributes.SystemFields[0]
	assert.Equal(t, "id", sf.Name)
	assert.Equal(t, TypeLongInteger, sf.Type)
	assert.Equal(t, 2, sf.Count)

	// The identifier must not also appear as a generic field.
	for _, f := range res.Analysis.Attributes.Fields {
		assert.NotEqual(t, "id", f.Name)
	}
}

func TestTabularProcessRaggedRows(t *testing.T) {
	// The csv reader rejects ragged rows; that is a parse failure, not a
	// crash.
	path := writeFile(t, "ragged.csv",
		"lng,lat,name\n"+
			"116.4,39.9\n")

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	_, err := p.Process(context.Background(), path, Options{})

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindParseFailure, f.Kind)
}

func TestTabularProcessEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	_, err := p.Process(context.Background(), path, Options{})

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindParseFailure, f.Kind)
}

func TestTabularProcessUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "data.json", `{"a": 1}`)

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	_, err := p.Process(context.Background(), path, Options{})

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindUnsupportedExtension, f.Kind)
	assert.Equal(t, ".json", f.Extension)
}

func TestTabularProcessSpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]any{
		{"经度", "纬度", "城市"},
		{116.4, 39.9, "北京"},
		{121.5, 31.2, "上海"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	res, err := p.Process(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "xlsx", res.Analysis.FileInfo.FileType)
	assert.Equal(t, 2, res.Analysis.FileInfo.TotalPoints)
	require.Len(t, res.Analysis.Attributes.Fields, 1)
	assert.Equal(t, "城市", res.Analysis.Attributes.Fields[0].Name)
}

func TestTabularProcessLegacyWorkbookFailsAsParse(t *testing.T) {
	// A fake legacy workbook: the extension says .xls but the content is
	// not OOXML, so loading surfaces as a parse failure.
	path := writeFile(t, "legacy.xls", "not a real workbook")

	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	_, err := p.Process(context.Background(), path, Options{})

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindParseFailure, f.Kind)
}

func TestBuildDatasetHeaderDetection(t *testing.T) {
	t.Run("any non-numeric first-row cell means header", func(t *testing.T) {
		ds := buildDataset("x.csv", ".csv", [][]string{
			{"116.4", "39.9", "name"},
			{"116.4", "39.9", "A"},
		})
		assert.True(t, ds.HasHeader)
		assert.Equal(t, 1, ds.Rows)
	})

	t.Run("all numeric first row means headerless", func(t *testing.T) {
		ds := buildDataset("x.csv", ".csv", [][]string{
			{"116.4", "39.9", "1"},
			{"121.5", "31.2", "2"},
		})
		assert.False(t, ds.HasHeader)
		assert.Equal(t, 2, ds.Rows)
		assert.Equal(t, "0", ds.Columns[0].Name)
	})

	t.Run("empty cells count toward headerless", func(t *testing.T) {
		ds := buildDataset("x.csv", ".csv", [][]string{
			{"116.4", ""},
			{"121.5", "31.2"},
		})
		assert.False(t, ds.HasHeader)
	})
}

func TestTabularProcessMissingFile(t *testing.T) {
	p := NewTabularProcessor(&recordingNotifier{}, testLogger())
	_, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "gone.csv"), Options{})

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, KindFileNotFound, f.Kind)
}
