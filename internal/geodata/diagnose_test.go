package geodata

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticRenderLayout(t *testing.T) {
	d := &Diagnostic{
		Cause:       "something broke",
		Findings:    []string{"first finding", "second finding"},
		Suggestions: []string{"try this"},
	}

	text := d.Render()
	lines := strings.Split(text, "\n")

	require.Len(t, lines, 7)
	assert.Equal(t, "■ cause", lines[0])
	assert.Equal(t, "something broke", lines[1])
	assert.Equal(t, "▼ findings", lines[2])
	assert.Equal(t, "first finding", lines[3])
	assert.Equal(t, "second finding", lines[4])
	assert.Equal(t, "⚙ suggestions", lines[5])
	assert.Equal(t, "try this", lines[6])
}

func TestHandleCoversEveryKind(t *testing.T) {
	r := NewRemediator(&recordingNotifier{}, testLogger(), nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		err       error
		wantCause string
	}{
		{"file not found", newFileNotFound("/x.csv", os.ErrNotExist), "file path does not exist"},
		{"unsupported extension", newUnsupportedExtension("/x.json", ".json"), "unsupported file format: .json"},
		{"undetectable coordinates", newInvalidValue(ReasonCoordinatesUndetectable, "/x.csv", errors.New("no luck")), "coordinate fields undetectable"},
		{"non-numeric coordinate", newCoordinateValidation("/x.csv", "addr", "longitude"), "coordinate field failed validation"},
		{"bad value", newInvalidValue(ReasonBadValue, "/x.csv", errors.New("index 9 out of range")), "invalid value"},
		{"data source", newDataSourceFailure(SourceMissingCompanion, "/x.shp", errors.New("no .dbf")), "data source could not be read"},
		{"parse", newParseFailure("/x.csv", errors.New("bad quoting")), "tabular file could not be parsed"},
		{"permission", newPermissionFailure("/x.csv", os.ErrPermission), "file access denied"},
		{"unclassified", errors.New("anything"), "unclassified failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, diag := r.Handle(ctx, "/x", tt.err)
			assert.Nil(t, ds)
			require.NotNil(t, diag)
			assert.Equal(t, tt.wantCause, diag.Cause)
			assert.NotEmpty(t, diag.Findings)
			assert.NotEmpty(t, diag.Suggestions)
		})
	}
}

func TestDiagnoseNonNumericCoordinateNamesColumn(t *testing.T) {
	f := newCoordinateValidation("/x.csv", "addr", "longitude")
	diag := diagnoseInvalidValue(f)

	assert.Contains(t, diag.Findings[0], `longitude column "addr"`)
}

func TestDiagnoseUndetectableSuggestsSynonyms(t *testing.T) {
	f := newInvalidValue(ReasonCoordinatesUndetectable, "/x.csv", errors.New("no"))
	diag := diagnoseInvalidValue(f)

	text := strings.Join(diag.Suggestions, "\n")
	assert.Contains(t, text, "lon_col")
	assert.Contains(t, text, "经度")
	assert.Contains(t, text, "纬度")
}

func TestRemediateCRSRecoversAndRestoresSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writePointShapefile(t, dir)
	sidecar := SidecarPath(path)
	garbage := "not a projection at all"
	require.NoError(t, os.WriteFile(sidecar, []byte(garbage), 0644))

	notifier := &recordingNotifier{}
	vector := NewVectorProcessor(notifier, testLogger())
	r := NewRemediator(notifier, testLogger(), vector.Load)

	_, err := vector.Load(context.Background(), path)
	require.Error(t, err)

	ds, diag := r.Handle(context.Background(), path, err)
	require.Nil(t, diag)
	require.NotNil(t, ds)
	assert.Equal(t, CRSUndefined, ds.CRS)

	// The sidecar is restored byte for byte after the retry.
	restored, readErr := os.ReadFile(sidecar)
	require.NoError(t, readErr)
	assert.Equal(t, garbage, string(restored))

	pushed := notifier.all()
	assert.Contains(t, pushed, "coordinate system definition error")
	assert.Contains(t, pushed, "attempting automatic repair")
	assert.Contains(t, pushed, "coordinate system after removing invalid sidecar: undefined")
}

func TestRemediateCRSTerminalWhenRetryFails(t *testing.T) {
	r := NewRemediator(&recordingNotifier{}, testLogger(),
		func(ctx context.Context, path string) (*Dataset, error) {
			return nil, errors.New("still broken")
		})

	failure := newCRSFailure("/data/x.shp", errors.New("sidecar definition is empty"))
	ds, diag := r.Handle(context.Background(), "/data/x.shp", failure)

	assert.Nil(t, ds)
	require.NotNil(t, diag)
	assert.Equal(t, "coordinate system repair failed", diag.Cause)

	// Both the original and the retry error appear in the findings.
	text := strings.Join(diag.Findings, "\n")
	assert.Contains(t, text, "sidecar definition is empty")
	assert.Contains(t, text, "still broken")
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := dir + "/a.txt"
	dst := dir + "/b.txt"
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	require.NoError(t, moveFile(src, dst))

	_, err := os.Stat(src)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
