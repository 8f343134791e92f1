package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifestMissingFileYieldsDefaults(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	_, ok := m.Find(ProfileAssistant)
	assert.True(t, ok)
	_, ok = m.Find(ProfileReader)
	assert.True(t, ok)
}

func TestLoadManifestFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := `profiles:
  - name: gis-assistant
    description: custom assistant
    system_prompt: you answer GIS questions
  - name: geofile-reader
    description: custom reader
    system_prompt: you narrate reports
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Profiles, 2)

	p, ok := m.Find(ProfileAssistant)
	require.True(t, ok)
	assert.Equal(t, "you answer GIS questions", p.SystemPrompt)
}

func TestLoadManifestRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: []\n"), 0644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifestRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [unclosed"), 0644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestFindUnknownProfile(t *testing.T) {
	m := DefaultManifest()
	_, ok := m.Find("nonexistent")
	assert.False(t, ok)
}
