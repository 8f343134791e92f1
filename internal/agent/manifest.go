// Package agent hosts the conversational boundary: profile manifests, chat
// handling, and geodata narration on top of the processing pipeline.
package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Well-known profile names.
const (
	ProfileAssistant = "gis-assistant"
	ProfileReader    = "geofile-reader"
)

// Profile describes one agent persona.
type Profile struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Manifest is the YAML document listing available profiles.
type Manifest struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadManifest reads a profile manifest from disk. A missing file yields the
// built-in defaults so the binaries run without any configuration.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultManifest(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Profiles) == 0 {
		return nil, fmt.Errorf("manifest %s defines no profiles", path)
	}
	return &m, nil
}

// DefaultManifest returns the two built-in personas.
func DefaultManifest() *Manifest {
	return &Manifest{Profiles: []Profile{
		{
			Name:        ProfileAssistant,
			Description: "general GIS question answering with memory recall",
			SystemPrompt: "You are a GIS assistant. Answer questions about geographic " +
				"data, coordinate systems and spatial analysis. When context from " +
				"previously processed files is provided, ground your answer in it " +
				"and say when the context is insufficient. Be concise.",
		},
		{
			Name:        ProfileReader,
			Description: "narrates geodata processing reports",
			SystemPrompt: "You are a geodata file reader. You are given the analysis " +
				"report of a file that was just processed. Summarize what the file " +
				"contains in plain language: record counts, coordinate coverage, " +
				"notable fields. Do not invent values that are not in the report.",
		},
	}}
}

// Find returns the named profile.
func (m *Manifest) Find(name string) (Profile, bool) {
	for _, p := range m.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
