package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/sketchpad/pkg/types"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 250, c.Augment.ImageSize)
	assert.Equal(t, 224, c.Classifier.InputSize)
	assert.Equal(t, types.AllClasses(), c.Labels())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	c := Default()
	c.Augment.Blur = "bild"
	c.Export.Format = "webp"
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"canvas": {"width": 640}}`), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 640, c.Canvas.Width)
	assert.Equal(t, 300, c.Canvas.Height)
	assert.Equal(t, "llamacpp", c.Classifier.Backend)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"canvas size", func(c *Config) { c.Canvas.Width = 0 }},
		{"augment size", func(c *Config) { c.Augment.ImageSize = -1 }},
		{"blur backend", func(c *Config) { c.Augment.Blur = "box" }},
		{"quality", func(c *Config) { c.Export.Quality = 101 }},
		{"export size", func(c *Config) { c.Export.Height = -5 }},
		{"backend", func(c *Config) { c.Classifier.Backend = "onnx" }},
		{"input size", func(c *Config) { c.Classifier.InputSize = 0 }},
		{"no labels", func(c *Config) { c.Samples.Labels = nil }},
		{"unknown label", func(c *Config) { c.Samples.Labels = []string{"heart", "pizza"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestExportOptions(t *testing.T) {
	c := Default()
	c.Export.Lossless = true
	opts := c.ExportOptions()
	assert.Equal(t, "png", opts.Format)
	assert.Equal(t, 300, opts.Width)
	assert.True(t, opts.Lossless)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.json", filepath.Base(GetConfigPath()))
}
