package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/sketchpad/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Canvas     CanvasConfig     `json:"canvas"`
	Augment    AugmentConfig    `json:"augment"`
	Export     ExportConfig     `json:"export"`
	Classifier ClassifierConfig `json:"classifier"`
	Samples    SamplesConfig    `json:"samples"`
}

// CanvasConfig holds the native drawing surface size
type CanvasConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AugmentConfig holds configuration for data set augmentation
type AugmentConfig struct {
	ImageSize int    `json:"image_size"`
	Blur      string `json:"blur"`
	PlanFile  string `json:"plan_file"`
}

// ExportConfig holds configuration for written images
type ExportConfig struct {
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Prefix    string `json:"prefix"`
}

// ClassifierConfig holds configuration for the vision model backend
type ClassifierConfig struct {
	Backend   string `json:"backend"`
	URL       string `json:"url"`
	Model     string `json:"model"`
	InputSize int    `json:"input_size"`
	SendSize  int    `json:"send_size"`
}

// SamplesConfig holds configuration for sample collection
type SamplesConfig struct {
	Dir    string   `json:"dir"`
	Labels []string `json:"labels"`
}

// Default returns a configuration with default values
func Default() *Config {
	labels := make([]string, 0, len(types.AllClasses()))
	for _, c := range types.AllClasses() {
		labels = append(labels, string(c))
	}

	return &Config{
		Canvas: CanvasConfig{
			Width:  300,
			Height: 300,
		},
		Augment: AugmentConfig{
			ImageSize: 250,
			Blur:      "imaging",
		},
		Export: ExportConfig{
			Format:    "png",
			Width:     300,
			Height:    300,
			Quality:   90,
			OutputDir: "./output",
		},
		Classifier: ClassifierConfig{
			Backend:   "llamacpp",
			Model:     "openbmb/minicpm-v4.5",
			InputSize: 224,
			SendSize:  448,
		},
		Samples: SamplesConfig{
			Dir:    "./training-data",
			Labels: labels,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Missing keys keep
// their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		return fmt.Errorf("canvas.width and canvas.height must be positive")
	}

	if c.Augment.ImageSize < 1 {
		return fmt.Errorf("augment.image_size must be positive")
	}

	switch c.Augment.Blur {
	case "imaging", "bild":
	default:
		return fmt.Errorf("augment.blur must be imaging or bild, got %q", c.Augment.Blur)
	}

	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		return fmt.Errorf("export.quality must be between 1 and 100")
	}

	if c.Export.Width < 0 || c.Export.Height < 0 {
		return fmt.Errorf("export.width and export.height cannot be negative")
	}

	switch c.Classifier.Backend {
	case "ollama", "llamacpp":
	default:
		return fmt.Errorf("classifier.backend must be ollama or llamacpp, got %q", c.Classifier.Backend)
	}

	if c.Classifier.InputSize < 1 {
		return fmt.Errorf("classifier.input_size must be positive")
	}

	if len(c.Samples.Labels) == 0 {
		return fmt.Errorf("samples.labels cannot be empty")
	}

	for _, l := range c.Samples.Labels {
		if _, ok := types.ParseClass(l); !ok {
			return fmt.Errorf("samples.labels: unknown label %q", l)
		}
	}

	return nil
}

// Labels returns the configured sample labels
func (c *Config) Labels() []types.Class {
	out := make([]types.Class, 0, len(c.Samples.Labels))
	for _, l := range c.Samples.Labels {
		if class, ok := types.ParseClass(l); ok {
			out = append(out, class)
		}
	}
	return out
}

// ExportOptions returns the export section as exporter options
func (c *Config) ExportOptions() types.ExportOptions {
	return types.ExportOptions{
		Width:    c.Export.Width,
		Height:   c.Export.Height,
		Format:   c.Export.Format,
		Quality:  c.Export.Quality,
		Lossless: c.Export.Lossless,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "sketchpad", "config.json")
}
