package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Scale      ScaleConfig      `json:"scale"`
	Display    DisplayConfig    `json:"display"`
	Annotation AnnotationConfig `json:"annotation"`
	Detection  DetectionConfig  `json:"detection"`
}

// ScaleConfig holds the pixel-to-micrometer conversion defaults
type ScaleConfig struct {
	// DefaultUmPerPx applies until the user calibrates: 400 µm over 298 px.
	DefaultUmPerPx float64 `json:"default_um_per_px"`
	KnownLengthUm  float64 `json:"known_length_um"`
	SettingsPath   string  `json:"settings_path"`
}

// DisplayConfig holds the drawing surface limits
type DisplayConfig struct {
	MaxWidth int `json:"max_width"`
}

// AnnotationConfig holds the overlay drawing style
type AnnotationConfig struct {
	StrokeWidth int    `json:"stroke_width"`
	Color       string `json:"color"`
	// FontSize in pixels; 0 scales with the image width
	FontSize float64 `json:"font_size"`
}

// DetectionConfig holds the scale bar detection backend settings
type DetectionConfig struct {
	Backend string `json:"backend"`
	Model   string `json:"model"`
	URL     string `json:"url"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Scale: ScaleConfig{
			DefaultUmPerPx: 1.342281879,
			KnownLengthUm:  400,
			SettingsPath:   "settings.json",
		},
		Display: DisplayConfig{
			MaxWidth: 900,
		},
		Annotation: AnnotationConfig{
			StrokeWidth: 3,
			Color:       "#ff0000",
			FontSize:    0,
		},
		Detection: DetectionConfig{
			Backend: "ollama",
			Model:   "openbmb/minicpm-v4.5",
			URL:     "",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
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
	if c.Scale.DefaultUmPerPx <= 0 {
		return fmt.Errorf("scale.default_um_per_px must be positive")
	}

	if c.Scale.KnownLengthUm <= 0 {
		return fmt.Errorf("scale.known_length_um must be positive")
	}

	if c.Display.MaxWidth < 100 {
		return fmt.Errorf("display.max_width must be at least 100")
	}

	if c.Annotation.StrokeWidth < 1 {
		return fmt.Errorf("annotation.stroke_width must be positive")
	}

	if _, err := ParseHexColor(c.Annotation.Color); err != nil {
		return fmt.Errorf("annotation.color: %w", err)
	}

	switch c.Detection.Backend {
	case "ollama", "llamacpp", "heuristic":
	default:
		return fmt.Errorf("detection.backend must be ollama, llamacpp or heuristic")
	}

	return nil
}

// ParseHexColor parses a "#rrggbb" or "#rgb" color string
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var r, g, b uint8
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		r, g, b = r*17, g*17, b*17
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "micromeasure", "config.json")
}
