package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable that crosses the pipeline boundary. There are
// no hidden defaults inside the stages themselves: whatever is set here is
// what the detector and the deskewer run with.
type Config struct {
	InputPath string `yaml:"input"`
	OutputDir string `yaml:"output_dir"`

	// Rasterization
	DPI int `yaml:"dpi"`

	// Skew correction
	MaxSkewAngle float64 `yaml:"max_skew_angle"`

	// Region detection
	DilationX        int     `yaml:"dilation_x"`
	DilationY        int     `yaml:"dilation_y"`
	MinContourArea   int     `yaml:"min_contour_area"`
	ImageAreaPercent float64 `yaml:"image_area_percent"`
	MinImageSide     int     `yaml:"min_image_side"`

	// Debug rendering
	SaveDebug bool `yaml:"save_debug"`

	// Extraction
	EnableOCR   bool   `yaml:"ocr"`
	OCRLanguage string `yaml:"ocr_language"`

	// Workers is the number of concurrent page workers; 0 means auto-sized
	// from CPU count and available memory.
	Workers int `yaml:"workers"`
}

// Default returns the parameter set the CLI starts from, tuned for 300 DPI
// scans: dilation kernels that group words into paragraph blocks, a 150px²
// noise floor and a 1.5% page-area threshold for embedded images.
func Default() *Config {
	return &Config{
		DPI:              300,
		MaxSkewAngle:     15.0,
		DilationX:        45,
		DilationY:        15,
		MinContourArea:   150,
		ImageAreaPercent: 1.5,
		MinImageSide:     50,
		SaveDebug:        true,
		OCRLanguage:      "en",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects caller contract violations before any page is touched.
func (c *Config) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.MaxSkewAngle <= 0 {
		return fmt.Errorf("max skew angle must be positive, got %g", c.MaxSkewAngle)
	}
	if c.DilationX < 1 || c.DilationY < 1 {
		return fmt.Errorf("dilation kernel sizes must be at least 1, got (%d, %d)", c.DilationX, c.DilationY)
	}
	if c.MinContourArea < 0 {
		return fmt.Errorf("min contour area must not be negative, got %d", c.MinContourArea)
	}
	if c.ImageAreaPercent < 0 {
		return fmt.Errorf("image area percent must not be negative, got %g", c.ImageAreaPercent)
	}
	if c.MinImageSide < 0 {
		return fmt.Errorf("min image side must not be negative, got %d", c.MinImageSide)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
