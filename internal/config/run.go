package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/banshee-data/terrain.report/internal/surface"
	"github.com/banshee-data/terrain.report/internal/terrain"
)

// DefaultConfigPath is the path to the canonical run defaults file.
const DefaultConfigPath = "config/terrain.defaults.json"

// Output formats accepted in RunConfig.Formats.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatJSON = "json"
)

// Offset policies accepted in RunConfig.Offset.
const (
	OffsetNone       = "none"
	OffsetRaiseByMax = "raise_by_max"
	OffsetMinToZero  = "min_to_zero"
)

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// RunConfig describes one terrain run: which surface to sample, how to
// light it and where the results go. Every field is optional; the Get*
// accessors supply defaults, so partial JSON or HCL files are safe.
type RunConfig struct {
	// Surface sampling
	Surface    *string  `json:"surface,omitempty" hcl:"surface,optional"`
	XMin       *float64 `json:"x_min,omitempty" hcl:"x_min,optional"`
	XMax       *float64 `json:"x_max,omitempty" hcl:"x_max,optional"`
	YMin       *float64 `json:"y_min,omitempty" hcl:"y_min,optional"`
	YMax       *float64 `json:"y_max,omitempty" hcl:"y_max,optional"`
	Resolution *float64 `json:"resolution,omitempty" hcl:"resolution,optional"`
	CellSize   *float64 `json:"cell_size,omitempty" hcl:"cell_size,optional"`
	Offset     *string  `json:"offset,omitempty" hcl:"offset,optional"` // none, raise_by_max, min_to_zero

	// Lighting
	AltitudeDeg *float64 `json:"altitude_deg,omitempty" hcl:"altitude_deg,optional"`
	AzimuthDeg  *float64 `json:"azimuth_deg,omitempty" hcl:"azimuth_deg,optional"`

	// Execution
	Workers *int `json:"workers,omitempty" hcl:"workers,optional"` // 0 = GOMAXPROCS

	// Output
	OutputDir       *string  `json:"output_dir,omitempty" hcl:"output_dir,optional"`
	Formats         []string `json:"formats,omitempty" hcl:"formats,optional"`
	ContourInterval *float64 `json:"contour_interval,omitempty" hcl:"contour_interval,optional"`
	Database        *string  `json:"database,omitempty" hcl:"database,optional"` // empty disables run history
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRunConfig returns a RunConfig with all fields unset.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// DefaultRunConfig returns a RunConfig with every field set to its default.
// It reproduces the classic demo: the peaks surface over [-3, 3]² at 0.1
// spacing, rescaled to unit cells and lit from the north-west at 45°.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Surface:         ptrString("peaks"),
		XMin:            ptrFloat64(-3),
		XMax:            ptrFloat64(3),
		YMin:            ptrFloat64(-3),
		YMax:            ptrFloat64(3),
		Resolution:      ptrFloat64(0.1),
		CellSize:        ptrFloat64(1),
		Offset:          ptrString(OffsetRaiseByMax),
		AltitudeDeg:     ptrFloat64(45),
		AzimuthDeg:      ptrFloat64(315),
		Workers:         ptrInt(0),
		OutputDir:       ptrString("plots"),
		Formats:         []string{FormatPNG, FormatJSON},
		ContourInterval: ptrFloat64(1),
		Database:        ptrString(""),
	}
}

// LoadRunConfig loads a RunConfig from a .json or .hcl file.
// The file must be under 1MB. Fields omitted from the file keep their
// defaults through the Get* accessors.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".hcl" {
		return nil, fmt.Errorf("config file must have .json or .hcl extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *RunConfig
	if ext == ".hcl" {
		cfg, err = parseHCL(data, cleanPath)
	} else {
		cfg, err = parseJSON(data)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseJSON(data []byte) (*RunConfig, error) {
	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

func parseHCL(data []byte, filename string) (*RunConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}

	cfg := EmptyRunConfig()
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *RunConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadRunConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the fields that are set.
func (c *RunConfig) Validate() error {
	if c.Surface != nil {
		if _, err := surface.Named(*c.Surface); err != nil {
			return err
		}
	}
	if c.GetXMax() <= c.GetXMin() {
		return fmt.Errorf("x_max (%v) must be greater than x_min (%v)", c.GetXMax(), c.GetXMin())
	}
	if c.GetYMax() <= c.GetYMin() {
		return fmt.Errorf("y_max (%v) must be greater than y_min (%v)", c.GetYMax(), c.GetYMin())
	}
	if c.Resolution != nil && !(*c.Resolution > 0) {
		return fmt.Errorf("resolution must be positive, got %v", *c.Resolution)
	}
	if c.CellSize != nil && !(*c.CellSize > 0) {
		return fmt.Errorf("cell_size must be positive, got %v", *c.CellSize)
	}
	if c.Offset != nil {
		if _, err := parseOffset(*c.Offset); err != nil {
			return err
		}
	}
	if err := c.ToLighting().Validate(); err != nil {
		return err
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	for _, f := range c.Formats {
		switch f {
		case FormatPNG, FormatHTML, FormatJSON:
		default:
			return fmt.Errorf("unknown output format %q (want %s, %s or %s)", f, FormatPNG, FormatHTML, FormatJSON)
		}
	}
	if c.ContourInterval != nil && !(*c.ContourInterval > 0) {
		return fmt.Errorf("contour_interval must be positive, got %v", *c.ContourInterval)
	}
	return nil
}

// GetSurface returns the surface name or the default.
func (c *RunConfig) GetSurface() string {
	if c.Surface == nil || *c.Surface == "" {
		return "peaks"
	}
	return *c.Surface
}

// GetXMin returns the x_min value or the default.
func (c *RunConfig) GetXMin() float64 {
	if c.XMin == nil {
		return -3
	}
	return *c.XMin
}

// GetXMax returns the x_max value or the default.
func (c *RunConfig) GetXMax() float64 {
	if c.XMax == nil {
		return 3
	}
	return *c.XMax
}

// GetYMin returns the y_min value or the default.
func (c *RunConfig) GetYMin() float64 {
	if c.YMin == nil {
		return -3
	}
	return *c.YMin
}

// GetYMax returns the y_max value or the default.
func (c *RunConfig) GetYMax() float64 {
	if c.YMax == nil {
		return 3
	}
	return *c.YMax
}

// GetResolution returns the resolution value or the default.
func (c *RunConfig) GetResolution() float64 {
	if c.Resolution == nil {
		return 0.1
	}
	return *c.Resolution
}

// GetCellSize returns the cell_size value or the default.
func (c *RunConfig) GetCellSize() float64 {
	if c.CellSize == nil {
		return 1
	}
	return *c.CellSize
}

// GetOffset returns the offset policy or the default.
func (c *RunConfig) GetOffset() string {
	if c.Offset == nil || *c.Offset == "" {
		return OffsetRaiseByMax
	}
	return *c.Offset
}

// GetAltitudeDeg returns the altitude_deg value or the default.
func (c *RunConfig) GetAltitudeDeg() float64 {
	if c.AltitudeDeg == nil {
		return 45
	}
	return *c.AltitudeDeg
}

// GetAzimuthDeg returns the azimuth_deg value or the default.
func (c *RunConfig) GetAzimuthDeg() float64 {
	if c.AzimuthDeg == nil {
		return 315
	}
	return *c.AzimuthDeg
}

// GetWorkers returns the workers value or the default (0, one per CPU).
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetOutputDir returns the output_dir value or the default.
func (c *RunConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "plots"
	}
	return *c.OutputDir
}

// GetFormats returns the output formats or the default (png and json).
func (c *RunConfig) GetFormats() []string {
	if len(c.Formats) == 0 {
		return []string{FormatPNG, FormatJSON}
	}
	return c.Formats
}

// HasFormat reports whether format f is requested.
func (c *RunConfig) HasFormat(f string) bool {
	for _, v := range c.GetFormats() {
		if v == f {
			return true
		}
	}
	return false
}

// GetContourInterval returns the contour_interval value or the default.
func (c *RunConfig) GetContourInterval() float64 {
	if c.ContourInterval == nil {
		return 1
	}
	return *c.ContourInterval
}

// GetDatabase returns the run history database path; empty disables it.
func (c *RunConfig) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}

// ToLighting converts the lighting fields for the engine.
func (c *RunConfig) ToLighting() terrain.LightingConfig {
	return terrain.LightingConfig{
		AltitudeDeg: c.GetAltitudeDeg(),
		AzimuthDeg:  c.GetAzimuthDeg(),
	}
}

// ToSampler builds the surface sampler described by the config.
func (c *RunConfig) ToSampler() (surface.Sampler, error) {
	fn, err := surface.Named(c.GetSurface())
	if err != nil {
		return surface.Sampler{}, err
	}
	offset, err := parseOffset(c.GetOffset())
	if err != nil {
		return surface.Sampler{}, err
	}
	return surface.Sampler{
		Func: fn,
		Extent: surface.Extent{
			XMin: c.GetXMin(), XMax: c.GetXMax(),
			YMin: c.GetYMin(), YMax: c.GetYMax(),
		},
		Resolution: c.GetResolution(),
		CellSize:   c.GetCellSize(),
		Offset:     offset,
	}, nil
}

func parseOffset(s string) (surface.Offset, error) {
	switch s {
	case OffsetNone:
		return surface.OffsetNone, nil
	case OffsetRaiseByMax:
		return surface.OffsetRaiseByMax, nil
	case OffsetMinToZero:
		return surface.OffsetMinToZero, nil
	}
	return 0, fmt.Errorf("unknown offset %q (want %s, %s or %s)", s, OffsetNone, OffsetRaiseByMax, OffsetMinToZero)
}
