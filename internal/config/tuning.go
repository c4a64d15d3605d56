package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for pipeline tuning.
// Every field is optional; the Get* methods supply defaults for fields the
// JSON leaves out.
type TuningConfig struct {
	// Wire classifier params
	NeighborhoodK    *int     `json:"neighborhood_k,omitempty"`
	NeighborhoodMode *string  `json:"neighborhood_mode,omitempty"` // "euclidean" or "geodesic"
	StrictLinearity  *float64 `json:"strict_linearity,omitempty"`
	LooseLinearity   *float64 `json:"loose_linearity,omitempty"`
	MinWireGroup     *int     `json:"min_wire_group,omitempty"`
	WireStrategy     *string  `json:"wire_strategy,omitempty"` // "pca", "voxel" or "none"

	// Voxel classifier params
	VoxelCellSize       *float64 `json:"voxel_cell_size,omitempty"`
	VoxelDensityRatio   *float64 `json:"voxel_density_ratio,omitempty"`
	VoxelNormalVariance *float64 `json:"voxel_normal_variance,omitempty"`

	// Slice analyzer params
	SliceThickness *float64 `json:"slice_thickness,omitempty"`
	MaxSlices      *int     `json:"max_slices,omitempty"`

	// Pipeline params
	TranslationMode *string  `json:"translation_mode,omitempty"` // "origin" or "center"
	BaseSlab        *float64 `json:"base_slab,omitempty"`

	// Batch params
	Workers      *int    `json:"workers,omitempty"`
	BatchTimeout *string `json:"batch_timeout,omitempty"` // duration string like "30s"; empty means none
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// with its default value.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		NeighborhoodK:       ptrInt(100),
		NeighborhoodMode:    ptrString("euclidean"),
		StrictLinearity:     ptrFloat64(0.9),
		LooseLinearity:      ptrFloat64(0.5),
		MinWireGroup:        ptrInt(10),
		WireStrategy:        ptrString("pca"),
		VoxelCellSize:       ptrFloat64(0.03),
		VoxelDensityRatio:   ptrFloat64(0.5),
		VoxelNormalVariance: ptrFloat64(0.6),
		SliceThickness:      ptrFloat64(0.05),
		MaxSlices:           ptrInt(255),
		TranslationMode:     ptrString("origin"),
		BaseSlab:            ptrFloat64(0.001),
		Workers:             ptrInt(0),
		BatchTimeout:        ptrString(""),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to their defaults, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,             // from cmd/pivot/
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/mesh/pivot/
		"../../../../" + DefaultConfigPath,    // deeper packages
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.NeighborhoodK != nil && *c.NeighborhoodK < 1 {
		return fmt.Errorf("neighborhood_k must be at least 1, got %d", *c.NeighborhoodK)
	}
	if c.NeighborhoodMode != nil {
		switch strings.ToLower(*c.NeighborhoodMode) {
		case "", "euclidean", "geodesic":
		default:
			return fmt.Errorf("neighborhood_mode must be euclidean or geodesic, got %q", *c.NeighborhoodMode)
		}
	}
	if c.StrictLinearity != nil && (*c.StrictLinearity < 0 || *c.StrictLinearity > 1) {
		return fmt.Errorf("strict_linearity must be between 0 and 1, got %f", *c.StrictLinearity)
	}
	if c.LooseLinearity != nil && (*c.LooseLinearity < 0 || *c.LooseLinearity > 1) {
		return fmt.Errorf("loose_linearity must be between 0 and 1, got %f", *c.LooseLinearity)
	}
	if c.GetLooseLinearity() > c.GetStrictLinearity() {
		return fmt.Errorf("loose_linearity (%f) must not exceed strict_linearity (%f)", c.GetLooseLinearity(), c.GetStrictLinearity())
	}
	if c.MinWireGroup != nil && *c.MinWireGroup < 1 {
		return fmt.Errorf("min_wire_group must be at least 1, got %d", *c.MinWireGroup)
	}
	if c.WireStrategy != nil {
		switch strings.ToLower(*c.WireStrategy) {
		case "", "pca", "voxel", "none":
		default:
			return fmt.Errorf("wire_strategy must be pca, voxel or none, got %q", *c.WireStrategy)
		}
	}
	if c.VoxelCellSize != nil && !(*c.VoxelCellSize > 0) {
		return fmt.Errorf("voxel_cell_size must be positive, got %f", *c.VoxelCellSize)
	}
	if c.VoxelDensityRatio != nil && *c.VoxelDensityRatio < 0 {
		return fmt.Errorf("voxel_density_ratio must be non-negative, got %f", *c.VoxelDensityRatio)
	}
	if c.VoxelNormalVariance != nil && (*c.VoxelNormalVariance < 0 || *c.VoxelNormalVariance > 1) {
		return fmt.Errorf("voxel_normal_variance must be between 0 and 1, got %f", *c.VoxelNormalVariance)
	}
	if c.SliceThickness != nil && !(*c.SliceThickness > 0) {
		return fmt.Errorf("slice_thickness must be positive, got %f", *c.SliceThickness)
	}
	if c.MaxSlices != nil && (*c.MaxSlices < 1 || *c.MaxSlices > 255) {
		return fmt.Errorf("max_slices must be between 1 and 255, got %d", *c.MaxSlices)
	}
	if c.TranslationMode != nil {
		switch strings.ToLower(*c.TranslationMode) {
		case "", "origin", "center", "centre":
		default:
			return fmt.Errorf("translation_mode must be origin or center, got %q", *c.TranslationMode)
		}
	}
	if c.BaseSlab != nil && !(*c.BaseSlab > 0) {
		return fmt.Errorf("base_slab must be positive, got %f", *c.BaseSlab)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	// Validate BatchTimeout can be parsed if set
	if c.BatchTimeout != nil && *c.BatchTimeout != "" {
		if _, err := time.ParseDuration(*c.BatchTimeout); err != nil {
			return fmt.Errorf("invalid batch_timeout '%s': %w", *c.BatchTimeout, err)
		}
	}

	return nil
}

// GetNeighborhoodK returns the neighborhood_k value or the default.
func (c *TuningConfig) GetNeighborhoodK() int {
	if c.NeighborhoodK == nil {
		return 100
	}
	return *c.NeighborhoodK
}

// GetNeighborhoodMode returns the neighborhood_mode value or the default.
func (c *TuningConfig) GetNeighborhoodMode() string {
	if c.NeighborhoodMode == nil || *c.NeighborhoodMode == "" {
		return "euclidean"
	}
	return strings.ToLower(*c.NeighborhoodMode)
}

// GetStrictLinearity returns the strict_linearity value or the default.
func (c *TuningConfig) GetStrictLinearity() float64 {
	if c.StrictLinearity == nil {
		return 0.9
	}
	return *c.StrictLinearity
}

// GetLooseLinearity returns the loose_linearity value or the default.
func (c *TuningConfig) GetLooseLinearity() float64 {
	if c.LooseLinearity == nil {
		return 0.5
	}
	return *c.LooseLinearity
}

// GetMinWireGroup returns the min_wire_group value or the default.
func (c *TuningConfig) GetMinWireGroup() int {
	if c.MinWireGroup == nil {
		return 10
	}
	return *c.MinWireGroup
}

// GetWireStrategy returns the wire_strategy value or the default.
func (c *TuningConfig) GetWireStrategy() string {
	if c.WireStrategy == nil || *c.WireStrategy == "" {
		return "pca"
	}
	return strings.ToLower(*c.WireStrategy)
}

// GetVoxelCellSize returns the voxel_cell_size value or the default.
func (c *TuningConfig) GetVoxelCellSize() float64 {
	if c.VoxelCellSize == nil {
		return 0.03
	}
	return *c.VoxelCellSize
}

// GetVoxelDensityRatio returns the voxel_density_ratio value or the default.
func (c *TuningConfig) GetVoxelDensityRatio() float64 {
	if c.VoxelDensityRatio == nil {
		return 0.5
	}
	return *c.VoxelDensityRatio
}

// GetVoxelNormalVariance returns the voxel_normal_variance value or the default.
func (c *TuningConfig) GetVoxelNormalVariance() float64 {
	if c.VoxelNormalVariance == nil {
		return 0.6
	}
	return *c.VoxelNormalVariance
}

// GetSliceThickness returns the slice_thickness value or the default.
func (c *TuningConfig) GetSliceThickness() float64 {
	if c.SliceThickness == nil {
		return 0.05
	}
	return *c.SliceThickness
}

// GetMaxSlices returns the max_slices value or the default.
func (c *TuningConfig) GetMaxSlices() int {
	if c.MaxSlices == nil {
		return 255
	}
	return *c.MaxSlices
}

// GetTranslationMode returns the translation_mode value or the default.
func (c *TuningConfig) GetTranslationMode() string {
	if c.TranslationMode == nil || *c.TranslationMode == "" {
		return "origin"
	}
	return strings.ToLower(*c.TranslationMode)
}

// GetBaseSlab returns the base_slab value or the default.
func (c *TuningConfig) GetBaseSlab() float64 {
	if c.BaseSlab == nil {
		return 0.001
	}
	return *c.BaseSlab
}

// GetWorkers returns the workers value or the default (0 = one per CPU).
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetBatchTimeout parses and returns the BatchTimeout as a time.Duration.
// Zero means no timeout.
func (c *TuningConfig) GetBatchTimeout() time.Duration {
	if c.BatchTimeout == nil || *c.BatchTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.BatchTimeout)
	if err != nil {
		return 0 // default on parse error
	}
	return d
}
