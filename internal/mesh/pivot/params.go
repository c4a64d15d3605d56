package pivot

import (
	"fmt"
	"strings"

	"github.com/banshee-data/meshpivot/internal/config"
	"github.com/banshee-data/meshpivot/internal/mesh/slice"
	"github.com/banshee-data/meshpivot/internal/mesh/voxel"
	"github.com/banshee-data/meshpivot/internal/mesh/wire"
)

// Strategy selects how wire vertices are found before the footprint hull.
type Strategy uint8

const (
	// StrategyPCA scores per-vertex linearity over a neighbourhood.
	StrategyPCA Strategy = iota
	// StrategyVoxel flags sparse or normal-unstable voxel cells.
	StrategyVoxel
	// StrategyNone keeps every vertex.
	StrategyNone
)

func (s Strategy) String() string {
	switch s {
	case StrategyPCA:
		return "pca"
	case StrategyVoxel:
		return "voxel"
	case StrategyNone:
		return "none"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy converts a config string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "pca":
		return StrategyPCA, nil
	case "voxel":
		return StrategyVoxel, nil
	case "none":
		return StrategyNone, nil
	}
	return StrategyPCA, fmt.Errorf("unknown wire strategy %q", s)
}

// TranslationMode selects the reference point returned as Result.Translation.
type TranslationMode uint8

const (
	// TranslationOrigin leaves the object where it is.
	TranslationOrigin TranslationMode = iota
	// TranslationCenter reports the footprint rectangle centre at the
	// lowest footprint Z.
	TranslationCenter
)

func (m TranslationMode) String() string {
	switch m {
	case TranslationOrigin:
		return "origin"
	case TranslationCenter:
		return "center"
	}
	return fmt.Sprintf("TranslationMode(%d)", uint8(m))
}

// ParseTranslationMode converts a config string to a TranslationMode.
func ParseTranslationMode(s string) (TranslationMode, error) {
	switch strings.ToLower(s) {
	case "", "origin":
		return TranslationOrigin, nil
	case "center", "centre":
		return TranslationCenter, nil
	}
	return TranslationOrigin, fmt.Errorf("unknown translation mode %q", s)
}

// Params holds every knob of the orientation pipeline.
type Params struct {
	Strategy    Strategy
	Wire        wire.Params
	Voxel       voxel.Params
	CellSize    float64 // voxel edge length
	Translation TranslationMode
	BaseSlab    float64 // height of the base footprint slab above min Z

	// Volumetric analysis
	SliceThickness float64
	MaxSlices      int

	// Workers bounds ProcessBatch concurrency; 0 means runtime.NumCPU().
	Workers int
}

// DefaultParams returns the stock pipeline settings.
func DefaultParams() Params {
	return Params{
		Strategy:       StrategyPCA,
		Wire:           wire.DefaultParams(),
		Voxel:          voxel.DefaultParams(),
		CellSize:       voxel.DefaultCellSize,
		Translation:    TranslationOrigin,
		BaseSlab:       0.001,
		SliceThickness: 0.05,
		MaxSlices:      slice.MaxSlices,
	}
}

// ParamsFromTuning builds Params from a loaded TuningConfig. The config is
// expected to have passed Validate; unknown enum strings fall back to their
// defaults.
func ParamsFromTuning(cfg *config.TuningConfig) Params {
	mode, _ := wire.ParseMode(cfg.GetNeighborhoodMode())
	strategy, _ := ParseStrategy(cfg.GetWireStrategy())
	translation, _ := ParseTranslationMode(cfg.GetTranslationMode())

	return Params{
		Strategy: strategy,
		Wire: wire.Params{
			K:        cfg.GetNeighborhoodK(),
			Mode:     mode,
			Strict:   cfg.GetStrictLinearity(),
			Loose:    cfg.GetLooseLinearity(),
			MinGroup: cfg.GetMinWireGroup(),
		},
		Voxel: voxel.Params{
			DensityRatio:   cfg.GetVoxelDensityRatio(),
			NormalVariance: cfg.GetVoxelNormalVariance(),
		},
		CellSize:       cfg.GetVoxelCellSize(),
		Translation:    translation,
		BaseSlab:       cfg.GetBaseSlab(),
		SliceThickness: cfg.GetSliceThickness(),
		MaxSlices:      cfg.GetMaxSlices(),
		Workers:        cfg.GetWorkers(),
	}
}

// Fingerprint renders every setting that affects a single-object result.
// Workers and the slice settings are left out.
func (p Params) Fingerprint() string {
	return fmt.Sprintf("strategy=%s k=%d mode=%s strict=%g loose=%g min_group=%d cell=%g density=%g normal_var=%g translation=%s base_slab=%g",
		p.Strategy, p.Wire.K, p.Wire.Mode, p.Wire.Strict, p.Wire.Loose, p.Wire.MinGroup,
		p.CellSize, p.Voxel.DensityRatio, p.Voxel.NormalVariance, p.Translation, p.BaseSlab)
}
