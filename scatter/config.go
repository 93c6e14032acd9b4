package scatter

import (
	"math"
)

// Init level modes.
const (
	InitAuto   = "auto"
	InitManual = "manual"
)

// Limits of the configuration.
const (
	LowestLevel  = -12
	HighestLevel = 12

	MaxCanvasSize = 1 << 14
)

// Config holds the settings of a render.
type Config struct {
	// output size in pixels
	CanvasWidth  int `yaml:"width" json:"width"`
	CanvasHeight int `yaml:"height" json:"height"`

	// components with cell count kurtosis at most MaxKurtosis
	// are not split further
	MaxKurtosis float64 `yaml:"maxKurtosis" json:"maxKurtosis"`

	// components are not split beyond MaxLevel
	MaxLevel int `yaml:"maxLevel" json:"maxLevel"`

	// maximum boost of rare classes
	OutlierEmphasis float64 `yaml:"outlierEmphasis" json:"outlierEmphasis"`

	// fraction of points non-outlier classes should represent
	NonOutlierMass float64 `yaml:"nonOutlierMass" json:"nonOutlierMass"`

	// InitLevelMode is InitAuto or InitManual. In manual mode
	// the initial grid has cells at InitLevel.
	InitLevelMode string `yaml:"initLevelMode" json:"initLevelMode"`
	InitLevel     int    `yaml:"initLevel" json:"initLevel"`

	// DensityCulling makes sparse clusters cover fewer pixels.
	DensityCulling bool `yaml:"densityCulling" json:"densityCulling"`
}

// DefaultConfig returns the default render settings.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:     900,
		CanvasHeight:    900,
		MaxKurtosis:     10,
		MaxLevel:        4,
		OutlierEmphasis: 10,
		NonOutlierMass:  0.5,
		InitLevelMode:   InitAuto,
		InitLevel:       0,
		DensityCulling:  true,
	}
}

// Validate checks that all fields of cfg are in range.
func (cfg Config) Validate() error {
	switch {
	case cfg.CanvasWidth <= 0 || cfg.CanvasWidth > MaxCanvasSize:
		return &ConfigError{"width", "out of range"}
	case cfg.CanvasHeight <= 0 || cfg.CanvasHeight > MaxCanvasSize:
		return &ConfigError{"height", "out of range"}
	case math.IsNaN(cfg.MaxKurtosis) || cfg.MaxKurtosis < 0:
		return &ConfigError{"maxKurtosis", "must not be negative"}
	case cfg.MaxLevel < LowestLevel || cfg.MaxLevel > HighestLevel:
		return &ConfigError{"maxLevel", "out of range"}
	case math.IsNaN(cfg.OutlierEmphasis) || cfg.OutlierEmphasis < 1:
		return &ConfigError{"outlierEmphasis", "must be at least 1"}
	case !(cfg.NonOutlierMass >= 0.5 && cfg.NonOutlierMass <= 1):
		return &ConfigError{"nonOutlierMass", "must be between 0.5 and 1"}
	}
	switch cfg.InitLevelMode {
	case InitAuto, "":
	case InitManual:
		if cfg.InitLevel < LowestLevel || cfg.InitLevel > HighestLevel {
			return &ConfigError{"initLevel", "out of range"}
		}
	default:
		return &ConfigError{"initLevelMode", "unknown mode " + cfg.InitLevelMode}
	}
	return nil
}

// StartLevel returns the level of the initial grid.
//
// In auto mode cells are two canvas pixels wide for a
// 1000 pixel canvas, doubling as the canvas size doubles.
func (cfg Config) StartLevel() int {
	if cfg.InitLevelMode == InitManual {
		return cfg.InitLevel
	}
	d := float64(max(cfg.CanvasWidth, cfg.CanvasHeight))
	l := int(math.Floor(-1 - math.Log2(d/1000) + 0.5))
	return max(LowestLevel, min(l, HighestLevel))
}
