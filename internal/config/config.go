// Package config loads the mosaic pipeline's tunable knobs from an INI
// file (gopkg.in/ini.v1). An unspecified (empty) path falls back
// entirely to defaults; a path that cannot be loaded is an error.
package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Config holds the assembler's runtime-tunable parameters.
type Config struct {
	// LoweRatio overrides the Feature Engine's ratio-test threshold.
	LoweRatio float64

	// RansacReprojThreshold, RansacMaxIters, RansacConfidence tune the
	// Transform Solver's robust estimators.
	RansacReprojThreshold float64
	RansacMaxIters        int
	RansacConfidence      float64

	// DownsampleFactor decimates input frames by this factor in both
	// dimensions before rectification (a performance knob, not a
	// correctness property). 1 disables downsampling.
	DownsampleFactor int

	// SkipOnAlignmentFailure selects the skip-and-continue policy: skip
	// the failing frame and continue, instead of halting (the default).
	SkipOnAlignmentFailure bool
}

// Default returns the pipeline's baseline tuning: a 0.55 ratio-test
// threshold, OpenCV's own RANSAC defaults, 2x downsampling, and
// halt-on-failure.
func Default() Config {
	return Config{
		LoweRatio:              0.55,
		RansacReprojThreshold:  3.0,
		RansacMaxIters:         2000,
		RansacConfidence:       0.99,
		DownsampleFactor:       2,
		SkipOnAlignmentFailure: false,
	}
}

// Load reads overrides from an INI file at path, starting from
// Default() for any key the file omits. An empty path is equivalent
// to Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	sec := f.Section("mosaic")
	if sec.HasKey("lowe_ratio") {
		cfg.LoweRatio = sec.Key("lowe_ratio").MustFloat64(cfg.LoweRatio)
	}
	if sec.HasKey("ransac_reproj_threshold") {
		cfg.RansacReprojThreshold = sec.Key("ransac_reproj_threshold").MustFloat64(cfg.RansacReprojThreshold)
	}
	if sec.HasKey("ransac_max_iters") {
		cfg.RansacMaxIters = sec.Key("ransac_max_iters").MustInt(cfg.RansacMaxIters)
	}
	if sec.HasKey("ransac_confidence") {
		cfg.RansacConfidence = sec.Key("ransac_confidence").MustFloat64(cfg.RansacConfidence)
	}
	if sec.HasKey("downsample_factor") {
		cfg.DownsampleFactor = sec.Key("downsample_factor").MustInt(cfg.DownsampleFactor)
	}
	if sec.HasKey("skip_on_alignment_failure") {
		cfg.SkipOnAlignmentFailure = sec.Key("skip_on_alignment_failure").MustBool(cfg.SkipOnAlignmentFailure)
	}

	return cfg, nil
}
