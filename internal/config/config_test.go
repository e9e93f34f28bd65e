package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LoweRatio != 0.55 {
		t.Errorf("expected LoweRatio 0.55, got %v", cfg.LoweRatio)
	}
	if cfg.RansacReprojThreshold != 3.0 {
		t.Errorf("expected RansacReprojThreshold 3.0, got %v", cfg.RansacReprojThreshold)
	}
	if cfg.RansacMaxIters != 2000 {
		t.Errorf("expected RansacMaxIters 2000, got %v", cfg.RansacMaxIters)
	}
	if cfg.RansacConfidence != 0.99 {
		t.Errorf("expected RansacConfidence 0.99, got %v", cfg.RansacConfidence)
	}
	if cfg.DownsampleFactor != 2 {
		t.Errorf("expected DownsampleFactor 2, got %v", cfg.DownsampleFactor)
	}
	if cfg.SkipOnAlignmentFailure {
		t.Error("expected SkipOnAlignmentFailure false")
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected Load(\"\") == Default(), got %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	if err == nil {
		t.Fatal("expected error for missing ini file")
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mosaic.ini")
	contents := `[mosaic]
lowe_ratio=0.7
downsample_factor=1
skip_on_alignment_failure=true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LoweRatio != 0.7 {
		t.Errorf("expected overridden LoweRatio 0.7, got %v", cfg.LoweRatio)
	}
	if cfg.DownsampleFactor != 1 {
		t.Errorf("expected overridden DownsampleFactor 1, got %v", cfg.DownsampleFactor)
	}
	if !cfg.SkipOnAlignmentFailure {
		t.Error("expected overridden SkipOnAlignmentFailure true")
	}

	// Keys the fixture omits should keep their defaults.
	if cfg.RansacReprojThreshold != 3.0 {
		t.Errorf("expected default RansacReprojThreshold 3.0, got %v", cfg.RansacReprojThreshold)
	}
	if cfg.RansacMaxIters != 2000 {
		t.Errorf("expected default RansacMaxIters 2000, got %v", cfg.RansacMaxIters)
	}
	if cfg.RansacConfidence != 0.99 {
		t.Errorf("expected default RansacConfidence 0.99, got %v", cfg.RansacConfidence)
	}
}

func TestLoad_FullOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mosaic.ini")
	contents := `[mosaic]
lowe_ratio=0.4
ransac_reproj_threshold=1.5
ransac_max_iters=500
ransac_confidence=0.95
downsample_factor=4
skip_on_alignment_failure=true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Config{
		LoweRatio:              0.4,
		RansacReprojThreshold:  1.5,
		RansacMaxIters:         500,
		RansacConfidence:       0.95,
		DownsampleFactor:       4,
		SkipOnAlignmentFailure: true,
	}
	if cfg != want {
		t.Errorf("expected %+v, got %+v", want, cfg)
	}
}
