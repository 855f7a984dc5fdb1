// file: internal/fingerprint/fingerprint.go
// version: 1.2.0
// guid: 5a6b7c8d-9e0f-1a2b-3c4d-5e6f7a8b9c0e

// Package fingerprint identifies tracks from their acoustic signature.
// Chromaprint's fpcalc generates the fingerprint; recognition providers
// are tried in a fixed priority order until one accepts.
package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"time"

	"github.com/jdfalk/music-tagger/internal/models"
)

const fpcalcTimeout = 30 * time.Second

// Fingerprint is a chromaprint signature plus the sampled duration.
type Fingerprint struct {
	Duration    int    `json:"duration"`
	Fingerprint string `json:"fingerprint"`
}

// Calculator shells out to fpcalc.
type Calculator struct {
	FpcalcPath string
}

// NewCalculator returns a Calculator using the given fpcalc binary,
// falling back to "fpcalc" on PATH when empty.
func NewCalculator(fpcalcPath string) *Calculator {
	if fpcalcPath == "" {
		fpcalcPath = "fpcalc"
	}
	return &Calculator{FpcalcPath: fpcalcPath}
}

// Available reports whether the fpcalc binary can be found.
func (c *Calculator) Available() bool {
	_, err := exec.LookPath(c.FpcalcPath)
	return err == nil
}

// Generate computes the chromaprint fingerprint for an audio file.
// A missing binary surfaces as ErrProviderUnavailable so the pipeline
// can treat recognition as a failed stage rather than a crash.
func (c *Calculator) Generate(ctx context.Context, filePath string) (*Fingerprint, error) {
	if !c.Available() {
		return nil, fmt.Errorf("fpcalc not found at %q: %w", c.FpcalcPath, models.ErrProviderUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, fpcalcTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.FpcalcPath, "-json", filePath)
	out, err := cmd.Output()
	if err != nil {
		log.Printf("[WARN] fingerprint: fpcalc failed for %s: %v", filePath, err)
		return nil, fmt.Errorf("fpcalc %s: %w", filePath, models.ErrUnreadableFile)
	}

	var fp Fingerprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return nil, fmt.Errorf("parse fpcalc output for %s: %w", filePath, models.ErrUnreadableFile)
	}
	if fp.Fingerprint == "" {
		return nil, fmt.Errorf("empty fingerprint for %s: %w", filePath, models.ErrUnreadableFile)
	}
	return &fp, nil
}
