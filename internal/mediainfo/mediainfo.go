// file: internal/mediainfo/mediainfo.go
// version: 2.0.0
// guid: f1e2d3c4-b5a6-7c8d-9e0f-1a2b3c4d5e6f

package mediainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jdfalk/music-tagger/internal/models"
)

const probeTimeout = 15 * time.Second

// ffprobeOutput mirrors the JSON emitted by `ffprobe -show_format -show_streams`.
type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Probe reads stream-level audio properties via ffprobe. A missing
// binary or probe failure degrades to format-based defaults rather than
// failing the scan.
func Probe(ctx context.Context, ffprobePath, filePath string) *models.AudioProperties {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	out, err := cmd.Output()
	if err != nil {
		log.Printf("[DEBUG] mediainfo: ffprobe failed for %s: %v", filePath, err)
		return defaultProperties(filePath)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		log.Printf("[WARN] mediainfo: unparseable ffprobe output for %s: %v", filePath, err)
		return defaultProperties(filePath)
	}

	props := &models.AudioProperties{}
	if sec, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		props.DurationSec = int(sec + 0.5)
	}
	if bps, err := strconv.Atoi(probe.Format.BitRate); err == nil {
		props.BitrateKbps = bps / 1000
	}
	for _, s := range probe.Streams {
		if s.CodecType != "audio" {
			continue
		}
		if sr, err := strconv.Atoi(s.SampleRate); err == nil {
			props.SampleRate = sr
		}
		props.Channels = s.Channels
		break
	}
	fillDefaults(filePath, props)
	return props
}

// QualityString renders a short human-readable quality summary,
// e.g. "320 kbps / 44.1 kHz".
func QualityString(p *models.AudioProperties) string {
	if p == nil || (p.BitrateKbps == 0 && p.SampleRate == 0) {
		return ""
	}
	parts := []string{}
	if p.BitrateKbps > 0 {
		parts = append(parts, fmt.Sprintf("%d kbps", p.BitrateKbps))
	}
	if p.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.1f kHz", float64(p.SampleRate)/1000))
	}
	return strings.Join(parts, " / ")
}

func defaultProperties(filePath string) *models.AudioProperties {
	props := &models.AudioProperties{}
	fillDefaults(filePath, props)
	return props
}

// fillDefaults supplies conventional values for fields the probe could
// not determine, keyed off the container format.
func fillDefaults(filePath string, props *models.AudioProperties) {
	if props.SampleRate == 0 {
		props.SampleRate = 44100
	}
	if props.Channels == 0 {
		props.Channels = 2
	}
	if props.BitrateKbps == 0 {
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".flac", ".wav":
			props.BitrateKbps = 1000
		case ".mp3", ".ogg", ".opus", ".wma", ".aac", ".m4a", ".m4b":
			props.BitrateKbps = 192
		}
	}
}
