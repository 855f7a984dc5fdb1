// file: internal/mediainfo/mediainfo_test.go
// version: 2.0.0
// guid: 1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6d

package mediainfo

import (
	"context"
	"testing"

	"github.com/jdfalk/music-tagger/internal/models"
)

func TestProbeMissingBinaryFallsBack(t *testing.T) {
	props := Probe(context.Background(), "/nonexistent/ffprobe", "/music/song.mp3")
	if props == nil {
		t.Fatal("expected fallback properties, got nil")
	}
	if props.BitrateKbps != 192 {
		t.Errorf("mp3 default bitrate = %d, want 192", props.BitrateKbps)
	}
	if props.SampleRate != 44100 {
		t.Errorf("default sample rate = %d, want 44100", props.SampleRate)
	}
}

func TestProbeLosslessDefaults(t *testing.T) {
	props := Probe(context.Background(), "/nonexistent/ffprobe", "/music/song.flac")
	if props.BitrateKbps != 1000 {
		t.Errorf("flac default bitrate = %d, want 1000", props.BitrateKbps)
	}
}

func TestQualityString(t *testing.T) {
	tests := []struct {
		props *models.AudioProperties
		want  string
	}{
		{nil, ""},
		{&models.AudioProperties{}, ""},
		{&models.AudioProperties{BitrateKbps: 320, SampleRate: 44100}, "320 kbps / 44.1 kHz"},
		{&models.AudioProperties{BitrateKbps: 128}, "128 kbps"},
		{&models.AudioProperties{SampleRate: 48000}, "48.0 kHz"},
	}
	for _, tt := range tests {
		if got := QualityString(tt.props); got != tt.want {
			t.Errorf("QualityString(%+v) = %q, want %q", tt.props, got, tt.want)
		}
	}
}
