// file: internal/heuristics/filename_test.go
// version: 1.3.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package heuristics

import (
	"fmt"
	"testing"
)

func TestAnalyzeFilename(t *testing.T) {
	tests := []struct {
		filename   string
		wantArtist string
		wantTitle  string
		wantTrack  int
		wantConf   float64
	}{
		{"01 - Miles Davis - So What.mp3", "Miles Davis", "So What", 1, 0.8},
		{"07. Nina Simone - Feeling Good.flac", "Nina Simone", "Feeling Good", 7, 0.8},
		{"Miles Davis - So What.mp3", "Miles Davis", "So What", 0, 0.8},
		{"Pink Floyd - 05 - Money.mp3", "Pink Floyd", "Money", 5, 0.8},
		{"01 - Intro.mp3", "", "Intro", 1, 0.6},
		{"03. Interlude.ogg", "", "Interlude", 3, 0.6},
		{"12 Tomorrow Never Knows.mp3", "", "Tomorrow Never Knows", 12, 0.6},
		{"ambient_drone_take3.wav", "", "ambient drone take3", 0, 0.6},
		{"Bohemian Rhapsody.m4a", "", "Bohemian Rhapsody", 0, 0.6},
		// Track numbers above 99 are not track numbers.
		{"1999 - Prince.mp3", "1999", "Prince", 0, 0.8},
		// Bracket annotations stay verbatim, a known accuracy limit.
		{"04 - Orbital - Halcyon (Live).mp3", "Orbital", "Halcyon (Live)", 4, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := AnalyzeFilename(tt.filename)
			if got.Artist != tt.wantArtist {
				t.Errorf("artist = %q, want %q", got.Artist, tt.wantArtist)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.TrackNumber != tt.wantTrack {
				t.Errorf("track = %d, want %d", got.TrackNumber, tt.wantTrack)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

// Every "NN - Title" name in 01..99 must parse to that number with the
// trimmed title and no artist.
func TestAnalyzeFilenameNumberedRange(t *testing.T) {
	for n := 1; n <= 99; n++ {
		name := fmt.Sprintf("%02d - Interstellar Overdrive.mp3", n)
		got := AnalyzeFilename(name)
		if got.TrackNumber != n {
			t.Fatalf("%s: track = %d, want %d", name, got.TrackNumber, n)
		}
		if got.Title != "Interstellar Overdrive" {
			t.Fatalf("%s: title = %q", name, got.Title)
		}
		if got.Artist != "" {
			t.Fatalf("%s: unexpected artist %q", name, got.Artist)
		}
	}
}

func TestAnalyzeFilenameLeadingZeros(t *testing.T) {
	got := AnalyzeFilename("007 - Bond Theme.mp3")
	if got.TrackNumber != 7 {
		t.Errorf("leading zeros should parse to 7, got %d", got.TrackNumber)
	}
}

func TestAnalyzeFilenameEmpty(t *testing.T) {
	got := AnalyzeFilename(".mp3")
	if !got.Empty() {
		t.Errorf("extension-only name should derive nothing, got %+v", got)
	}
}

func TestAnalyzeCombinesPathArtist(t *testing.T) {
	name, dir := Analyze("/music/Radiohead/OK Computer/02 - Paranoid Android.mp3")
	if dir.Artist != "Radiohead" || dir.Album != "OK Computer" {
		t.Fatalf("path result = %+v", dir)
	}
	if name.Artist != "Radiohead" {
		t.Errorf("path artist should backfill filename result, got %q", name.Artist)
	}
	if name.Title != "Paranoid Android" || name.TrackNumber != 2 {
		t.Errorf("filename fields lost: %+v", name)
	}
	if name.Confidence != 0.6 {
		t.Errorf("borrowed artist should lower confidence to 0.6, got %v", name.Confidence)
	}
}

func TestAnalyzeKeepsFilenameArtist(t *testing.T) {
	name, _ := Analyze("/music/Compilations/01 - Portishead - Glory Box.mp3")
	if name.Artist != "Portishead" {
		t.Errorf("filename artist must win over path, got %q", name.Artist)
	}
	if name.Confidence != 0.8 {
		t.Errorf("structured filename keeps 0.8, got %v", name.Confidence)
	}
}
