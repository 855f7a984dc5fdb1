// file: internal/heuristics/analyze.go
// version: 1.1.0
// guid: 4e5f6a7b-8c9d-0e1f-2a3b-4c5d6e7f8a9b

package heuristics

// Analyze combines the filename and path analyzers for one track path.
// When the filename yields no artist but the directory context does, the
// path artist is folded into the filename result at path confidence.
func Analyze(path string) (Result, PathResult) {
	name := AnalyzeFilename(path)
	dir := AnalyzePath(path)

	if name.Artist == "" && dir.Artist != "" {
		name.Artist = dir.Artist
		// A borrowed artist drags the whole derivation down to the
		// weaker confidence of its origin.
		if dir.Confidence < name.Confidence {
			name.Confidence = dir.Confidence
		}
	}
	if name.Album == "" && dir.Album != "" {
		name.Album = dir.Album
	}
	return name, dir
}
