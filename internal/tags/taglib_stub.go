// file: internal/tags/taglib_stub.go
// version: 1.2.0
// guid: 4f3e2d1c-0b9a-8d7e-6c5b-4a3f2e1d0c9b

//go:build !taglib

package tags

// taglibAvailable is false when not built with the taglib tag.
var taglibAvailable = false

// writeWithTaglib stub when taglib is not compiled in.
func writeWithTaglib(filePath string, req *WriteRequest) error {
	return ErrTaglibUnavailable
}
