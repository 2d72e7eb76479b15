package doc2pdf

import (
	"fmt"
	"os"
	"path/filepath"
)

// Validate inspects a candidate input path and classifies it as convertible.
// On success it returns an immutable Document; otherwise the error wraps
// ErrUnsupportedFormat or ErrUnreadableInput. Pure inspection: no engine is
// invoked here.
func Validate(path string) (*Document, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrUnreadableInput, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnreadableInput, path)
	}

	// Confirm readability; permissions can deny access even when stat works.
	f, err := os.Open(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	_ = f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	return &Document{
		Path:    abs,
		Format:  format,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
