package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mikey/email-classifier/internal/core"
)

// LoadFile reads a local file as a classification input. An empty path
// yields a nil input. The content of a file that fails validation is not read.
func LoadFile(path string) (*core.FileInput, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	file := &core.FileInput{
		Name:      filepath.Base(path),
		MediaType: core.MediaTypeForFilename(path),
		Size:      info.Size(),
	}
	if err := core.ValidateFile(file); err != nil {
		return file, nil
	}

	file.Content, err = io.ReadAll(io.LimitReader(f, core.MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return file, nil
}
