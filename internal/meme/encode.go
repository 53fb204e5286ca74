package meme

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"mememaker/internal/domain"
	"mememaker/internal/infra/logging"
)

// Encode returns the base64 form of the file at path.
func Encode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrIO, path, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrIO, path)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Cleanup removes every path, ignoring files that were never created.
// Failures are logged and never returned so they cannot mask the result.
func Cleanup(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Temp file cleanup failed", "path", p, "error", err)
		}
	}
}
