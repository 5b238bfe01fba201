package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// fileAvailable is the shared is_available predicate for file-backed
// sources: the file must exist and be readable (spec.md §4.1).
func fileAvailable(path string) availableFunc {
	return func(ctx context.Context) bool {
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return false
		}
		return !info.IsDir()
	}
}

// fileFingerprint returns "<path>:<mtime-unix-nanos>", the fingerprint
// cache.CacheKey joins into a cache key (spec.md §4.1/§4.4).
func fileFingerprint(path string) fingerprintFunc {
	return func(ctx context.Context) string {
		info, err := os.Stat(path)
		if err != nil {
			return path + ":unavailable"
		}
		return fmt.Sprintf("%s:%d", path, info.ModTime().UnixNano())
	}
}

// checkExtension logs (but does not reject on) an extension mismatch, per
// the "unified availability rule" in spec.md §4.2: extension recognition is
// advisory, not mandatory.
func checkExtension(path string, want ...string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, w := range want {
		if ext == w {
			return
		}
	}
	zap.S().Warnw("config source extension mismatch, attempting to parse anyway",
		"path", path, "extension", ext, "expected", want)
}

func readFileUTF8(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isValidUTF8(data) {
		return nil, fmt.Errorf("%s: not valid UTF-8", path)
	}
	return data, nil
}

// isValidUTF8 rejects binary content per spec.md §4.2 ("reject binary
// content by returning {}"). A conservative NUL-byte heuristic catches the
// overwhelming majority of binary files without pulling in a full UTF-8
// validity scan twice (Go's decoders already validate structurally-correct
// UTF-8 JSON/YAML/TOML text).
func isValidUTF8(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return false
		}
	}
	return true
}
