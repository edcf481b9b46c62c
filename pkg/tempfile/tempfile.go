package tempfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"transfer-service/pkg/logger"
)

// Transient files are owned by exactly one pipeline run. Names carry a
// timestamp plus a random component, so two concurrent reservations never
// collide; the filesystem is never probed at reservation time.

// EnsureDirectory creates the directory and all missing ancestors. Returns
// true when the directory exists afterwards; failures are logged, not
// propagated.
func EnsureDirectory(dirPath string) bool {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		logger.Error("Failed to create directory", map[string]interface{}{
			"dir":   dirPath,
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Reserve returns a unique path under directory (os.TempDir() when empty).
// The suffix should include the extension, e.g. ".mp3".
func Reserve(prefix, suffix, directory string) string {
	if directory == "" {
		directory = os.TempDir()
	}
	if prefix == "" {
		prefix = "temp"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%s-%d-%s%s", prefix, time.Now().UnixMilli(), random, suffix)
	return filepath.Join(directory, name)
}

// ReserveWithCleanup reserves a path and returns a release func suitable for
// defer. The release func is idempotent.
func ReserveWithCleanup(prefix, suffix, directory string) (string, func() bool) {
	path := Reserve(prefix, suffix, directory)
	return path, func() bool { return Release(path) }
}

// Release deletes the file at path. A missing file counts as success;
// a failed deletion is logged and reported, never escalated, so a caller's
// cleanup sequence always runs to the end.
func Release(path string) bool {
	if path == "" {
		return true
	}
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return true
	}
	logger.Error("Failed to delete transient file", map[string]interface{}{
		"path":  path,
		"error": err.Error(),
	})
	return false
}

// Exists reports whether a file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
