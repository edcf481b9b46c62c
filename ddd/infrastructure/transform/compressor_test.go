package transform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
)

func writeFileOfSize(t *testing.T, dir string, size int) string {
	t.Helper()
	p := filepath.Join(dir, "audio.mp3")
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	return p
}

func TestCompliantFilePassesThrough(t *testing.T) {
	c := NewFFmpegCompressor(config.TransformConfig{})
	p := writeFileOfSize(t, t.TempDir(), 1024)

	out, note, err := c.EnsureSizeConstraint(context.Background(), p, 1)
	require.NoError(t, err)
	assert.Equal(t, p, out)
	assert.Empty(t, note)

	// 幂等：重复调用仍原样通过
	out2, _, err := c.EnsureSizeConstraint(context.Background(), p, 1)
	require.NoError(t, err)
	assert.Equal(t, p, out2)
}

func TestOversizedWithoutFFmpegPassesWithNote(t *testing.T) {
	c := NewFFmpegCompressor(config.TransformConfig{})
	c.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	p := writeFileOfSize(t, t.TempDir(), 2*1024*1024)

	out, note, err := c.EnsureSizeConstraint(context.Background(), p, 1)
	require.NoError(t, err)
	assert.Equal(t, p, out)
	assert.Equal(t, NoteCompressionSkipped, note)
}

func TestMissingFileIsFetchError(t *testing.T) {
	c := NewFFmpegCompressor(config.TransformConfig{})

	_, _, err := c.EnsureSizeConstraint(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"), 1)
	require.Error(t, err)
	assert.Equal(t, vo.ErrorKindFetch, vo.KindOf(err, vo.ErrorKindUnknown))
}
