package transform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
	"transfer-service/pkg/tempfile"
)

// NoteCompressionSkipped 压缩被跳过时写入结果消息的说明
const NoteCompressionSkipped = "compression skipped: ffmpeg unavailable, file may exceed destination size limit"

// FFmpegCompressor implements gateway.SizeConstrainer using a local ffmpeg
// binary. A file already under the limit passes through untouched.
type FFmpegCompressor struct {
	cfg config.TransformConfig

	// lookPath is swappable in tests.
	lookPath func(file string) (string, error)
}

// NewFFmpegCompressor 创建ffmpeg压缩器
func NewFFmpegCompressor(cfg config.TransformConfig) *FFmpegCompressor {
	return &FFmpegCompressor{cfg: cfg, lookPath: exec.LookPath}
}

var _ gateway.SizeConstrainer = (*FFmpegCompressor)(nil)

// EnsureSizeConstraint checks localPath against maxMB and re-encodes when it
// exceeds the limit. When ffmpeg is not installed the original path is
// returned with a warning note instead of failing the job; an oversized
// re-encode result is deleted and fails the job.
func (c *FFmpegCompressor) EnsureSizeConstraint(ctx context.Context, localPath string, maxMB int) (string, string, error) {
	sizeMB, err := fileSizeMB(localPath)
	if err != nil {
		return "", "", vo.Classify(vo.ErrorKindFetch, fmt.Errorf("stat %s: %w", localPath, err))
	}

	if sizeMB <= float64(maxMB) {
		return localPath, "", nil
	}

	logger.Warn("File exceeds size limit, compressing", map[string]interface{}{
		"local_path": localPath,
		"size_mb":    fmt.Sprintf("%.2f", sizeMB),
		"max_mb":     maxMB,
	})

	binary := c.cfg.FFmpegBinary
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := c.lookPath(binary); err != nil {
		// Best effort, don't block: ship the oversized file and say so.
		logger.Warn("ffmpeg not found, skipping compression", map[string]interface{}{
			"local_path": localPath,
			"size_mb":    fmt.Sprintf("%.2f", sizeMB),
			"max_mb":     maxMB,
		})
		return localPath, NoteCompressionSkipped, nil
	}

	ext := filepath.Ext(localPath)
	outputPath := strings.TrimSuffix(localPath, ext) + ".compressed.mp3"

	runCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	bitrate := c.cfg.AudioBitrate
	if bitrate == "" {
		bitrate = "128k"
	}
	cmd := exec.CommandContext(runCtx, binary,
		"-hide_banner", "-y",
		"-i", localPath,
		"-vn",
		"-b:a", bitrate,
		"-f", "mp3",
		outputPath,
	)
	logger.Infof("ffmpeg command local_path=%s command=%s", localPath, strings.Join(cmd.Args, " "))

	if out, err := cmd.CombinedOutput(); err != nil {
		tempfile.Release(outputPath)
		return "", "", vo.Classify(vo.ErrorKindCompressionInsufficient,
			fmt.Errorf("compression failed: %v: %s", err, tail(string(out), 512)))
	}

	compressedMB, err := fileSizeMB(outputPath)
	if err != nil {
		tempfile.Release(outputPath)
		return "", "", vo.Classify(vo.ErrorKindCompressionInsufficient, fmt.Errorf("stat compressed output: %w", err))
	}

	if compressedMB > float64(maxMB) {
		// Never silently ship an oversized artifact.
		tempfile.Release(outputPath)
		return "", "", vo.Classify(vo.ErrorKindCompressionInsufficient,
			fmt.Errorf("compressed file is still %.2fMB, limit is %dMB", compressedMB, maxMB))
	}

	logger.Info("Compression completed", map[string]interface{}{
		"original_mb":   fmt.Sprintf("%.2f", sizeMB),
		"compressed_mb": fmt.Sprintf("%.2f", compressedMB),
		"output_path":   outputPath,
	})
	return outputPath, "", nil
}

func fileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()) / (1024 * 1024), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
