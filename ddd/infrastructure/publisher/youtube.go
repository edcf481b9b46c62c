package publisher

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
	"transfer-service/pkg/tempfile"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// YouTubePublisher uploads a local file through the YouTube Data API v3
// resumable upload protocol. The read stream is recreated from byte zero on
// every attempt; the client side never resumes mid-file.
type YouTubePublisher struct {
	cfg         config.YouTubeConfig
	tempDir     string
	tokenSource oauth2.TokenSource
	client      *http.Client

	// sleep is swappable in tests to avoid real backoff waits.
	sleep func(d time.Duration)
}

// NewYouTubePublisher 创建YouTube发布适配器
func NewYouTubePublisher(cfg config.YouTubeConfig, tempDir string) *YouTubePublisher {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
	}
	return &YouTubePublisher{
		cfg:         cfg,
		tempDir:     tempDir,
		tokenSource: conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken}),
		client:      &http.Client{},
		sleep:       time.Sleep,
	}
}

var _ gateway.Publisher = (*YouTubePublisher)(nil)

// Publish uploads localPath with the given metadata. Transient failures
// (HTTP 416, 5xx, transport errors) are retried up to MaxAttempts with a
// fixed backoff; auth, quota and malformed-metadata failures are not.
func (p *YouTubePublisher) Publish(ctx context.Context, localPath string, meta vo.PublishMetadata) vo.PublishResult {
	info, err := os.Stat(localPath)
	if err != nil {
		return vo.NewFailureResult(vo.ErrorKindFetch, fmt.Sprintf("file not found: %s", localPath))
	}
	logger.Info("Starting YouTube upload", map[string]interface{}{
		"local_path": localPath,
		"title":      meta.Title,
		"size_mb":    fmt.Sprintf("%.2f", float64(info.Size())/(1024*1024)),
		"scheduled":  meta.Scheduled(),
	})

	maxAttempts := p.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var videoID string
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		videoID, lastErr = p.uploadOnce(ctx, localPath, info.Size(), meta)
		if lastErr == nil {
			break
		}

		if kind := vo.KindOf(lastErr, vo.ErrorKindTransientUpload); kind != vo.ErrorKindTransientUpload {
			// Auth, quota and malformed requests don't get better on retry.
			return vo.NewFailureResult(kind, lastErr.Error())
		}

		logger.Warn("Upload attempt failed", map[string]interface{}{
			"attempt": attempt,
			"max":     maxAttempts,
			"error":   lastErr.Error(),
		})
		if attempt < maxAttempts {
			p.sleep(p.cfg.RetryBackoff)
		}
	}
	if lastErr != nil {
		return vo.NewFailureResult(vo.ErrorKindTransientUpload, lastErr.Error())
	}

	message := "Video uploaded to YouTube"
	if meta.TransformNote != "" {
		message += " (" + meta.TransformNote + ")"
	}

	// Thumbnail attachment is best-effort and never invalidates the upload.
	if meta.ThumbnailRef != "" {
		if err := p.attachThumbnail(ctx, videoID, meta.ThumbnailRef); err != nil {
			logger.Error("Thumbnail attach failed", map[string]interface{}{
				"video_id": videoID,
				"error":    err.Error(),
			})
			message += "; thumbnail attach failed"
		}
	}

	logger.Info("YouTube upload completed", map[string]interface{}{"video_id": videoID})
	return vo.NewSuccessResult(youtubeWatchURL+videoID, message)
}

// uploadOnce runs one complete attempt: resumable session init followed by a
// single content PUT from a freshly opened stream.
func (p *YouTubePublisher) uploadOnce(ctx context.Context, localPath string, size int64, meta vo.PublishMetadata) (string, error) {
	token, err := p.tokenSource.Token()
	if err != nil {
		return "", vo.Classify(vo.ErrorKindAuth, fmt.Errorf("youtube token: %w", err))
	}

	sessionURL, err := p.initSession(ctx, token.AccessToken, size, meta)
	if err != nil {
		return "", err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", vo.Classify(vo.ErrorKindFetch, err)
	}
	defer file.Close()

	chunk := p.cfg.ChunkSize
	if chunk <= 0 {
		chunk = 64 * 1024
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, bufio.NewReaderSize(file, chunk))
	if err != nil {
		return "", vo.Classify(vo.ErrorKindTransientUpload, err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", vo.Classify(vo.ErrorKindTransientUpload, fmt.Errorf("upload: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", classifyUploadStatus(resp)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", vo.Classify(vo.ErrorKindTransientUpload, fmt.Errorf("decode upload response: %w", err))
	}
	if uploaded.ID == "" {
		return "", vo.Classify(vo.ErrorKindTransientUpload, fmt.Errorf("upload response missing video id"))
	}
	return uploaded.ID, nil
}

// initSession opens a resumable upload session and returns its URL.
func (p *YouTubePublisher) initSession(ctx context.Context, accessToken string, size int64, meta vo.PublishMetadata) (string, error) {
	status := map[string]interface{}{"privacyStatus": "public"}
	if meta.Scheduled() {
		status = map[string]interface{}{
			"privacyStatus":           "private",
			"publishAt":               meta.SchedulingTime.UTC().Format(time.RFC3339),
			"selfDeclaredMadeForKids": false,
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"snippet": map[string]interface{}{
			"title":       meta.Title,
			"description": meta.Description,
			"tags":        meta.Tags,
		},
		"status": status,
	})
	if err != nil {
		return "", vo.Classify(vo.ErrorKindTransientUpload, err)
	}

	url := p.cfg.UploadURL + "/videos?uploadType=resumable&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", vo.Classify(vo.ErrorKindTransientUpload, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Length", fmt.Sprintf("%d", size))
	req.Header.Set("X-Upload-Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", vo.Classify(vo.ErrorKindTransientUpload, fmt.Errorf("init upload session: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyUploadStatus(resp)
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", vo.Classify(vo.ErrorKindTransientUpload, fmt.Errorf("upload session response missing Location header"))
	}
	return sessionURL, nil
}

// attachThumbnail downloads the thumbnail into a transient file and posts it
// to the thumbnails endpoint. The transient file is released on every path.
func (p *YouTubePublisher) attachThumbnail(ctx context.Context, videoID, thumbnailURL string) error {
	tempPath, cleanup := tempfile.ReserveWithCleanup("yt-thumb", ".jpg", p.tempDir)
	defer cleanup()

	downloadCtx, cancel := context.WithTimeout(ctx, p.cfg.ThumbnailTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("download thumbnail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download thumbnail: status %d", resp.StatusCode)
	}

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}
	maxBytes := int64(p.cfg.ThumbnailMaxMB) * 1024 * 1024
	_, err = io.Copy(file, io.LimitReader(resp.Body, maxBytes))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}

	token, err := p.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("youtube token: %w", err)
	}

	thumb, err := os.Open(tempPath)
	if err != nil {
		return err
	}
	defer thumb.Close()

	setURL := p.cfg.UploadURL + "/thumbnails/set?videoId=" + videoID
	setReq, err := http.NewRequestWithContext(ctx, http.MethodPost, setURL, thumb)
	if err != nil {
		return err
	}
	setReq.Header.Set("Authorization", "Bearer "+token.AccessToken)
	setReq.Header.Set("Content-Type", "image/jpeg")

	setResp, err := p.client.Do(setReq)
	if err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}
	defer setResp.Body.Close()
	if setResp.StatusCode != http.StatusOK {
		return fmt.Errorf("set thumbnail: status %d", setResp.StatusCode)
	}
	return nil
}

// classifyUploadStatus maps an upload HTTP status to the retry taxonomy:
// 416 and 5xx are transient, 401 is an auth failure, 403 is quota or
// permission, anything else 4xx is a non-retryable request problem.
func classifyUploadStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(body))
	err := fmt.Errorf("status %d: %s", resp.StatusCode, detail)

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return vo.Classify(vo.ErrorKindTransientUpload, err)
	case resp.StatusCode >= 500:
		return vo.Classify(vo.ErrorKindTransientUpload, err)
	case resp.StatusCode == http.StatusUnauthorized:
		return vo.Classify(vo.ErrorKindAuth, err)
	case resp.StatusCode == http.StatusForbidden:
		return vo.Classify(vo.ErrorKindQuotaOrPermission, err)
	default:
		return vo.Classify(vo.ErrorKindUnknown, err)
	}
}
