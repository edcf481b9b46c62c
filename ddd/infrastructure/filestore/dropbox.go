package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"

	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
	"transfer-service/pkg/errno"
	"transfer-service/pkg/logger"
)

// DropboxFileStore Dropbox存储网关实现
type DropboxFileStore struct {
	cfg config.FileStoreConfig

	// apiClient serves the JSON RPC endpoints; streamClient has no global
	// timeout because downloads of large objects are bounded by ctx instead.
	apiClient    *http.Client
	streamClient *http.Client
}

// NewDropboxFileStore 创建Dropbox存储网关
func NewDropboxFileStore(cfg config.FileStoreConfig) gateway.FileStoreGateway {
	return &DropboxFileStore{
		cfg:          cfg,
		apiClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		streamClient: &http.Client{},
	}
}

// AccessToken exchanges the long-lived refresh credential for a short-lived
// bearer token. Tokens are deliberately not cached between calls; every
// operation performs a fresh exchange.
func (s *DropboxFileStore) AccessToken(ctx context.Context) (string, error) {
	conf := &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: s.cfg.TokenURL},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.apiClient)
	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: s.cfg.RefreshToken}).Token()
	if err != nil {
		return "", vo.Classify(vo.ErrorKindAuth, fmt.Errorf("exchange refresh token: %w", err))
	}
	return token.AccessToken, nil
}

// FetchToLocal streams the remote object straight into localPath. On any
// failure the partially written file is removed before the error returns.
func (s *DropboxFileStore) FetchToLocal(ctx context.Context, sourceRef, localPath string) error {
	accessToken, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}

	apiArg, err := json.Marshal(map[string]string{"path": sourceRef})
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ContentURL+"/files/download", nil)
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Dropbox-API-Arg", string(apiArg))

	resp, err := s.streamClient.Do(req)
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, fmt.Errorf("download %s: %w", sourceRef, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return vo.Classify(vo.ErrorKindFetch, fmt.Errorf("download %s: status %d: %s", sourceRef, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	file, err := os.Create(localPath)
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, fmt.Errorf("create local file: %w", err))
	}

	written, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// Never leave a truncated file behind.
		_ = os.Remove(localPath)
		return vo.Classify(vo.ErrorKindFetch, fmt.Errorf("stream %s to %s: %w", sourceRef, localPath, err))
	}

	logger.Info("File downloaded from file store", map[string]interface{}{
		"source_ref": sourceRef,
		"local_path": localPath,
		"size":       written,
	})
	return nil
}

// CreatePublicLink 创建公开直链（dl=0重写为dl=1）
func (s *DropboxFileStore) CreatePublicLink(ctx context.Context, sourceRef string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	err := s.rpc(ctx, "/sharing/create_shared_link_with_settings", map[string]interface{}{
		"path":     sourceRef,
		"settings": map[string]string{"requested_visibility": "public"},
	}, &result)
	if err != nil {
		return "", err
	}
	return strings.Replace(result.URL, "dl=0", "dl=1", 1), nil
}

// RevokeLink 撤销公开链接
func (s *DropboxFileStore) RevokeLink(ctx context.Context, sourceRef string) error {
	var listing struct {
		Links []struct {
			URL string `json:"url"`
		} `json:"links"`
	}
	err := s.rpc(ctx, "/sharing/list_shared_links", map[string]interface{}{
		"path":        sourceRef,
		"direct_only": true,
	}, &listing)
	if err != nil {
		return err
	}

	if len(listing.Links) == 0 {
		return errno.ErrNoSharedLink
	}

	return s.rpc(ctx, "/sharing/revoke_shared_link", map[string]interface{}{
		"url": listing.Links[0].URL,
	}, nil)
}

// TemporaryLink 获取临时直链，失败时回退到公开共享链接
func (s *DropboxFileStore) TemporaryLink(ctx context.Context, sourceRef string) (string, error) {
	var result struct {
		Link string `json:"link"`
	}
	err := s.rpc(ctx, "/files/get_temporary_link", map[string]interface{}{
		"path": sourceRef,
	}, &result)
	if err == nil {
		return result.Link, nil
	}

	logger.Warn("Temporary link failed, falling back to shared link", map[string]interface{}{
		"source_ref": sourceRef,
		"error":      err.Error(),
	})
	return s.CreatePublicLink(ctx, sourceRef)
}

// rpc 调用Dropbox JSON RPC端点
func (s *DropboxFileStore) rpc(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	accessToken, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.apiClient.Do(req)
	if err != nil {
		return vo.Classify(vo.ErrorKindFetch, fmt.Errorf("%s: %w", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return vo.Classify(vo.ErrorKindFetch, fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	if out == nil {
		return nil
	}
	return vo.Classify(vo.ErrorKindFetch, json.NewDecoder(resp.Body).Decode(out))
}

// BaseName returns the final path element of a source reference, used to
// derive local file names.
func BaseName(sourceRef string) string {
	return filepath.Base(strings.TrimSuffix(sourceRef, "/"))
}
