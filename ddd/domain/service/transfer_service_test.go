package service

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
)

// fakeFileStore 把固定内容写到localPath，或返回注入的错误
type fakeFileStore struct {
	fetchErr error
	content  []byte
}

func (f *fakeFileStore) AccessToken(ctx context.Context) (string, error) { return "token", nil }

func (f *fakeFileStore) FetchToLocal(ctx context.Context, sourceRef, localPath string) error {
	if f.fetchErr != nil {
		return f.fetchErr
	}
	return os.WriteFile(localPath, f.content, 0o644)
}

func (f *fakeFileStore) CreatePublicLink(ctx context.Context, sourceRef string) (string, error) {
	return "https://store.example/" + sourceRef, nil
}

func (f *fakeFileStore) RevokeLink(ctx context.Context, sourceRef string) error { return nil }

func (f *fakeFileStore) TemporaryLink(ctx context.Context, sourceRef string) (string, error) {
	return "https://store.example/tmp/" + sourceRef, nil
}

// fakePublisher 记录收到的路径和元数据
type fakePublisher struct {
	result    vo.PublishResult
	gotPath   string
	gotMeta   vo.PublishMetadata
	panicWith interface{}

	// pathExisted records whether the local file was present at publish time.
	pathExisted bool
}

func (f *fakePublisher) Publish(ctx context.Context, localPath string, meta vo.PublishMetadata) vo.PublishResult {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.gotPath = localPath
	f.gotMeta = meta
	_, err := os.Stat(localPath)
	f.pathExisted = err == nil
	return f.result
}

// fakeConstrainer 可配置返回压缩副本或备注
type fakeConstrainer struct {
	note       string
	makeCopy   bool
	gotPath    string
	copiedPath string
}

func (f *fakeConstrainer) EnsureSizeConstraint(ctx context.Context, localPath string, maxMB int) (string, string, error) {
	f.gotPath = localPath
	if !f.makeCopy {
		return localPath, f.note, nil
	}
	f.copiedPath = localPath + ".compressed.mp3"
	if err := os.WriteFile(f.copiedPath, []byte("compressed"), 0o644); err != nil {
		return "", "", err
	}
	return f.copiedPath, f.note, nil
}

// fakeNotifier 记录每次回调
type fakeNotifier struct {
	calls   atomic.Int64
	lastURL string
	last    vo.PublishResult
	lastPT  map[string]interface{}
	err     error
}

func (f *fakeNotifier) Notify(ctx context.Context, notifyURL string, result vo.PublishResult, passthrough map[string]interface{}) error {
	f.calls.Add(1)
	f.lastURL = notifyURL
	f.last = result
	f.lastPT = passthrough
	return f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Worker:    config.WorkerConfig{TempDir: t.TempDir()},
		Transform: config.TransformConfig{MaxSizeMB: 250},
	}
}

func tempDirEmpty(t *testing.T, dir string) bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries) == 0
}

func newJob(dest vo.Destination, notifyURL string) *entity.TransferJobEntity {
	return entity.NewTransferJobEntity(
		dest,
		"/recordings/ep1.mp4",
		vo.PublishMetadata{Title: "Ep 1", Description: "d"},
		notifyURL,
		map[string]interface{}{"episode": 1},
	)
}

func TestExecuteTransferVideoHappyPath(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{content: []byte("media")}
	pub := &fakePublisher{result: vo.NewSuccessResult("https://youtu.be/abc", "ok")}
	notifier := &fakeNotifier{}

	svc := NewTransferService(store,
		map[vo.Destination]gateway.Publisher{vo.DestinationYouTube: pub},
		&fakeConstrainer{}, notifier, cfg)

	job := newJob(vo.DestinationYouTube, "https://example.com/hook")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	assert.True(t, job.IsDone())
	require.NotNil(t, job.Result())
	assert.True(t, job.Result().Success)
	assert.Equal(t, "https://youtu.be/abc", job.Result().Locator)

	// 发布时文件在场，结束后临时目录必须清空
	assert.True(t, pub.pathExisted)
	assert.True(t, tempDirEmpty(t, cfg.Worker.TempDir))

	// 恰好一次回调，透传字段原样带回
	assert.Equal(t, int64(1), notifier.calls.Load())
	assert.Equal(t, "https://example.com/hook", notifier.lastURL)
	assert.Equal(t, 1, notifier.lastPT["episode"])
	assert.True(t, notifier.last.Success)
}

func TestExecuteTransferFetchFailure(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{fetchErr: vo.Classify(vo.ErrorKindFetch, errors.New("object missing"))}
	pub := &fakePublisher{result: vo.NewSuccessResult("x", "y")}
	notifier := &fakeNotifier{}

	svc := NewTransferService(store,
		map[vo.Destination]gateway.Publisher{vo.DestinationYouTube: pub},
		&fakeConstrainer{}, notifier, cfg)

	job := newJob(vo.DestinationYouTube, "https://example.com/hook")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	assert.True(t, job.IsDone())
	assert.False(t, job.Result().Success)
	assert.Equal(t, vo.ErrorKindFetch, job.Result().ErrorKind)

	// 发布器未被调用，回调仍然发出一次
	assert.Empty(t, pub.gotPath)
	assert.Equal(t, int64(1), notifier.calls.Load())
	assert.True(t, tempDirEmpty(t, cfg.Worker.TempDir))
}

func TestExecuteTransferAudioUsesConstrainer(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{content: []byte("audio")}
	pub := &fakePublisher{result: vo.NewSuccessResult("https://app.redcircle.com/shows/x/ep/1", "ok")}
	constrainer := &fakeConstrainer{makeCopy: true, note: "compression skipped"}
	notifier := &fakeNotifier{}

	svc := NewTransferService(store,
		map[vo.Destination]gateway.Publisher{vo.DestinationRedCircle: pub},
		constrainer, notifier, cfg)

	job := newJob(vo.DestinationRedCircle, "")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	// 发布的是压缩副本，携带降级备注
	assert.Equal(t, constrainer.copiedPath, pub.gotPath)
	assert.Equal(t, "compression skipped", pub.gotMeta.TransformNote)

	// 原文件与压缩副本都被清理；没有notify_url则不回调
	assert.True(t, tempDirEmpty(t, cfg.Worker.TempDir))
	assert.Equal(t, int64(0), notifier.calls.Load())
	assert.True(t, job.Result().Success)
}

func TestExecuteTransferVideoSkipsConstrainer(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{content: []byte("video")}
	pub := &fakePublisher{result: vo.NewSuccessResult("l", "m")}
	constrainer := &fakeConstrainer{}
	notifier := &fakeNotifier{}

	svc := NewTransferService(store,
		map[vo.Destination]gateway.Publisher{vo.DestinationYouTube: pub},
		constrainer, notifier, cfg)

	job := newJob(vo.DestinationYouTube, "")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	assert.Empty(t, constrainer.gotPath, "video destination must not run the size constraint")
}

func TestExecuteTransferNotifierFailureKeepsResult(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{content: []byte("media")}
	pub := &fakePublisher{result: vo.NewSuccessResult("l", "m")}
	notifier := &fakeNotifier{err: vo.Classify(vo.ErrorKindNotification, errors.New("endpoint down"))}

	svc := NewTransferService(store,
		map[vo.Destination]gateway.Publisher{vo.DestinationYouTube: pub},
		&fakeConstrainer{}, notifier, cfg)

	job := newJob(vo.DestinationYouTube, "https://example.com/hook")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	// 回调失败不改变任务结果，也不重试
	assert.True(t, job.Result().Success)
	assert.Equal(t, int64(1), notifier.calls.Load())
}

func TestExecuteTransferPublisherPanic(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{content: []byte("media")}
	pub := &fakePublisher{panicWith: "selector vanished"}
	notifier := &fakeNotifier{}

	svc := NewTransferService(store,
		map[vo.Destination]gateway.Publisher{vo.DestinationYouTube: pub},
		&fakeConstrainer{}, notifier, cfg)

	job := newJob(vo.DestinationYouTube, "https://example.com/hook")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	assert.True(t, job.IsDone())
	assert.False(t, job.Result().Success)
	assert.Equal(t, vo.ErrorKindUnknown, job.Result().ErrorKind)

	// panic之后清理与回调照常执行
	assert.True(t, tempDirEmpty(t, cfg.Worker.TempDir))
	assert.Equal(t, int64(1), notifier.calls.Load())
}

func TestExecuteTransferUnknownDestination(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeFileStore{content: []byte("media")}
	notifier := &fakeNotifier{}

	svc := NewTransferService(store, map[vo.Destination]gateway.Publisher{}, &fakeConstrainer{}, notifier, cfg)

	job := newJob(vo.DestinationYouTube, "")
	require.NoError(t, svc.ExecuteTransfer(context.Background(), job))

	assert.False(t, job.Result().Success)
	assert.Equal(t, vo.ErrorKindValidation, job.Result().ErrorKind)
}
