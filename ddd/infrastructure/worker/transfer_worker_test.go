package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/vo"
	"transfer-service/ddd/infrastructure/queue"
)

// fakeTransferService 把任务直接推进到终态
type fakeTransferService struct {
	mu        sync.Mutex
	processed []string
	result    vo.PublishResult
}

func (f *fakeTransferService) ExecuteTransfer(ctx context.Context, job *entity.TransferJobEntity) error {
	f.mu.Lock()
	f.processed = append(f.processed, job.JobID())
	f.mu.Unlock()

	_ = job.BeginFetch()
	_ = job.BeginCleanup()
	_ = job.BeginNotify()
	return job.Complete(f.result)
}

func (f *fakeTransferService) processedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed)
}

func queuedJob() *entity.TransferJobEntity {
	return entity.NewTransferJobEntity(
		vo.DestinationYouTube,
		"/recordings/a.mp4",
		vo.PublishMetadata{Title: "a", Description: "b"},
		"",
		nil,
	)
}

func TestWorkerProcessesQueuedJobs(t *testing.T) {
	q := queue.NewMemoryJobQueue(10)
	svc := &fakeTransferService{result: vo.NewSuccessResult("l", "m")}
	w := NewTransferWorker("w1", q, svc, 2, time.Second)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), queuedJob()))
	}

	require.Eventually(t, func() bool {
		return svc.processedCount() == 5
	}, 2*time.Second, 10*time.Millisecond)

	stats := w.GetStats()
	assert.Equal(t, uint64(5), stats.ProcessedJobs)
	assert.Equal(t, uint64(5), stats.SuccessfulJobs)
	assert.Equal(t, uint64(0), stats.FailedJobs)
}

func TestWorkerCountsFailures(t *testing.T) {
	q := queue.NewMemoryJobQueue(10)
	svc := &fakeTransferService{result: vo.NewFailureResult(vo.ErrorKindFetch, "gone")}
	w := NewTransferWorker("w1", q, svc, 1, time.Second)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, q.Enqueue(context.Background(), queuedJob()))

	require.Eventually(t, func() bool {
		return w.GetStats().ProcessedJobs == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, uint64(1), w.GetStats().FailedJobs)
}

func TestWorkerStartTwice(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	defer q.Close()
	w := NewTransferWorker("w1", q, &fakeTransferService{}, 1, time.Second)

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

func TestWorkerStopIdempotent(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	defer q.Close()
	w := NewTransferWorker("w1", q, &fakeTransferService{}, 1, time.Second)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

// blockingTransferService 卡在任务处理中，由测试放行
type blockingTransferService struct {
	entered chan struct{}
	release chan struct{}
	result  vo.PublishResult
}

func (s *blockingTransferService) ExecuteTransfer(ctx context.Context, job *entity.TransferJobEntity) error {
	s.entered <- struct{}{}
	<-s.release

	_ = job.BeginFetch()
	_ = job.BeginCleanup()
	_ = job.BeginNotify()
	return job.Complete(s.result)
}

func TestWorkerStopWaitsForInflightJob(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	svc := &blockingTransferService{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  vo.NewSuccessResult("l", "m"),
	}
	w := NewTransferWorker("w1", q, svc, 1, 5*time.Second)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, q.Enqueue(context.Background(), queuedJob()))
	<-svc.entered

	stopped := make(chan error, 1)
	go func() { stopped <- w.Stop() }()

	// 在途任务没结束前Stop不能返回
	select {
	case err := <-stopped:
		t.Fatalf("Stop returned before in-flight job finished: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(svc.release)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after in-flight job completed")
	}

	assert.Equal(t, uint64(1), w.GetStats().ProcessedJobs)
	assert.False(t, w.IsRunning())
}

func TestWorkerStopGracePeriodElapses(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	svc := &blockingTransferService{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  vo.NewSuccessResult("l", "m"),
	}
	w := NewTransferWorker("w1", q, svc, 1, 50*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, q.Enqueue(context.Background(), queuedJob()))
	<-svc.entered

	start := time.Now()
	err := w.Stop()
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	close(svc.release)
}
