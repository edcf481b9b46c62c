package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/service"
	"transfer-service/ddd/infrastructure/queue"
	"transfer-service/pkg/logger"
)

// TransferWorker 转移工作器接口
type TransferWorker interface {
	// Start 启动工作器
	Start(ctx context.Context) error

	// Stop 停止工作器
	Stop() error

	// IsRunning 检查工作器是否运行中
	IsRunning() bool

	// GetStats 获取工作器统计信息
	GetStats() WorkerStats
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// transferWorkerImpl 转移工作器实现
type transferWorkerImpl struct {
	id              string
	jobQueue        queue.JobQueue
	transferService service.TransferService
	workerCount     int
	gracePeriod     time.Duration
	running         bool
	cancel          context.CancelFunc
	stats           WorkerStats
	mu              sync.RWMutex
	wg              sync.WaitGroup
}

// NewTransferWorker 创建转移工作器
func NewTransferWorker(
	id string,
	jobQueue queue.JobQueue,
	transferService service.TransferService,
	workerCount int,
	gracePeriod time.Duration,
) TransferWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	if gracePeriod <= 0 {
		gracePeriod = 10 * time.Second
	}

	return &transferWorkerImpl{
		id:              id,
		jobQueue:        jobQueue,
		transferService: transferService,
		workerCount:     workerCount,
		gracePeriod:     gracePeriod,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

// Start 启动工作器
func (w *transferWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("starting transfer worker %s with %d goroutines", w.id, w.workerCount)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}

	return nil
}

// Stop 停止工作器
//
// 不能持锁等待协程退出：在途任务收尾时要拿同一把锁更新统计。
func (w *transferWorkerImpl) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	logger.Infof("stopping transfer worker %s", w.id)

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.gracePeriod):
		return fmt.Errorf("worker %s did not drain within %s", w.id, w.gracePeriod)
	}

	logger.Infof("transfer worker %s stopped", w.id)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *transferWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *transferWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *transferWorkerImpl) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger.Debugf("worker %s-%d started", w.id, workerID)
	defer logger.Debugf("worker %s-%d stopped", w.id, workerID)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.jobQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Warnf("worker %s-%d failed to dequeue job: %v", w.id, workerID, err)
				time.Sleep(time.Second) // 避免忙等待
				continue
			}

			if job == nil {
				continue
			}

			w.processJob(ctx, job, workerID)
		}
	}
}

// processJob 处理单个任务
func (w *transferWorkerImpl) processJob(ctx context.Context, job *entity.TransferJobEntity, workerID int) {
	logger.Infof("worker %s-%d processing job %s", w.id, workerID, job.JobID())

	if job.IsDone() {
		logger.Warnf("worker %s-%d skip terminal job %s status=%s", w.id, workerID, job.JobID(), job.Status().String())
		return
	}

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})

	defer func() {
		w.updateStats(func(stats *WorkerStats) {
			stats.CurrentlyRunning--
			stats.ProcessedJobs++
		})
	}()

	err := w.transferService.ExecuteTransfer(ctx, job)
	succeeded := err == nil && job.Result() != nil && job.Result().Success
	if err != nil {
		logger.Errorf("worker %s-%d failed to process job %s: %v", w.id, workerID, job.JobID(), err)
	}

	w.updateStats(func(stats *WorkerStats) {
		if succeeded {
			stats.SuccessfulJobs++
		} else {
			stats.FailedJobs++
		}
	})
}

// updateStats 线程安全地更新统计信息
func (w *transferWorkerImpl) updateStats(fn func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}
