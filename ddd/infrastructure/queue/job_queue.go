package queue

import (
	"context"
	"fmt"
	"sync"

	"transfer-service/ddd/domain/entity"
	"transfer-service/pkg/config"
	"transfer-service/pkg/errno"
)

var (
	singleJobQueue JobQueue
	onceJobQueue   sync.Once
)

// DefaultJobQueue 默认任务队列单例，容量取全局配置
func DefaultJobQueue() JobQueue {
	onceJobQueue.Do(func() {
		capacity := 0
		if cfg := config.GetGlobalConfig(); cfg != nil {
			capacity = cfg.Worker.QueueCapacity
		}
		singleJobQueue = NewMemoryJobQueue(capacity)
	})
	return singleJobQueue
}

// JobQueue 转移任务队列接口
type JobQueue interface {
	// Enqueue 入队任务；队列已满立即返回errno.ErrQueueFull
	Enqueue(ctx context.Context, job *entity.TransferJobEntity) error

	// Dequeue 出队任务（阻塞）
	Dequeue(ctx context.Context) (*entity.TransferJobEntity, error)

	// TryDequeue 尝试出队任务（非阻塞）
	TryDequeue(ctx context.Context) (*entity.TransferJobEntity, error)

	// Size 获取队列大小
	Size() int

	// IsEmpty 检查队列是否为空
	IsEmpty() bool

	// Close 关闭队列
	Close() error

	// IsClosed 检查队列是否已关闭
	IsClosed() bool
}

// MemoryJobQueue 基于内存的任务队列实现。任务不落盘：进程重启即丢
// 队列中的任务，这是设计内的取舍。
type MemoryJobQueue struct {
	queue   chan *entity.TransferJobEntity
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics 队列指标
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

// NewMemoryJobQueue 创建内存任务队列
func NewMemoryJobQueue(capacity int) JobQueue {
	if capacity <= 0 {
		capacity = 100
	}

	return &MemoryJobQueue{
		queue: make(chan *entity.TransferJobEntity, capacity),
		metrics: &QueueMetrics{
			MaxSize: capacity,
		},
	}
}

// Enqueue 入队任务
func (q *MemoryJobQueue) Enqueue(ctx context.Context, job *entity.TransferJobEntity) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	select {
	case q.queue <- job:
		q.updateEnqueueMetrics()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errno.ErrQueueFull
	}
}

// Dequeue 出队任务（阻塞）
func (q *MemoryJobQueue) Dequeue(ctx context.Context) (*entity.TransferJobEntity, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, fmt.Errorf("queue is closed")
	}
	ch := q.queue
	q.mu.RUnlock()

	select {
	case job, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("queue is closed")
		}
		q.updateDequeueMetrics()
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryDequeue 尝试出队任务（非阻塞）
func (q *MemoryJobQueue) TryDequeue(ctx context.Context) (*entity.TransferJobEntity, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case job := <-q.queue:
		q.updateDequeueMetrics()
		return job, nil
	default:
		return nil, nil // 队列为空
	}
}

// Size 获取队列大小
func (q *MemoryJobQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0
	}

	return len(q.queue)
}

// IsEmpty 检查队列是否为空
func (q *MemoryJobQueue) IsEmpty() bool {
	return q.Size() == 0
}

// Close 关闭队列
func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.queue)
	return nil
}

// IsClosed 检查队列是否已关闭
func (q *MemoryJobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics 获取队列指标
func (q *MemoryJobQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()

	metrics := QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		MaxSize:      q.metrics.MaxSize,
	}
	metrics.CurrentSize = q.Size()
	return metrics
}

// updateEnqueueMetrics 更新入队指标
func (q *MemoryJobQueue) updateEnqueueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.EnqueueCount++
}

// updateDequeueMetrics 更新出队指标
func (q *MemoryJobQueue) updateDequeueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.DequeueCount++
}
