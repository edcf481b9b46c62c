package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/errno"
)

func testJob() *entity.TransferJobEntity {
	return entity.NewTransferJobEntity(
		vo.DestinationYouTube,
		"/recordings/a.mp4",
		vo.PublishMetadata{Title: "a", Description: "b"},
		"",
		nil,
	)
}

func TestEnqueueDequeue(t *testing.T) {
	q := NewMemoryJobQueue(2)
	defer q.Close()

	job := testJob()
	require.NoError(t, q.Enqueue(context.Background(), job))
	assert.Equal(t, 1, q.Size())

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.JobID(), got.JobID())
	assert.True(t, q.IsEmpty())
}

func TestEnqueueFullReturnsImmediately(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), testJob()))

	// 队列已满必须立即报错，不能阻塞
	err := q.Enqueue(context.Background(), testJob())
	assert.ErrorIs(t, err, errno.ErrQueueFull)
}

func TestTryDequeueEmpty(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	job, err := q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	done := make(chan *entity.TransferJobEntity, 1)
	go func() {
		job, err := q.Dequeue(context.Background())
		if err == nil {
			done <- job
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), testJob()))

	select {
	case job := <-done:
		assert.NotNil(t, job)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock")
	}
}

func TestDequeueCancelled(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseUnblocksDequeue(t *testing.T) {
	q := NewMemoryJobQueue(1)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Close())

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock on close")
	}

	assert.True(t, q.IsClosed())
	assert.Error(t, q.Enqueue(context.Background(), testJob()))
}
