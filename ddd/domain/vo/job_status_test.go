package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusHappyPath(t *testing.T) {
	// accepted → fetching → transforming → publishing → cleaning → notifying → done
	assert.True(t, JobStatusAccepted.CanTransitionTo(JobStatusFetching))
	assert.True(t, JobStatusFetching.CanTransitionTo(JobStatusTransforming))
	assert.True(t, JobStatusTransforming.CanTransitionTo(JobStatusPublishing))
	assert.True(t, JobStatusPublishing.CanTransitionTo(JobStatusCleaning))
	assert.True(t, JobStatusCleaning.CanTransitionTo(JobStatusNotifying))
	assert.True(t, JobStatusNotifying.CanTransitionTo(JobStatusDone))
}

func TestJobStatusSkipTransform(t *testing.T) {
	// 视频目的地没有预处理阶段
	assert.True(t, JobStatusFetching.CanTransitionTo(JobStatusPublishing))
}

func TestJobStatusFailureShortcutsToCleaning(t *testing.T) {
	// 任何执行阶段失败后都直接进入清理
	for _, s := range []JobStatus{JobStatusAccepted, JobStatusFetching, JobStatusTransforming, JobStatusPublishing} {
		assert.True(t, s.CanTransitionTo(JobStatusCleaning), "from %s", s)
	}
}

func TestJobStatusInvalidTransitions(t *testing.T) {
	assert.False(t, JobStatusDone.CanTransitionTo(JobStatusFetching))
	assert.False(t, JobStatusCleaning.CanTransitionTo(JobStatusPublishing))
	assert.False(t, JobStatusNotifying.CanTransitionTo(JobStatusCleaning))
	assert.False(t, JobStatusAccepted.CanTransitionTo(JobStatusPublishing))
}

func TestJobStatusIsFinal(t *testing.T) {
	assert.True(t, JobStatusDone.IsFinal())
	assert.False(t, JobStatusNotifying.IsFinal())
}
