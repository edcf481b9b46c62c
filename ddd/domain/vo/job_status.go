package vo

// JobStatus 转移任务状态
type JobStatus string

const (
	// JobStatusAccepted 已接收
	JobStatusAccepted JobStatus = "accepted"
	// JobStatusFetching 拉取源文件中
	JobStatusFetching JobStatus = "fetching"
	// JobStatusTransforming 预处理中
	JobStatusTransforming JobStatus = "transforming"
	// JobStatusPublishing 发布中
	JobStatusPublishing JobStatus = "publishing"
	// JobStatusCleaning 清理中
	JobStatusCleaning JobStatus = "cleaning"
	// JobStatusNotifying 回调通知中
	JobStatusNotifying JobStatus = "notifying"
	// JobStatusDone 已完成（成功或失败都会到达）
	JobStatusDone JobStatus = "done"
)

// IsValid 检查状态是否有效
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusAccepted, JobStatusFetching, JobStatusTransforming,
		JobStatusPublishing, JobStatusCleaning, JobStatusNotifying, JobStatusDone:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s JobStatus) String() string {
	return string(s)
}

// IsFinal 检查是否为最终状态
func (s JobStatus) IsFinal() bool {
	return s == JobStatusDone
}

// CanTransitionTo 检查是否可以转换到目标状态。清理和通知阶段无论成败
// 都会执行，所以每个执行阶段都允许直接跳到 cleaning。
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusAccepted:
		return target == JobStatusFetching || target == JobStatusCleaning
	case JobStatusFetching:
		return target == JobStatusTransforming || target == JobStatusPublishing || target == JobStatusCleaning
	case JobStatusTransforming:
		return target == JobStatusPublishing || target == JobStatusCleaning
	case JobStatusPublishing:
		return target == JobStatusCleaning
	case JobStatusCleaning:
		return target == JobStatusNotifying
	case JobStatusNotifying:
		return target == JobStatusDone
	case JobStatusDone:
		return false
	default:
		return false
	}
}
