package entity

import (
	"time"

	"github.com/google/uuid"

	"transfer-service/ddd/domain/vo"
)

// TransferJobEntity 转移任务实体
type TransferJobEntity struct {
	jobID       string                 // 任务ID
	destination vo.Destination         // 发布目的地
	sourceRef   string                 // 远端文件存储中的源引用
	metadata    vo.PublishMetadata     // 发布元数据
	notifyURL   string                 // 回调地址（可选）
	passthrough map[string]interface{} // 调用方透传字段，原样回传
	status      vo.JobStatus           // 任务状态
	result      *vo.PublishResult      // 终态结果，恰好产生一次
	createdAt   time.Time              // 创建时间
	updatedAt   time.Time              // 更新时间
	completedAt *time.Time             // 完成时间
}

// NewTransferJobEntity 创建新的转移任务实体
func NewTransferJobEntity(
	destination vo.Destination,
	sourceRef string,
	metadata vo.PublishMetadata,
	notifyURL string,
	passthrough map[string]interface{},
) *TransferJobEntity {
	now := time.Now()
	if passthrough == nil {
		passthrough = make(map[string]interface{})
	}
	return &TransferJobEntity{
		jobID:       uuid.New().String(),
		destination: destination,
		sourceRef:   sourceRef,
		metadata:    metadata,
		notifyURL:   notifyURL,
		passthrough: passthrough,
		status:      vo.JobStatusAccepted,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Getters
func (j *TransferJobEntity) JobID() string                       { return j.jobID }
func (j *TransferJobEntity) Destination() vo.Destination         { return j.destination }
func (j *TransferJobEntity) SourceRef() string                   { return j.sourceRef }
func (j *TransferJobEntity) Metadata() vo.PublishMetadata        { return j.metadata }
func (j *TransferJobEntity) NotifyURL() string                   { return j.notifyURL }
func (j *TransferJobEntity) Passthrough() map[string]interface{} { return j.passthrough }
func (j *TransferJobEntity) Status() vo.JobStatus                { return j.status }
func (j *TransferJobEntity) Result() *vo.PublishResult           { return j.result }
func (j *TransferJobEntity) CreatedAt() time.Time                { return j.createdAt }
func (j *TransferJobEntity) UpdatedAt() time.Time                { return j.updatedAt }
func (j *TransferJobEntity) CompletedAt() *time.Time             { return j.completedAt }

// SetTransformNote 记录预处理阶段的降级说明
func (j *TransferJobEntity) SetTransformNote(note string) {
	j.metadata.TransformNote = note
	j.updatedAt = time.Now()
}

func (j *TransferJobEntity) transitionTo(target vo.JobStatus) error {
	if !j.status.CanTransitionTo(target) {
		return NewDomainError("cannot transition from " + j.status.String() + " to " + target.String())
	}
	j.status = target
	j.updatedAt = time.Now()
	return nil
}

// BeginFetch 进入拉取阶段
func (j *TransferJobEntity) BeginFetch() error { return j.transitionTo(vo.JobStatusFetching) }

// BeginTransform 进入预处理阶段
func (j *TransferJobEntity) BeginTransform() error { return j.transitionTo(vo.JobStatusTransforming) }

// BeginPublish 进入发布阶段
func (j *TransferJobEntity) BeginPublish() error { return j.transitionTo(vo.JobStatusPublishing) }

// BeginCleanup 进入清理阶段；任何执行阶段都可以直接进入
func (j *TransferJobEntity) BeginCleanup() error { return j.transitionTo(vo.JobStatusCleaning) }

// BeginNotify 进入通知阶段
func (j *TransferJobEntity) BeginNotify() error { return j.transitionTo(vo.JobStatusNotifying) }

// Complete 记录终态结果并结束任务；结果只能设置一次
func (j *TransferJobEntity) Complete(result vo.PublishResult) error {
	if j.result != nil {
		return NewDomainError("job " + j.jobID + " already has a terminal result")
	}
	if err := j.transitionTo(vo.JobStatusDone); err != nil {
		return err
	}
	now := time.Now()
	j.result = &result
	j.completedAt = &now
	return nil
}

// IsDone 检查任务是否结束
func (j *TransferJobEntity) IsDone() bool { return j.status.IsFinal() }
