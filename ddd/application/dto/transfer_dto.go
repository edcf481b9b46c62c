package dto

import (
	"time"

	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/vo"
)

// TransferJobDto 转移任务数据传输对象
type TransferJobDto struct {
	JobID       string            `json:"job_id"`
	Destination string            `json:"destination"`
	SourceRef   string            `json:"source_ref"`
	Status      string            `json:"status"`
	Result      *vo.PublishResult `json:"result,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewTransferJobDto 从实体创建DTO
func NewTransferJobDto(job *entity.TransferJobEntity) *TransferJobDto {
	if job == nil {
		return nil
	}
	return &TransferJobDto{
		JobID:       job.JobID(),
		Destination: job.Destination().String(),
		SourceRef:   job.SourceRef(),
		Status:      job.Status().String(),
		Result:      job.Result(),
		CreatedAt:   job.CreatedAt(),
		UpdatedAt:   job.UpdatedAt(),
		CompletedAt: job.CompletedAt(),
	}
}

// ShareLinkDto 共享链接数据传输对象
type ShareLinkDto struct {
	SourceRef string `json:"source_ref"`
	URL       string `json:"url"`
}
