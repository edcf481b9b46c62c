package cqe

import (
	"time"

	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/errno"
)

// CreateTransferReq 创建转移任务请求
type CreateTransferReq struct {
	Destination    string                 `json:"-"`               // 由路由决定，不从请求体读取
	SourceRef      string                 `json:"source_ref"`      // 文件存储中的源路径
	Title          string                 `json:"title"`           // 标题
	Description    string                 `json:"description"`     // 描述
	Tags           []string               `json:"tags"`            // 标签（可选）
	ThumbnailRef   string                 `json:"thumbnail_ref"`   // 封面图源路径（可选）
	SchedulingTime string                 `json:"scheduling_time"` // RFC3339定时发布时间（可选）
	TranscriptURL  string                 `json:"transcript_url"`  // 字幕文件地址（可选）
	NotifyURL      string                 `json:"notify_url"`      // 结果回调地址（可选）
	Passthrough    map[string]interface{} `json:"passthrough"`     // 透传字段，回调时原样返回

	schedulingTime *time.Time
}

// Validate 校验请求并解析定时发布时间
func (req *CreateTransferReq) Validate() error {
	if req.SourceRef == "" {
		return errno.ErrSourceRefRequired
	}
	if req.Title == "" {
		return errno.ErrTitleRequired
	}
	if req.Description == "" {
		return errno.ErrDescriptionRequired
	}
	if !vo.Destination(req.Destination).IsValid() {
		return errno.ErrDestinationInvalid
	}

	if req.SchedulingTime != "" {
		t, err := time.Parse(time.RFC3339, req.SchedulingTime)
		if err != nil {
			return errno.ErrSchedulingInvalid
		}
		req.schedulingTime = &t
	}

	return nil
}

// ToMetadata 转换为发布元数据；必须在Validate之后调用。
func (req *CreateTransferReq) ToMetadata() vo.PublishMetadata {
	return vo.PublishMetadata{
		Title:          req.Title,
		Description:    req.Description,
		Tags:           req.Tags,
		ThumbnailRef:   req.ThumbnailRef,
		SchedulingTime: req.schedulingTime,
		TranscriptURL:  req.TranscriptURL,
	}
}

// ShareLinkReq 共享链接操作请求
type ShareLinkReq struct {
	SourceRef string `json:"source_ref"`
}

// Validate 校验请求
func (req *ShareLinkReq) Validate() error {
	if req.SourceRef == "" {
		return errno.ErrSourceRefRequired
	}
	return nil
}
