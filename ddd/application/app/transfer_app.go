package app

import (
	"context"
	"sync"

	"transfer-service/ddd/application/cqe"
	"transfer-service/ddd/application/dto"
	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/ddd/infrastructure/filestore"
	"transfer-service/ddd/infrastructure/queue"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
)

var (
	singleTransferApp TransferApp
	onceTransferApp   sync.Once
)

type TransferApp interface {
	// SubmitTransfer 提交转移任务；校验通过即入队并立刻返回
	SubmitTransfer(ctx context.Context, req *cqe.CreateTransferReq) (*dto.TransferJobDto, error)
	// CreateShareLink 为存储对象创建公开直链
	CreateShareLink(ctx context.Context, req *cqe.ShareLinkReq) (*dto.ShareLinkDto, error)
	// RevokeShareLink 撤销存储对象的公开链接
	RevokeShareLink(ctx context.Context, req *cqe.ShareLinkReq) error
	// TemporaryShareLink 获取存储对象的临时直链
	TemporaryShareLink(ctx context.Context, req *cqe.ShareLinkReq) (*dto.ShareLinkDto, error)
}

type transferAppImpl struct {
	jobQueue  queue.JobQueue
	fileStore gateway.FileStoreGateway
}

func DefaultTransferApp() TransferApp {
	onceTransferApp.Do(func() {
		cfg := config.GetGlobalConfig()
		singleTransferApp = NewTransferAppWith(queue.DefaultJobQueue(), filestore.NewDropboxFileStore(cfg.FileStore))
	})
	return singleTransferApp
}

func NewTransferAppWith(q queue.JobQueue, fileStore gateway.FileStoreGateway) TransferApp {
	return &transferAppImpl{
		jobQueue:  q,
		fileStore: fileStore,
	}
}

// SubmitTransfer validates synchronously and enqueues; everything after the
// 202 happens in the worker.
func (t *transferAppImpl) SubmitTransfer(ctx context.Context, req *cqe.CreateTransferReq) (*dto.TransferJobDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := entity.NewTransferJobEntity(
		vo.Destination(req.Destination),
		req.SourceRef,
		req.ToMetadata(),
		req.NotifyURL,
		req.Passthrough,
	)

	if err := t.jobQueue.Enqueue(ctx, job); err != nil {
		return nil, err
	}

	logger.Info("Transfer job accepted", map[string]interface{}{
		"job_id":      job.JobID(),
		"destination": req.Destination,
		"source_ref":  req.SourceRef,
	})

	return dto.NewTransferJobDto(job), nil
}

// CreateShareLink 为存储对象创建公开直链
func (t *transferAppImpl) CreateShareLink(ctx context.Context, req *cqe.ShareLinkReq) (*dto.ShareLinkDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	url, err := t.fileStore.CreatePublicLink(ctx, req.SourceRef)
	if err != nil {
		return nil, err
	}
	return &dto.ShareLinkDto{SourceRef: req.SourceRef, URL: url}, nil
}

// RevokeShareLink 撤销存储对象的公开链接
func (t *transferAppImpl) RevokeShareLink(ctx context.Context, req *cqe.ShareLinkReq) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return t.fileStore.RevokeLink(ctx, req.SourceRef)
}

// TemporaryShareLink 获取存储对象的临时直链
func (t *transferAppImpl) TemporaryShareLink(ctx context.Context, req *cqe.ShareLinkReq) (*dto.ShareLinkDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	url, err := t.fileStore.TemporaryLink(ctx, req.SourceRef)
	if err != nil {
		return nil, err
	}
	return &dto.ShareLinkDto{SourceRef: req.SourceRef, URL: url}, nil
}
