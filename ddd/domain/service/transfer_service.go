package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"transfer-service/ddd/domain/entity"
	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
	"transfer-service/pkg/tempfile"
)

// TransferService 转移领域服务：驱动单个任务走完整条管道。
type TransferService interface {
	// ExecuteTransfer 执行转移任务直至终态
	ExecuteTransfer(ctx context.Context, job *entity.TransferJobEntity) error
}

type transferServiceImpl struct {
	fileStore       gateway.FileStoreGateway
	publishers      map[vo.Destination]gateway.Publisher
	sizeConstrainer gateway.SizeConstrainer
	notifier        gateway.ResultNotifier
	cfg             *config.Config
}

// NewTransferService 创建转移领域服务
func NewTransferService(
	fileStore gateway.FileStoreGateway,
	publishers map[vo.Destination]gateway.Publisher,
	sizeConstrainer gateway.SizeConstrainer,
	notifier gateway.ResultNotifier,
	cfg *config.Config,
) TransferService {
	return &transferServiceImpl{
		fileStore:       fileStore,
		publishers:      publishers,
		sizeConstrainer: sizeConstrainer,
		notifier:        notifier,
		cfg:             cfg,
	}
}

// ExecuteTransfer runs fetch → transform → publish, then always cleanup →
// notify → done. Whatever happens in the execution stages, the job reaches a
// terminal state with exactly one result and no temp files left behind.
func (s *transferServiceImpl) ExecuteTransfer(ctx context.Context, job *entity.TransferJobEntity) error {
	if s.cfg == nil {
		s.cfg = config.GetGlobalConfig()
	}

	logger.Infof("start transfer job job_id=%s destination=%s source_ref=%s",
		job.JobID(), job.Destination(), job.SourceRef())

	// 执行阶段产生的本地文件，统一在cleanup阶段释放
	var transientPaths []string
	result := s.runExecutionStages(ctx, job, &transientPaths)

	// Cleanup and notify run unconditionally, even after an execution
	// failure. Both mutate only observability state; neither can change
	// the result.
	if err := job.BeginCleanup(); err != nil {
		logger.Error("Job transition to cleaning failed", map[string]interface{}{
			"job_id": job.JobID(), "error": err.Error(),
		})
	}
	for _, p := range transientPaths {
		tempfile.Release(p)
	}

	if err := job.BeginNotify(); err != nil {
		logger.Error("Job transition to notifying failed", map[string]interface{}{
			"job_id": job.JobID(), "error": err.Error(),
		})
	}
	if job.NotifyURL() != "" {
		if err := s.notifier.Notify(ctx, job.NotifyURL(), result, job.Passthrough()); err != nil {
			// Single attempt; the caller simply misses the callback.
			logger.Error("Result notification failed", map[string]interface{}{
				"job_id":     job.JobID(),
				"notify_url": job.NotifyURL(),
				"error":      err.Error(),
			})
		}
	}

	if err := job.Complete(result); err != nil {
		return err
	}

	logger.Info("Transfer job finished", map[string]interface{}{
		"job_id":  job.JobID(),
		"success": result.Success,
		"locator": result.Locator,
	})
	return nil
}

// runExecutionStages 执行fetch/transform/publish，返回唯一终态结果。
// A panic anywhere in the stages is converted into an Unknown failure so the
// worker goroutine survives.
func (s *transferServiceImpl) runExecutionStages(ctx context.Context, job *entity.TransferJobEntity, transientPaths *[]string) (result vo.PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Transfer pipeline panicked", map[string]interface{}{
				"job_id": job.JobID(), "panic": fmt.Sprint(r),
			})
			result = vo.NewFailureResult(vo.ErrorKindUnknown, fmt.Sprintf("internal error: %v", r))
		}
	}()

	// Fetch
	if err := job.BeginFetch(); err != nil {
		return vo.FailureFromError(err, vo.ErrorKindUnknown)
	}
	if !tempfile.EnsureDirectory(s.cfg.Worker.TempDir) {
		return vo.NewFailureResult(vo.ErrorKindFetch,
			fmt.Sprintf("temp directory %s is not usable", s.cfg.Worker.TempDir))
	}
	localPath := tempfile.Reserve("transfer", path.Ext(job.SourceRef()), s.cfg.Worker.TempDir)
	*transientPaths = append(*transientPaths, localPath)

	if err := s.fileStore.FetchToLocal(ctx, job.SourceRef(), localPath); err != nil {
		logger.Error("Source fetch failed", map[string]interface{}{
			"job_id": job.JobID(), "source_ref": job.SourceRef(), "error": err.Error(),
		})
		return vo.FailureFromError(err, vo.ErrorKindFetch)
	}

	publishPath := localPath

	// Transform: only the browser-published destination has a hard upstream
	// size cap; the API destination streams any size.
	if job.Destination() == vo.DestinationRedCircle {
		if err := job.BeginTransform(); err != nil {
			return vo.FailureFromError(err, vo.ErrorKindUnknown)
		}
		constrained, note, err := s.sizeConstrainer.EnsureSizeConstraint(ctx, localPath, s.cfg.Transform.MaxSizeMB)
		if err != nil {
			return vo.FailureFromError(err, vo.ErrorKindCompressionInsufficient)
		}
		if constrained != localPath {
			*transientPaths = append(*transientPaths, constrained)
			publishPath = constrained
		}
		if note != "" {
			job.SetTransformNote(note)
		}
	}

	// Publish
	if err := job.BeginPublish(); err != nil {
		return vo.FailureFromError(err, vo.ErrorKindUnknown)
	}
	publisher, ok := s.publishers[job.Destination()]
	if !ok {
		return vo.NewFailureResult(vo.ErrorKindValidation,
			fmt.Sprintf("no publisher registered for destination %s", job.Destination()))
	}

	logger.Debugf("publishing job job_id=%s path=%s file=%s",
		job.JobID(), publishPath, filepath.Base(publishPath))
	return publisher.Publish(ctx, publishPath, job.Metadata())
}
