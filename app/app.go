package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	adapterhttp "transfer-service/ddd/adapter/http"
	application "transfer-service/ddd/application/app"
	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/service"
	"transfer-service/ddd/domain/vo"
	"transfer-service/ddd/infrastructure/filestore"
	"transfer-service/ddd/infrastructure/notify"
	"transfer-service/ddd/infrastructure/publisher"
	"transfer-service/ddd/infrastructure/queue"
	"transfer-service/ddd/infrastructure/transform"
	"transfer-service/ddd/infrastructure/worker"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
	"transfer-service/pkg/observability"
	"transfer-service/pkg/task"
)

func Run() {
	fmt.Println("[STARTUP] Starting transfer service...")

	// 加载配置
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	// 初始化日志服务
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	logger.Infof("Transfer service starting version=%s", "1.0.0")

	observability.StartProfiling("transfer-service", cfg.Profiling)

	// FFmpeg is only needed for the size-constraint transform; without it
	// the service still runs, publishing oversized audio fails per job.
	ffmpegBin := cfg.Transform.FFmpegBinary
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpegBin); err != nil {
		logger.Warnf("FFmpeg binary not found, compression will be skipped binary=%s error=%s", ffmpegBin, err.Error())
	}

	// 组件装配
	logger.Infof("Initializing transfer components...")
	fileStore := filestore.NewDropboxFileStore(cfg.FileStore)
	jobQueue := queue.DefaultJobQueue()

	publishers := map[vo.Destination]gateway.Publisher{
		vo.DestinationYouTube:   publisher.NewYouTubePublisher(cfg.YouTube, cfg.Worker.TempDir),
		vo.DestinationRedCircle: publisher.NewRedCirclePublisher(cfg.RedCircle),
	}

	transferService := service.NewTransferService(
		fileStore,
		publishers,
		transform.NewFFmpegCompressor(cfg.Transform),
		notify.NewWebhookNotifier(cfg.Webhook),
		cfg,
	)

	transferApp := application.NewTransferAppWith(jobQueue, fileStore)

	transferWorker := worker.NewTransferWorker(
		cfg.Worker.WorkerID,
		jobQueue,
		transferService,
		cfg.Worker.MaxConcurrentJobs,
		cfg.Worker.ShutdownGracePeriod,
	)
	task.Register(&workerTask{worker: transferWorker, jobQueue: jobQueue})
	logger.Infof("Transfer components initialized")

	// 启动后台任务
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}

	// 创建Gin引擎
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	router := adapterhttp.NewRouter(transferApp)
	router.SetupMiddleware(engine)
	router.SetupRoutes(engine)

	// 启动HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()

	logger.Infof("HTTP server started address=%s health_url=%s api_url=%s",
		addr, fmt.Sprintf("http://%s/health", addr), fmt.Sprintf("http://%s/api/v1", addr))

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	// 先停后台任务，在关停宽限期内等在途任务走完cleanup和notify
	task.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")

	if logService != nil {
		logService.Close()
	}
	fmt.Println("[SHUTDOWN] Transfer service exited safely")
}

// workerTask 把转移工作器接入后台任务管理器
type workerTask struct {
	worker   worker.TransferWorker
	jobQueue queue.JobQueue
}

func (t *workerTask) Name() string { return "transferWorker" }

func (t *workerTask) Start(ctx context.Context) error {
	return t.worker.Start(ctx)
}

func (t *workerTask) Stop() error {
	// 关闭队列让阻塞中的Dequeue返回，再等工作协程退出
	_ = t.jobQueue.Close()
	return t.worker.Stop()
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
