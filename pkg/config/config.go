package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	FileStore FileStoreConfig `mapstructure:"filestore"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	RedCircle RedCircleConfig `mapstructure:"redcircle"`
	Transform TransformConfig `mapstructure:"transform"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// FileStoreConfig Dropbox文件存储配置
type FileStoreConfig struct {
	TokenURL     string        `mapstructure:"token_url"`
	ContentURL   string        `mapstructure:"content_url"`
	APIURL       string        `mapstructure:"api_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RefreshToken string        `mapstructure:"refresh_token"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// YouTubeConfig YouTube发布配置
type YouTubeConfig struct {
	TokenURL         string        `mapstructure:"token_url"`
	UploadURL        string        `mapstructure:"upload_url"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	RefreshToken     string        `mapstructure:"refresh_token"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	ChunkSize        int           `mapstructure:"chunk_size"`
	ThumbnailTimeout time.Duration `mapstructure:"thumbnail_timeout"`
	ThumbnailMaxMB   int           `mapstructure:"thumbnail_max_mb"`
}

// RedCircleConfig RedCircle浏览器发布配置
type RedCircleConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Email            string        `mapstructure:"email"`
	Password         string        `mapstructure:"password"`
	ShowTitle        string        `mapstructure:"show_title"`
	Headless         bool          `mapstructure:"headless"`
	ChromePath       string        `mapstructure:"chrome_path"`
	StepTimeout      time.Duration `mapstructure:"step_timeout"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	PollDeadline     time.Duration `mapstructure:"poll_deadline"`
	ModalDismissMax  int           `mapstructure:"modal_dismiss_max"`
	ModalDismissWait time.Duration `mapstructure:"modal_dismiss_wait"`
}

// TransformConfig 媒体预处理配置
type TransformConfig struct {
	FFmpegBinary string        `mapstructure:"ffmpeg_binary"`
	MaxSizeMB    int           `mapstructure:"max_size_mb"`
	AudioBitrate string        `mapstructure:"audio_bitrate"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// WorkerConfig Worker相关配置
type WorkerConfig struct {
	WorkerID            string        `mapstructure:"worker_id"`
	MaxConcurrentJobs   int           `mapstructure:"max_concurrent_jobs"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	TempDir             string        `mapstructure:"temp_dir"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// WebhookConfig 结果回调配置
type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProfilingConfig pyroscope配置
type ProfilingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
}

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig 获取全局配置
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("server.port", 8085)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")

	// 设置环境变量前缀
	v.SetEnvPrefix("GO_TRANSFER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	if c.FileStore.TokenURL == "" {
		c.FileStore.TokenURL = "https://api.dropbox.com/oauth2/token"
	}
	if c.FileStore.ContentURL == "" {
		c.FileStore.ContentURL = "https://content.dropboxapi.com/2"
	}
	if c.FileStore.APIURL == "" {
		c.FileStore.APIURL = "https://api.dropboxapi.com/2"
	}
	if c.FileStore.HTTPTimeout <= 0 {
		c.FileStore.HTTPTimeout = 30 * time.Second
	}

	if c.YouTube.TokenURL == "" {
		c.YouTube.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if c.YouTube.UploadURL == "" {
		c.YouTube.UploadURL = "https://www.googleapis.com/upload/youtube/v3"
	}
	if c.YouTube.MaxAttempts <= 0 {
		c.YouTube.MaxAttempts = 3
	}
	if c.YouTube.RetryBackoff <= 0 {
		c.YouTube.RetryBackoff = 5 * time.Second
	}
	if c.YouTube.ChunkSize <= 0 {
		c.YouTube.ChunkSize = 64 * 1024
	}
	if c.YouTube.ThumbnailTimeout <= 0 {
		c.YouTube.ThumbnailTimeout = 30 * time.Second
	}
	if c.YouTube.ThumbnailMaxMB <= 0 {
		c.YouTube.ThumbnailMaxMB = 10
	}

	if c.RedCircle.BaseURL == "" {
		c.RedCircle.BaseURL = "https://app.redcircle.com"
	}
	if c.RedCircle.StepTimeout <= 0 {
		c.RedCircle.StepTimeout = 10 * time.Minute
	}
	if c.RedCircle.PollInterval <= 0 {
		c.RedCircle.PollInterval = time.Second
	}
	if c.RedCircle.PollDeadline <= 0 {
		c.RedCircle.PollDeadline = 15 * time.Minute
	}
	if c.RedCircle.ModalDismissMax <= 0 {
		c.RedCircle.ModalDismissMax = 6
	}
	if c.RedCircle.ModalDismissWait <= 0 {
		c.RedCircle.ModalDismissWait = time.Second
	}

	if c.Transform.FFmpegBinary == "" {
		c.Transform.FFmpegBinary = "ffmpeg"
	}
	if c.Transform.MaxSizeMB <= 0 {
		c.Transform.MaxSizeMB = 250
	}
	if c.Transform.AudioBitrate == "" {
		c.Transform.AudioBitrate = "128k"
	}
	if c.Transform.Timeout <= 0 {
		c.Transform.Timeout = time.Hour
	}

	if c.Worker.WorkerID == "" {
		c.Worker.WorkerID = "transfer-worker"
	}
	if c.Worker.MaxConcurrentJobs <= 0 {
		c.Worker.MaxConcurrentJobs = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentJobs * 10
	}
	if c.Worker.TempDir == "" {
		c.Worker.TempDir = os.TempDir()
	}
	if c.Worker.ShutdownGracePeriod <= 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}

	if c.Webhook.Timeout <= 0 {
		c.Webhook.Timeout = 30 * time.Second
	}
}

// Addr 获取HTTP监听地址
func (c *ServerConfig) Addr() string {
	host := c.Host
	return fmt.Sprintf("%s:%d", host, c.Port)
}
