package observability

import (
	"os"

	pyroscope "github.com/grafana/pyroscope-go"

	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
)

// StartProfiling attaches the process to a pyroscope server. The profiling
// config section controls it; PYROSCOPE_SERVER_ADDRESS overrides the address
// for ad-hoc sessions. No-op when neither yields an address.
func StartProfiling(appName string, cfg config.ProfilingConfig) {
	addr := resolveServerAddress(cfg)
	if addr == "" {
		return
	}

	_, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   addr,
		Logger:          nil,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		logger.Warnf("pyroscope start failed: %v", err)
	}
}

// resolveServerAddress 环境变量优先，其次取配置；未启用时配置地址不生效
func resolveServerAddress(cfg config.ProfilingConfig) string {
	if addr := os.Getenv("PYROSCOPE_SERVER_ADDRESS"); addr != "" {
		return addr
	}
	if !cfg.Enabled {
		return ""
	}
	return cfg.ServerAddress
}
