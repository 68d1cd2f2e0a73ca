package app

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bizdesk/internal/config"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/provider"
	"github.com/bizdesk/internal/router"
	"github.com/bizdesk/internal/worker"
)

const sessionSweepInterval = time.Minute

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services,
			NewHTTPService(cfg.Server.Host, cfg.Server.Port, engine),
			NewSessionSweeper(container.Sessions, sessionSweepInterval),
		)
	}

	// 初始化 Worker 服务；all 模式下队列未启用时跳过
	if mode == ModeAll && !cfg.Queue.Enabled {
		logger.Warnw("app_worker_skipped", "reason", "queue disabled")
	} else if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no services for mode %q", mode)
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", net.JoinHostPort(opts.Config.Server.Host, opts.Config.Server.Port),
		"mode", opts.Mode,
		"deletion_policy", opts.Config.Console.ChildDeletionPolicy,
	)
	return RunWithOptions(runner, opts)
}
