package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/bizdesk/internal/app"
	"github.com/bizdesk/internal/config"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	migrateOnly := flag.Bool("migrate", false, "仅执行数据库迁移后退出")
	flag.Parse()

	printStartupBanner()
	if err := run(*mode, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "bizdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(mode string, migrateOnly bool) error {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()

	if !app.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q", mode)
	}

	if err := models.InitDB(cfg.Database.ToDBOptions()); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	if migrateOnly {
		logger.Infow("db_migrated", "driver", cfg.Database.Driver)
		return nil
	}
	if err := models.EnsureDefaultLocation(); err != nil {
		logger.Warnw("default_location_init_failed", "error", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	err := app.Run(app.Options{
		Config:          cfg,
		Logger:          logger.S(),
		Signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
		Mode:            mode,
	})
	if err != nil {
		return fmt.Errorf("服务运行失败: %w", err)
	}
	return nil
}

func printStartupBanner() {
	fmt.Println(ansiCyan + ansiBold + "bizdesk" + ansiReset + ansiDim + " · product catalog & edit console" + ansiReset)
	fmt.Println(ansiGreen + "• persistence API: /api/v1/admin" + ansiReset)
	fmt.Println(ansiGreen + "• edit console:    /api/v1/console" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
