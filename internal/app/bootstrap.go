package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dujiao-next/backupsync/internal/config"
	"github.com/dujiao-next/backupsync/internal/models"
	"github.com/dujiao-next/backupsync/internal/repository"
	"github.com/dujiao-next/backupsync/internal/service"
)

// BuildSyncService 构建同步服务；开启运行日志时打开数据库并迁移表结构
func BuildSyncService(cfg *config.Config, journal bool) (*service.SyncService, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if !journal && !cfg.Journal.Enabled {
		return service.NewSyncService(nil), func() {}, nil
	}
	runRepo, cleanup, err := openJournal(cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewSyncService(runRepo), cleanup, nil
}

// ListRuns 按开始时间倒序列出最近的同步运行记录
func ListRuns(cfg *config.Config, limit int) ([]models.SyncRun, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	runRepo, cleanup, err := openJournal(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	runs, _, err := runRepo.List(1, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs failed: %w", err)
	}
	return runs, nil
}

func openJournal(cfg *config.Config) (*repository.GormSyncRunRepository, func(), error) {
	if err := ensureSQLiteDir(cfg.Journal.Driver, cfg.Journal.DSN); err != nil {
		return nil, nil, err
	}
	db, err := models.OpenDB(cfg.Journal.Driver, cfg.Journal.DSN, cfg.Journal.ToPoolConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open journal db failed: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate journal db failed: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewSyncRunRepository(db), cleanup, nil
}

// Run 同步命令入口：执行一次同步并输出报告
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	svc, cleanup, err := BuildSyncService(opts.Config, opts.Journal)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	result, err := svc.Run(ctx, opts.Sync)
	if err != nil {
		opts.Logger.Errorw("sync_failed", "error", err)
		return err
	}
	return service.WriteSyncReport(opts.Stdout, result)
}

// ensureSQLiteDir 为文件型 SQLite DSN 创建所在目录
func ensureSQLiteDir(driver, dsn string) error {
	normalized := strings.ToLower(strings.TrimSpace(driver))
	if normalized != "" && normalized != "sqlite" {
		return nil
	}
	path := strings.TrimPrefix(strings.TrimSpace(dsn), "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create journal dir failed: %w", err)
	}
	return nil
}
