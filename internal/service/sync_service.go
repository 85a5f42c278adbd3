package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/logger"
	"github.com/dujiao-next/backupsync/internal/models"
	"github.com/dujiao-next/backupsync/internal/repair"
	"github.com/dujiao-next/backupsync/internal/repository"
	"github.com/dujiao-next/backupsync/internal/snapshot"

	"github.com/google/uuid"
)

// SyncOptions 一次同步运行的参数
type SyncOptions struct {
	Root          string  // 备份根目录
	Input         string  // 指定输入目录（为空时取最新备份）
	Output        string  // 指定输出目录
	InPlace       bool    // 覆盖输入目录
	DryRun        bool    // 只统计不写出
	SyncedSuffix  string  // 默认输出目录后缀
	Seed          int64   // 随机种子（0 表示按时间生成）
	PromotionRate float64 // appliedPromotion 生成概率
	PasswordCost  int     // bcrypt 成本
}

// SyncResult 同步运行结果
type SyncResult struct {
	RunID     string
	InputDir  string
	OutputDir string // dry-run 时为空
	DryRun    bool
	Seed      int64
	Report    *repair.Report
}

// SyncService 备份同步服务
type SyncService struct {
	runRepo repository.SyncRunRepository
	now     func() time.Time
}

// NewSyncService 创建备份同步服务；runRepo 为空时不记录运行日志
func NewSyncService(runRepo repository.SyncRunRepository) *SyncService {
	return &SyncService{runRepo: runRepo, now: time.Now}
}

// Run 定位快照 -> 加载 -> 修复 -> 写出 -> 记录运行日志
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	startedAt := s.now()
	inputDir, err := snapshot.ResolveInputDir(opts.Root, opts.Input)
	if err != nil {
		return nil, err
	}

	outputDir := ""
	if !opts.DryRun {
		outputDir, err = snapshot.ResolveOutputDir(snapshot.OutputOptions{
			InputDir: inputDir,
			Override: opts.Output,
			InPlace:  opts.InPlace,
			Suffix:   opts.SyncedSuffix,
			Now:      startedAt,
		})
		if err != nil {
			return nil, err
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = startedAt.UnixNano()
	}
	result := &SyncResult{
		RunID:     uuid.NewString(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		DryRun:    opts.DryRun,
		Seed:      seed,
	}
	log := logger.SW("run_id", result.RunID)
	log.Infow("sync_started", "input", inputDir, "output", outputDir, "mode", syncMode(opts), "seed", seed)

	snap, err := snapshot.Load(ctx, inputDir)
	if err != nil {
		return nil, err
	}
	engine := repair.NewEngine(repair.Options{
		Seed:          seed,
		Now:           s.now,
		PromotionRate: opts.PromotionRate,
		PasswordCost:  opts.PasswordCost,
	})
	result.Report = engine.Run(snap).Report

	if !opts.DryRun {
		if err := snapshot.Write(ctx, outputDir, snap); err != nil {
			return nil, err
		}
	}

	scanned, changed := result.Report.Totals()
	log.Infow("sync_finished", "scanned", scanned, "changed", changed, "elapsed", s.now().Sub(startedAt))
	s.journal(result, opts, startedAt)
	return result, nil
}

// journal 记录运行日志，失败只告警不影响同步结果
func (s *SyncService) journal(result *SyncResult, opts SyncOptions, startedAt time.Time) {
	if s.runRepo == nil {
		return
	}
	scanned, changed := result.Report.Totals()
	run := &models.SyncRun{
		RunID:      result.RunID,
		InputDir:   result.InputDir,
		OutputDir:  result.OutputDir,
		Mode:       syncMode(opts),
		Seed:       result.Seed,
		Scanned:    scanned,
		Changed:    changed,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
	}
	for _, stats := range result.Report.Files {
		fields := make(models.JSON, len(stats.Fields))
		for field, count := range stats.Fields {
			fields[field] = count
		}
		run.Files = append(run.Files, models.SyncFileStat{
			File:    stats.File,
			Scanned: stats.Scanned,
			Changed: stats.Changed,
			Fields:  fields,
		})
	}
	if err := s.runRepo.Create(run); err != nil {
		logger.Warnw("sync_journal_write_failed", "run_id", result.RunID, "error", fmt.Errorf("create sync run: %w", err))
	}
}

func syncMode(opts SyncOptions) string {
	switch {
	case opts.DryRun:
		return constants.SyncModeDryRun
	case opts.InPlace:
		return constants.SyncModeInPlace
	default:
		return constants.SyncModeNew
	}
}
