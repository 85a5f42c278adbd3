package app

import (
	"io"
	"os"

	"github.com/dujiao-next/backupsync/internal/config"
	"github.com/dujiao-next/backupsync/internal/logger"
	"github.com/dujiao-next/backupsync/internal/service"

	"go.uber.org/zap"
)

// Options 同步命令启动选项
type Options struct {
	Config  *config.Config
	Logger  *zap.SugaredLogger
	Signals []os.Signal
	Sync    service.SyncOptions
	Journal bool      // 是否记录运行日志（命令行开关与配置取或）
	Stdout  io.Writer // 同步报告输出
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return opts
}
