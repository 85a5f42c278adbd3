package main

import (
	"os"
	"syscall"

	"github.com/dujiao-next/backupsync/internal/app"
	"github.com/dujiao-next/backupsync/internal/config"
	"github.com/dujiao-next/backupsync/internal/logger"
	"github.com/dujiao-next/backupsync/internal/service"

	"github.com/spf13/cobra"
)

type syncFlags struct {
	configPath string
	root       string
	input      string
	output     string
	inPlace    bool
	dryRun     bool
	seed       int64
	journal    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:          "backupsync",
		Short:        "修复备份快照中的字段与跨实体引用",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "配置文件路径（默认查找 ./config.yml 或 ./etc/config.yml）")
	cmd.Flags().StringVar(&flags.root, "root", "", "备份根目录（默认取配置 backup.root）")
	cmd.Flags().StringVar(&flags.input, "input", "", "指定输入快照目录（默认取根目录下最新的备份）")
	cmd.Flags().StringVar(&flags.output, "output", "", "指定输出目录（默认 {input}-synced）")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "直接覆盖输入目录")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "只输出统计，不写任何文件")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "随机种子（0 表示按时间生成，默认取配置 repair.seed）")
	cmd.Flags().BoolVar(&flags.journal, "journal", false, "记录本次运行到同步日志库")
	cmd.MarkFlagsMutuallyExclusive("in-place", "output")
	cmd.AddCommand(newHistoryCmd(&flags.configPath))

	return cmd
}

func runSync(cmd *cobra.Command, flags syncFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.App.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()

	opts := service.SyncOptions{
		Root:          cfg.Backup.Root,
		Input:         flags.input,
		Output:        flags.output,
		InPlace:       flags.inPlace,
		DryRun:        flags.dryRun,
		SyncedSuffix:  cfg.Backup.SyncedSuffix,
		Seed:          cfg.Repair.Seed,
		PromotionRate: cfg.Repair.PromotionRate,
		PasswordCost:  cfg.Repair.PasswordCost,
	}
	if cmd.Flags().Changed("root") {
		opts.Root = flags.root
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = flags.seed
	}

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Sync:    opts,
		Journal: flags.journal,
		Stdout:  cmd.OutOrStdout(),
	})
}
