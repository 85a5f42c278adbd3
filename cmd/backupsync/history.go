package main

import (
	"fmt"
	"time"

	"github.com/dujiao-next/backupsync/internal/app"
	"github.com/dujiao-next/backupsync/internal/config"
	"github.com/dujiao-next/backupsync/internal/logger"

	"github.com/spf13/cobra"
)

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "列出同步日志库中最近的运行记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init(cfg.App.Mode, cfg.Log.ToLoggerOptions())
			defer logger.Sync()

			runs, err := app.ListRuns(cfg, limit)
			if err != nil {
				logger.Errorw("sync_history_failed", "error", err)
				return err
			}
			out := cmd.OutOrStdout()
			for _, run := range runs {
				output := run.OutputDir
				if output == "" {
					output = "-"
				}
				fmt.Fprintf(out, "%s %s mode=%s seed=%d scanned=%d changed=%d input=%s output=%s\n",
					run.RunID,
					run.StartedAt.UTC().Format(time.RFC3339),
					run.Mode,
					run.Seed,
					run.Scanned,
					run.Changed,
					run.InputDir,
					output,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "最多显示的记录数")
	return cmd
}
