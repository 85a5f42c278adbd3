package service

import (
	"fmt"
	"io"
)

// WriteSyncReport 输出控制台同步报告
//
// 每个文件一行 "<file> scanned=<n> changed=<n>"，随后按修复次数降序列出 "  <field> => <count>"，
// 最后输出输入与输出目录。
func WriteSyncReport(w io.Writer, result *SyncResult) error {
	if result == nil || result.Report == nil {
		return nil
	}
	for _, stats := range result.Report.Files {
		if _, err := fmt.Fprintf(w, "%s scanned=%d changed=%d\n", stats.File, stats.Scanned, stats.Changed); err != nil {
			return err
		}
		for _, fc := range stats.Sorted() {
			if _, err := fmt.Fprintf(w, "  %s => %d\n", fc.Field, fc.Count); err != nil {
				return err
			}
		}
	}
	output := result.OutputDir
	if result.DryRun {
		output = "(dry-run, nothing written)"
	}
	_, err := fmt.Fprintf(w, "input: %s\noutput: %s\n", result.InputDir, output)
	return err
}
