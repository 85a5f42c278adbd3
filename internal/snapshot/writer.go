package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"

	"golang.org/x/sync/errgroup"
)

// DefaultSyncedSuffix 默认输出目录后缀
const DefaultSyncedSuffix = "-synced"

var unsafePathChars = strings.NewReplacer(":", "-", ".", "-", "+", "-", " ", "_")

// OutputOptions 输出目录解析参数
type OutputOptions struct {
	InputDir string
	Override string
	InPlace  bool
	Suffix   string
	Now      time.Time
}

// ResolveOutputDir 计算输出目录
//
// 原地模式直接返回输入目录；否则使用 override 或 {input}{suffix}，目标已存在时追加时间戳后缀。
func ResolveOutputDir(opts OutputOptions) (string, error) {
	if opts.InPlace {
		return opts.InputDir, nil
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSyncedSuffix
	}
	target := filepath.Clean(opts.InputDir) + suffix
	if strings.TrimSpace(opts.Override) != "" {
		abs, err := filepath.Abs(opts.Override)
		if err != nil {
			return "", fmt.Errorf("resolve output dir failed: %w", err)
		}
		target = abs
	}
	if _, err := os.Stat(target); err == nil {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		target = target + "-" + unsafePathChars.Replace(now.UTC().Format(time.RFC3339Nano))
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat output dir failed: %w", err)
	}
	return target, nil
}

// Write 将修复后的五个实体集合写入目标目录（2 空格缩进 JSON）
func Write(ctx context.Context, dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, entity := range constants.EntityOrder {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records := snap.Records(entity)
			if records == nil {
				records = []models.Record{}
			}
			path := filepath.Join(dir, constants.EntityFile(entity))
			if err := writeJSONAtomic(path, records); err != nil {
				return fmt.Errorf("write %s failed: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeJSONAtomic(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}
