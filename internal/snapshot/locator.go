package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoBackupDir 备份根目录下没有任何子目录
	ErrNoBackupDir = errors.New("no backup directory found")
	// ErrInputUnreadable 指定的输入目录不可读
	ErrInputUnreadable = errors.New("input directory is unreadable")
)

// ResolveInputDir 解析输入快照目录
//
// override 非空时按当前工作目录解析并直接使用；否则返回 root 下修改时间最新的子目录。
// 运行期间出现更新的备份目录不会被感知。
func ResolveInputDir(root, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInputUnreadable, override, err)
		}
		if _, err := os.ReadDir(abs); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInputUnreadable, abs, err)
		}
		return abs, nil
	}
	return LatestDir(root)
}

// LatestDir 返回 root 下修改时间最新的直接子目录
func LatestDir(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve backups root failed: %w", err)
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrNoBackupDir, absRoot, err)
	}

	var latest string
	var latestMod int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime().UnixNano()
		if latest == "" || mod > latestMod {
			latest = filepath.Join(absRoot, entry.Name())
			latestMod = mod
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoBackupDir, absRoot)
	}
	return latest, nil
}
