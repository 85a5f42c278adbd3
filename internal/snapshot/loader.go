package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/logger"
	"github.com/dujiao-next/backupsync/internal/models"

	"golang.org/x/sync/errgroup"
)

// Snapshot 一次备份快照的五个实体集合
type Snapshot struct {
	Dir         string
	Collections map[string][]models.Record
}

// Records 返回实体集合，不存在时返回空切片
func (s *Snapshot) Records(entity string) []models.Record {
	if s == nil || s.Collections == nil {
		return nil
	}
	return s.Collections[entity]
}

// Load 并发读取快照目录下的五个实体文件
//
// 单个文件缺失、损坏或不是 JSON 数组时记为空集合，不中断加载。
func Load(ctx context.Context, dir string) (*Snapshot, error) {
	results := make([][]models.Record, len(constants.EntityOrder))
	g, ctx := errgroup.WithContext(ctx)
	for i, entity := range constants.EntityOrder {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, constants.EntityFile(entity))
			records, err := readCollection(path)
			if err != nil {
				logger.Warnw("snapshot_file_load_failed",
					"file", constants.EntityFile(entity),
					"path", path,
					"error", err,
				)
				records = []models.Record{}
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Dir: dir, Collections: make(map[string][]models.Record, len(results))}
	for i, entity := range constants.EntityOrder {
		snap.Collections[entity] = results[i]
		logger.Infow("snapshot_file_loaded",
			"file", constants.EntityFile(entity),
			"records", len(results[i]),
		)
	}
	return snap, nil
}

func readCollection(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := json.Unmarshal(stripBOM(data), &raw); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected json array, got %T", raw)
	}
	records := make([]models.Record, 0, len(list))
	for idx, item := range list {
		record, ok := models.AsRecord(item)
		if !ok {
			logger.Warnw("snapshot_record_skipped",
				"path", path,
				"index", idx,
				"type", fmt.Sprintf("%T", item),
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
