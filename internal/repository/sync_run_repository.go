package repository

import (
	"errors"

	"github.com/dujiao-next/backupsync/internal/models"

	"gorm.io/gorm"
)

// SyncRunRepository 同步运行记录数据访问接口
type SyncRunRepository interface {
	Create(run *models.SyncRun) error
	GetByRunID(runID string) (*models.SyncRun, error)
	List(page, pageSize int) ([]models.SyncRun, int64, error)
}

// GormSyncRunRepository GORM 实现
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository 创建同步运行记录仓库
func NewSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Create 在一个事务中写入运行记录及各文件统计
func (r *GormSyncRunRepository) Create(run *models.SyncRun) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
}

// GetByRunID 根据运行标识获取记录（含文件统计）
func (r *GormSyncRunRepository) GetByRunID(runID string) (*models.SyncRun, error) {
	var run models.SyncRun
	if err := r.db.Preload("Files").Where("run_id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// List 按开始时间倒序分页列出运行记录
func (r *GormSyncRunRepository) List(page, pageSize int) ([]models.SyncRun, int64, error) {
	var total int64
	if err := r.db.Model(&models.SyncRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var runs []models.SyncRun
	query := r.db.Model(&models.SyncRun{}).Order("started_at DESC, id DESC")
	if err := paginate(query, page, pageSize).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// paginate 应用分页参数；pageSize <= 0 时不分页
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
