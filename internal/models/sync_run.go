package models

import "time"

// SyncRun 备份同步运行记录
type SyncRun struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                // 主键
	RunID      string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"run_id"` // 运行标识
	InputDir   string    `gorm:"type:varchar(1024);not null" json:"input_dir"`        // 输入快照目录
	OutputDir  string    `gorm:"type:varchar(1024)" json:"output_dir"`                // 输出目录（dry-run 为空）
	Mode       string    `gorm:"type:varchar(20);not null" json:"mode"`               // 运行模式
	Seed       int64     `gorm:"not null;default:0" json:"seed"`                      // 随机种子
	Scanned    int       `gorm:"not null;default:0" json:"scanned"`                   // 扫描记录总数
	Changed    int       `gorm:"not null;default:0" json:"changed"`                   // 修复记录总数
	StartedAt  time.Time `gorm:"index" json:"started_at"`                             // 开始时间
	FinishedAt time.Time `json:"finished_at"`                                         // 结束时间

	Files []SyncFileStat `gorm:"foreignKey:SyncRunID" json:"files,omitempty"` // 各文件统计
}

// TableName 指定表名
func (SyncRun) TableName() string {
	return "sync_runs"
}

// SyncFileStat 单个快照文件的修复统计
type SyncFileStat struct {
	ID        uint   `gorm:"primarykey" json:"id"`                   // 主键
	SyncRunID uint   `gorm:"index;not null" json:"sync_run_id"`      // 运行记录ID
	File      string `gorm:"type:varchar(100);not null" json:"file"` // 文件名
	Scanned   int    `gorm:"not null;default:0" json:"scanned"`      // 扫描数
	Changed   int    `gorm:"not null;default:0" json:"changed"`      // 修复数
	Fields    JSON   `gorm:"type:json" json:"fields"`                // 字段 => 修复次数
}

// TableName 指定表名
func (SyncFileStat) TableName() string {
	return "sync_file_stats"
}
