package repair

import "sort"

// FileStats 单个快照文件的修复统计
type FileStats struct {
	File    string         `json:"file"`
	Scanned int            `json:"scanned"`
	Changed int            `json:"changed"`
	Fields  map[string]int `json:"fields"`
}

// FieldCount 字段修复次数
type FieldCount struct {
	Field string
	Count int
}

// NewFileStats 创建文件统计
func NewFileStats(file string) *FileStats {
	return &FileStats{File: file, Fields: make(map[string]int)}
}

// Sorted 按修复次数降序（相同次数按字段名升序）返回字段统计
func (s *FileStats) Sorted() []FieldCount {
	result := make([]FieldCount, 0, len(s.Fields))
	for field, count := range s.Fields {
		result = append(result, FieldCount{Field: field, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Field < result[j].Field
	})
	return result
}

// Tracker 记录单条记录上触发的修复
type Tracker struct {
	stats   *FileStats
	changed bool
}

// Track 开始跟踪一条记录，scanned 计数加一
func (s *FileStats) Track() *Tracker {
	s.Scanned++
	return &Tracker{stats: s}
}

// Fix 记录字段被修复
func (t *Tracker) Fix(field string) {
	t.stats.Fields[field]++
	if !t.changed {
		t.changed = true
		t.stats.Changed++
	}
}

// Changed 当前记录是否发生修复
func (t *Tracker) Changed() bool {
	return t.changed
}

// Report 一次修复运行的汇总结果（按依赖顺序排列）
type Report struct {
	Files []*FileStats
}

// File 按文件名查找统计
func (r *Report) File(name string) *FileStats {
	for _, f := range r.Files {
		if f.File == name {
			return f
		}
	}
	return nil
}

// Totals 汇总扫描数与修复数
func (r *Report) Totals() (scanned, changed int) {
	for _, f := range r.Files {
		scanned += f.Scanned
		changed += f.Changed
	}
	return scanned, changed
}
