package repair

import (
	"time"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/logger"
	"github.com/dujiao-next/backupsync/internal/snapshot"
)

// DefaultPromotionRate 缺失 appliedPromotion 时生成促销的默认概率
const DefaultPromotionRate = 0.3

// Options 修复引擎参数
type Options struct {
	Seed          int64
	Now           func() time.Time
	PromotionRate float64
	PasswordCost  int
}

// Result 一次修复运行的结果
type Result struct {
	Report   *Report
	Registry *Registry
}

// Engine 按依赖顺序执行各实体修复阶段
type Engine struct {
	opts      Options
	repairers []Repairer
}

// NewEngine 创建修复引擎，阶段顺序：账号 -> 品牌 -> 商品类型 -> 商品 -> 订单
func NewEngine(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PromotionRate < 0 || opts.PromotionRate > 1 {
		opts.PromotionRate = DefaultPromotionRate
	}
	return &Engine{
		opts: opts,
		repairers: []Repairer{
			accountRepairer{},
			brandRepairer{},
			productTypeRepairer{},
			productRepairer{},
			orderRepairer{},
		},
	}
}

// Run 就地修复快照中的全部记录并返回统计
//
// 引用池先由原始数据预填，每个阶段完成一条记录后再登记修复结果，
// 后续阶段只会引用已登记的标识。
func (e *Engine) Run(snap *snapshot.Snapshot) *Result {
	env := &Env{
		Gen:      NewGenerator(e.opts.Seed, e.opts.Now),
		Registry: NewRegistry(),
		Options:  e.opts,
	}
	for _, r := range e.repairers {
		for _, rec := range snap.Records(r.Entity()) {
			r.Seed(env.Registry, rec)
		}
	}

	report := &Report{}
	for _, r := range e.repairers {
		stats := NewFileStats(constants.EntityFile(r.Entity()))
		for i, rec := range snap.Records(r.Entity()) {
			r.Repair(env, rec, i, stats.Track())
			r.Publish(env.Registry, rec)
		}
		logger.Debugw("repair_stage_completed",
			"file", stats.File,
			"scanned", stats.Scanned,
			"changed", stats.Changed,
		)
		report.Files = append(report.Files, stats)
	}
	return &Result{Report: report, Registry: env.Registry}
}
