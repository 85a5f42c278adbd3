package repair

import (
	"github.com/dujiao-next/backupsync/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Env 修复阶段共享的运行环境
type Env struct {
	Gen      *Generator
	Registry *Registry
	Options  Options
}

// Repairer 单个实体的修复阶段
type Repairer interface {
	// Entity 实体名（对应快照文件名）
	Entity() string
	// Seed 用原始数据预填引用池
	Seed(reg *Registry, rec models.Record)
	// Repair 修复一条记录；index 为记录在文件中的位置
	Repair(env *Env, rec models.Record, index int, t *Tracker)
	// Publish 将修复后的记录登记到引用池
	Publish(reg *Registry, rec models.Record)
}

// hashSecret 生成随机口令并返回其 bcrypt 哈希
func (e *Env) hashSecret() string {
	secret := e.Gen.Code(minSecretLength + 4)
	cost := e.Options.PasswordCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return secret
	}
	return string(hashed)
}

func idOf(rec models.Record) string {
	id, _ := extractID(rec["_id"])
	return id
}
