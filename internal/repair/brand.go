package repair

import (
	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"
)

var brandSchema = NewSchema(append([]Rule{
	{"_id", "objectid"},
	{"name", "text"},
	{"slug", "text"},
	{"logo", "str"},
	{"description", "str"},
	{"website", "str"},
	{"status", enumTag(constants.CatalogStatuses)},
	{"createdBy", "objectid"},
}, timestampRules()...)...)

type brandRepairer struct{}

func (brandRepairer) Entity() string { return constants.EntityBrands }

func (brandRepairer) Seed(reg *Registry, rec models.Record) {
	if id, ok := extractID(rec["_id"]); ok {
		reg.Add(PoolBrands, id)
	}
}

func (brandRepairer) Repair(env *Env, rec models.Record, _ int, t *Tracker) {
	gen := env.Gen
	fx := newFixer(rec, brandSchema, t, "")
	id := fx.id(gen)
	name := fx.text("name", gen.BrandName)
	fx.text("slug", func() string { return slugOr(name, "brand-"+id) })
	fx.str("logo", "")
	fx.str("description", "")
	fx.str("website", "")
	fx.enum("status", constants.CatalogStatuses, constants.CatalogStatusActive)
	fx.ref("createdBy", PoolAccounts, env.Registry, gen)
	fx.timestamps(gen)
}

func (brandRepairer) Publish(reg *Registry, rec models.Record) {
	reg.Add(PoolBrands, idOf(rec))
}

// slugOr 返回名称的 slug，名称中没有可用字符时返回 fallback
func slugOr(name, fallback string) string {
	if slug := Slugify(name); slug != "" {
		return slug
	}
	return fallback
}
