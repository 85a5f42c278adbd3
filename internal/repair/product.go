package repair

import (
	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"
)

var productSchema = NewSchema(append([]Rule{
	{"_id", "objectid"},
	{"name", "text"},
	{"model", "text"},
	{"baseSlug", "text"},
	{"slug", "text"},
	{"description", "str"},
	{"featuredImages", "strlist"},
	{"videoUrl", "str"},
	{"brand", "objectid"},
	{"productType", "objectid"},
	{"specifications", "object"},
	{"variants", "list"},
	{"condition", enumTag(constants.ProductConditions)},
	{"status", enumTag(constants.ProductStatuses)},
	{"installmentBadge", enumTag(constants.InstallmentBadges)},
	{"createdBy", "objectid"},
	{"averageRating", "nonneg"},
	{"totalReviews", "count"},
	{"salesCount", "count"},
}, timestampRules()...)...)

type productRepairer struct{}

func (productRepairer) Entity() string { return constants.EntityProducts }

func (productRepairer) Seed(reg *Registry, rec models.Record) {
	id, ok := extractID(rec["_id"])
	if !ok {
		return
	}
	reg.Add(PoolProducts, id)
	variants, _ := rec.List("variants")
	for _, v := range variants {
		if vid, ok := extractID(v); ok {
			reg.Add(PoolVariants, vid)
		}
	}
}

func (productRepairer) Repair(env *Env, rec models.Record, _ int, t *Tracker) {
	gen := env.Gen
	reg := env.Registry
	fx := newFixer(rec, productSchema, t, "")
	id := fx.id(gen)
	name := fx.text("name", gen.ProductName)
	model := fx.text("model", func() string { return name })
	baseSlug := fx.text("baseSlug", func() string { return slugOr(name, "product-"+id) })
	fx.text("slug", func() string {
		if modelSlug := Slugify(model); modelSlug != "" && modelSlug != baseSlug {
			return baseSlug + "-" + modelSlug
		}
		return baseSlug
	})
	fx.str("description", "")
	if fx.invalid("featuredImages") {
		images := stringList(rec["featuredImages"])
		if len(images) == 0 {
			images = []interface{}{constants.PlaceholderProductImage}
		}
		fx.set("featuredImages", images)
	}
	fx.str("videoUrl", "")
	fx.ref("brand", PoolBrands, reg, gen)
	fx.ref("productType", PoolProductTypes, reg, gen)
	if fx.invalid("specifications") {
		specs, ok := objectFromJSON(rec["specifications"])
		if !ok {
			specs = models.Record{"color": gen.Color(), "warranty": gen.Warranty()}
		}
		fx.set("specifications", map[string]interface{}(specs))
	}
	repairVariants(fx, gen)
	fx.enum("condition", constants.ProductConditions, constants.ProductConditionNew)
	fx.enum("status", constants.ProductStatuses, constants.ProductStatusAvailable)
	fx.enum("installmentBadge", constants.InstallmentBadges, constants.InstallmentBadgeNone)
	fx.ref("createdBy", PoolAccounts, reg, gen)
	zero := func() float64 { return 0 }
	fx.number("averageRating", false, zero)
	fx.number("totalReviews", true, zero)
	fx.number("salesCount", true, zero)
	fx.timestamps(gen)
}

// repairVariants 规范化变体标识列表：可解析的标识统一为小写十六进制，无法解析的重新生成
func repairVariants(fx *fixer, gen *Generator) {
	if fx.invalid("variants") {
		fx.set("variants", []interface{}{})
		return
	}
	list := fx.rec["variants"].([]interface{})
	for i, item := range list {
		if isObjectID(item) {
			continue
		}
		id, ok := extractID(item)
		if !ok {
			id = gen.ObjectID()
		}
		list[i] = id
		fx.t.Fix("variants")
	}
}

func (productRepairer) Publish(reg *Registry, rec models.Record) {
	id := idOf(rec)
	reg.Add(PoolProducts, id)
	profile := ProductProfile{}
	profile.Name, _ = rec.Text("name")
	if images, ok := rec.List("featuredImages"); ok && len(images) > 0 {
		profile.Image, _ = images[0].(string)
	}
	variants, _ := rec.List("variants")
	for _, v := range variants {
		if vid, ok := v.(string); ok {
			reg.Add(PoolVariants, vid)
			profile.Variants = append(profile.Variants, vid)
		}
	}
	reg.PutProduct(id, profile)
}
