package repair

import (
	"fmt"
	"reflect"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"
)

var productTypeSchema = NewSchema(append([]Rule{
	{"_id", "objectid"},
	{"name", "text"},
	{"slug", "text"},
	{"description", "str"},
	{"icon", "str"},
	{"specFields", "list"},
	{"status", enumTag(constants.CatalogStatuses)},
	{"createdBy", "objectid"},
}, timestampRules()...)...)

var specFieldSchema = NewSchema(
	Rule{"key", "text"},
	Rule{"label", "text"},
	Rule{"type", enumTag(constants.SpecFieldTypes)},
	Rule{"required", "flag"},
	Rule{"options", "list"},
	Rule{"placeholder", "str"},
)

type productTypeRepairer struct{}

func (productTypeRepairer) Entity() string { return constants.EntityProductTypes }

func (productTypeRepairer) Seed(reg *Registry, rec models.Record) {
	if id, ok := extractID(rec["_id"]); ok {
		reg.Add(PoolProductTypes, id)
	}
}

func (productTypeRepairer) Repair(env *Env, rec models.Record, _ int, t *Tracker) {
	gen := env.Gen
	fx := newFixer(rec, productTypeSchema, t, "")
	id := fx.id(gen)
	name := fx.text("name", gen.ProductName)
	fx.text("slug", func() string { return slugOr(name, "type-"+id) })
	fx.str("description", "")
	fx.str("icon", "")
	repairSpecFields(fx)
	fx.enum("status", constants.CatalogStatuses, constants.CatalogStatusActive)
	fx.ref("createdBy", PoolAccounts, env.Registry, gen)
	fx.timestamps(gen)
}

// repairSpecFields 逐个修复规格字段定义；select 类型缺少选项时填充默认选项
func repairSpecFields(fx *fixer) {
	if fx.invalid("specFields") {
		fx.set("specFields", []interface{}{})
		return
	}
	list := fx.rec["specFields"].([]interface{})
	for i, item := range list {
		position := i + 1
		field, ok := models.AsRecord(item)
		if !ok {
			key := fmt.Sprintf("field_%d", position)
			list[i] = map[string]interface{}{
				"key":         key,
				"label":       key,
				"type":        constants.SpecFieldText,
				"required":    false,
				"options":     []interface{}{},
				"placeholder": "",
			}
			fx.t.Fix("specFields")
			continue
		}
		sfx := newFixer(field, specFieldSchema, fx.t, "specFields.")
		label, _ := field.Text("label")
		key := sfx.text("key", func() string {
			if k := fieldKey(label); k != "" {
				return k
			}
			return fmt.Sprintf("field_%d", position)
		})
		sfx.text("label", func() string { return key })
		fieldType := sfx.enum("type", constants.SpecFieldTypes, constants.SpecFieldText)
		sfx.flag("required", false)
		// 非字符串或空白选项一律剔除
		options := stringList(field["options"])
		if sfx.invalid("options") || !reflect.DeepEqual(field["options"], options) {
			sfx.set("options", options)
		}
		if fieldType == constants.SpecFieldSelect && len(options) == 0 {
			sfx.set("options", defaultSelectOptions())
		}
		sfx.str("placeholder", "")
	}
}

func defaultSelectOptions() []interface{} {
	options := make([]interface{}, 0, len(constants.DefaultSelectOptions))
	for _, option := range constants.DefaultSelectOptions {
		options = append(options, option)
	}
	return options
}

func (productTypeRepairer) Publish(reg *Registry, rec models.Record) {
	reg.Add(PoolProductTypes, idOf(rec))
}
