package repair

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dujiao-next/backupsync/internal/models"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// timestampLayout 输出时间格式（毫秒精度，UTC）
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// fixer 在单条记录（或嵌套对象）上执行字段修复，并把修复计入统计
type fixer struct {
	rec    models.Record
	bad    Violations
	t      *Tracker
	prefix string
}

func newFixer(rec models.Record, schema *Schema, t *Tracker, prefix string) *fixer {
	return &fixer{rec: rec, bad: schema.Check(rec), t: t, prefix: prefix}
}

func (f *fixer) invalid(field string) bool {
	return f.bad[field]
}

func (f *fixer) set(field string, value interface{}) {
	f.rec[field] = value
	f.t.Fix(f.prefix + field)
}

// setIfDiffers 仅当值发生变化时写入（用于派生字段与标识规范化）
func (f *fixer) setIfDiffers(field string, value interface{}) {
	if current, ok := f.rec[field]; ok && current == value {
		return
	}
	f.set(field, value)
}

func (f *fixer) id(gen *Generator) string {
	if !f.invalid("_id") {
		return f.rec["_id"].(string)
	}
	id, ok := extractID(f.rec["_id"])
	if !ok {
		id = gen.ObjectID()
	}
	f.set("_id", id)
	return id
}

func (f *fixer) text(field string, fallback func() string) string {
	if !f.invalid(field) {
		return f.rec[field].(string)
	}
	value := fallback()
	if scalar, ok := scalarString(f.rec[field]); ok && strings.TrimSpace(scalar) != "" {
		value = strings.TrimSpace(scalar)
	}
	f.set(field, value)
	return value
}

func (f *fixer) str(field, def string) string {
	if !f.invalid(field) {
		return f.rec[field].(string)
	}
	value := def
	if scalar, ok := scalarString(f.rec[field]); ok {
		value = scalar
	}
	f.set(field, value)
	return value
}

func (f *fixer) enum(field string, domain []string, def string) string {
	if !f.invalid(field) {
		return f.rec[field].(string)
	}
	value, ok := matchEnum(f.rec[field], domain)
	if !ok {
		value = def
	}
	f.set(field, value)
	return value
}

func (f *fixer) phone(field string, fallback func() string) string {
	if !f.invalid(field) {
		return f.rec[field].(string)
	}
	value, ok := normalizePhone(f.rec[field])
	if !ok {
		value = fallback()
	}
	f.set(field, value)
	return value
}

func (f *fixer) flag(field string, def bool) bool {
	if !f.invalid(field) {
		return f.rec[field].(bool)
	}
	value := def
	switch raw := f.rec[field].(type) {
	case string, float64:
		if parsed, err := cast.ToBoolE(raw); err == nil {
			value = parsed
		}
	}
	f.set(field, value)
	return value
}

// number 修复非负数字字段；数字字符串会被解析，负数截断为 0
func (f *fixer) number(field string, integer bool, fallback func() float64) float64 {
	if !f.invalid(field) {
		return cast.ToFloat64(f.rec[field])
	}
	value, ok := toNumber(f.rec[field])
	if ok {
		value = math.Max(0, value)
		if integer {
			value = math.Round(value)
		}
	} else {
		value = fallback()
	}
	f.set(field, value)
	return value
}

// money 修复金额字段（2 位小数，非负）；合法但超出 2 位小数的值回写为舍入后的金额
func (f *fixer) money(field string, fallback func() float64) models.Money {
	if !f.invalid(field) {
		m, _ := models.ParseMoney(f.rec[field])
		if !m.SameAs(f.rec[field]) {
			f.set(field, m.Float64())
		}
		return m
	}
	m, ok := models.ParseMoney(f.rec[field])
	if !ok {
		m = models.NewMoneyFromFloat(fallback())
	}
	if m.IsNegative() {
		m = models.NewMoneyFromFloat(0)
	}
	f.set(field, m.Float64())
	return m
}

// ref 修复外键字段，返回引用池中有效的标识
func (f *fixer) ref(field, pool string, reg *Registry, gen *Generator) string {
	if id, ok := extractID(f.rec[field]); ok && reg.Valid(pool, id) {
		f.setIfDiffers(field, id)
		return id
	}
	id := reg.Pick(pool, gen)
	f.set(field, id)
	return id
}

// timestamps 修复 createdAt / updatedAt，updatedAt 缺失时取 createdAt
func (f *fixer) timestamps(gen *Generator) time.Time {
	createdAt, ok := parseTime(f.rec["createdAt"])
	if f.invalid("createdAt") {
		if !ok {
			createdAt = gen.PastTime()
		}
		f.set("createdAt", formatTime(createdAt))
	}
	if f.invalid("updatedAt") {
		updatedAt, ok := parseTime(f.rec["updatedAt"])
		if !ok {
			updatedAt = createdAt
		}
		f.set("updatedAt", formatTime(updatedAt))
	}
	return createdAt
}

func timestampRules() []Rule {
	return []Rule{{"createdAt", "timestamp"}, {"updatedAt", "timestamp"}}
}

func enumTag(domain []string) string {
	return "enum=" + strings.Join(domain, " ")
}

// extractID 解析标识：纯字符串、{"$oid": ...} 或已填充的引用对象 {"_id": ...}
func extractID(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		id := strings.ToLower(strings.TrimSpace(v))
		return id, isObjectID(id)
	case primitive.ObjectID:
		return v.Hex(), !v.IsZero()
	}
	obj, ok := models.AsRecord(raw)
	if !ok {
		return "", false
	}
	if oid, ok := obj["$oid"]; ok {
		return extractID(oid)
	}
	if nested, ok := obj["_id"]; ok {
		return extractID(nested)
	}
	return "", false
}

// toNumber 宽松解析数字（数字或数字字符串），拒绝 NaN / Inf / 布尔
func toNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		raw = strings.TrimSpace(v)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseTime 解析时间：字符串、{"$date": ...} 或毫秒时间戳
func parseTime(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case string:
		t, err := dateparse.ParseAny(strings.TrimSpace(v))
		return t, err == nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)).UTC(), true
	}
	if obj, ok := models.AsRecord(raw); ok {
		if date, ok := obj["$date"]; ok {
			return parseTime(date)
		}
		if n, ok := obj["$numberLong"].(string); ok {
			ms, err := cast.ToInt64E(n)
			return time.UnixMilli(ms).UTC(), err == nil && ms > 0
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// matchEnum 忽略大小写、空格与连字符匹配枚举值，例如 "in store" -> IN_STORE
func matchEnum(raw interface{}, domain []string) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	key := enumKeyReplacer.Replace(strings.TrimSpace(s))
	for _, allowed := range domain {
		if strings.EqualFold(key, allowed) {
			return allowed, true
		}
	}
	return "", false
}

var enumKeyReplacer = strings.NewReplacer(" ", "_", "-", "_")

// normalizePhone 规范化越南手机号：+84 / 84 前缀、空格、分隔符、缺少前导 0
func normalizePhone(raw interface{}) (string, bool) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return "", false
		}
		s = fmt.Sprintf("%.0f", v)
	default:
		return "", false
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 11 && strings.HasPrefix(d, "84"):
		d = "0" + d[2:]
	case len(d) == 9 && !strings.HasPrefix(d, "0"):
		d = "0" + d
	}
	if !phonePattern.MatchString(d) {
		return "", false
	}
	return d, true
}

// scalarString 将标量（字符串、数字、布尔）转换为字符串，对象与数组不转换
func scalarString(raw interface{}) (string, bool) {
	switch raw.(type) {
	case string, float64, bool, int, int64:
		s, err := cast.ToStringE(raw)
		return s, err == nil
	}
	return "", false
}

// stringList 保留列表中的非空字符串
func stringList(raw interface{}) []interface{} {
	list, _ := raw.([]interface{})
	result := make([]interface{}, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			result = append(result, strings.TrimSpace(s))
		}
	}
	return result
}

// objectFromJSON 尝试把 JSON 字符串解码为对象
func objectFromJSON(raw interface{}) (models.Record, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil || len(obj) == 0 {
		return nil, false
	}
	return models.Record(obj), true
}
