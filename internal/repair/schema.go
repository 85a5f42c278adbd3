package repair

import (
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/dujiao-next/backupsync/internal/models"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minSecretLength = 20

var phonePattern = regexp.MustCompile(`^0\d{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	custom := map[string]validator.Func{
		"objectid":  validateObjectID,
		"text":      validateText,
		"str":       validateString,
		"enum":      validateEnum,
		"vnphone":   validatePhone,
		"nonneg":    validateNonNegative,
		"count":     validateCount,
		"posint":    validatePositiveInt,
		"flag":      validateFlag,
		"timestamp": validateTimestamp,
		"list":      validateList,
		"filled":    validateFilledList,
		"strlist":   validateStringList,
		"object":    validateObject,
		"secret":    validateSecret,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func fieldValue(fl validator.FieldLevel) interface{} {
	field := fl.Field()
	if !field.IsValid() || !field.CanInterface() {
		return nil
	}
	if field.Kind() == reflect.Interface && field.IsNil() {
		return nil
	}
	return field.Interface()
}

func validateObjectID(fl validator.FieldLevel) bool {
	return isObjectID(fieldValue(fl))
}

func validateText(fl validator.FieldLevel) bool {
	return isText(fieldValue(fl))
}

func validateString(fl validator.FieldLevel) bool {
	_, ok := fieldValue(fl).(string)
	return ok
}

func validateSecret(fl validator.FieldLevel) bool {
	s, ok := fieldValue(fl).(string)
	return ok && len(s) >= minSecretLength
}

func validateFlag(fl validator.FieldLevel) bool {
	_, ok := fieldValue(fl).(bool)
	return ok
}

func validateTimestamp(fl validator.FieldLevel) bool {
	return isTimestamp(fieldValue(fl))
}

func validateNonNegative(fl validator.FieldLevel) bool {
	_, ok := nonNegative(fieldValue(fl), false)
	return ok
}

func validateCount(fl validator.FieldLevel) bool {
	_, ok := nonNegative(fieldValue(fl), true)
	return ok
}

func validateList(fl validator.FieldLevel) bool {
	_, ok := fieldValue(fl).([]interface{})
	return ok
}

func validateEnum(fl validator.FieldLevel) bool {
	s, ok := fieldValue(fl).(string)
	if !ok {
		return false
	}
	for _, allowed := range strings.Fields(fl.Param()) {
		if s == allowed {
			return true
		}
	}
	return false
}

func validatePhone(fl validator.FieldLevel) bool {
	s, ok := fieldValue(fl).(string)
	return ok && phonePattern.MatchString(s)
}

func validatePositiveInt(fl validator.FieldLevel) bool {
	n, ok := nonNegative(fieldValue(fl), true)
	return ok && n >= 1
}

func validateFilledList(fl validator.FieldLevel) bool {
	list, ok := fieldValue(fl).([]interface{})
	return ok && len(list) > 0
}

func validateStringList(fl validator.FieldLevel) bool {
	list, ok := fieldValue(fl).([]interface{})
	if !ok || len(list) == 0 {
		return false
	}
	for _, item := range list {
		if !isText(item) {
			return false
		}
	}
	return true
}

func validateObject(fl validator.FieldLevel) bool {
	obj, ok := models.AsRecord(fieldValue(fl))
	return ok && len(obj) > 0
}

// Rule 单个字段的校验规则（validator tag）
type Rule struct {
	Field string
	Tag   string
}

// Schema 实体字段校验规则表
type Schema struct {
	rules map[string]interface{}
}

// NewSchema 创建规则表
func NewSchema(rules ...Rule) *Schema {
	m := make(map[string]interface{}, len(rules))
	for _, rule := range rules {
		m[rule.Field] = rule.Tag
	}
	return &Schema{rules: m}
}

// Violations 未通过校验的字段集合
type Violations map[string]bool

// Check 对记录执行一次完整校验，返回所有违规字段
func (s *Schema) Check(record models.Record) Violations {
	errs := validate.ValidateMap(map[string]interface{}(record), s.rules)
	violations := make(Violations, len(errs))
	for field := range errs {
		violations[field] = true
	}
	return violations
}

func isObjectID(raw interface{}) bool {
	s, ok := raw.(string)
	if !ok || len(s) != 24 || s != strings.ToLower(s) {
		return false
	}
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

func isText(raw interface{}) bool {
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) != ""
}

func isTimestamp(raw interface{}) bool {
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	_, err := dateparse.ParseAny(s)
	return err == nil
}

// nonNegative 严格校验：必须是有限非负数字（integer 时还须为整数）
func nonNegative(raw interface{}, integer bool) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	if integer && f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}
