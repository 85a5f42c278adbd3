package models

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Money 统一金额类型（保留 2 位小数）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromFloat 从浮点数创建金额
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// ParseMoney 解析金额（数字或数字字符串），非法值返回 false
func ParseMoney(raw interface{}) (Money, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return Money{}, false
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return Money{}, false
		}
		return NewMoneyFromDecimal(d), true
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, false
	}
	return NewMoneyFromFloat(f), true
}

// Float64 以 JSON 数字形式输出
func (m Money) Float64() float64 {
	return m.Decimal.Round(2).InexactFloat64()
}

// SameAs 判断原始值是否与金额一致（必须为数字类型，且不带超出 2 位的小数）
func (m Money) SameAs(raw interface{}) bool {
	f, ok := raw.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return decimal.NewFromFloat(f).Equal(m.Decimal.Round(2))
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
