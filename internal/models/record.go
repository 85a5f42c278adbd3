package models

import "strings"

// Record 备份快照中的一条松散类型记录
type Record map[string]interface{}

// AsRecord 将 JSON 解码得到的任意值转换为 Record
func AsRecord(raw interface{}) (Record, bool) {
	switch v := raw.(type) {
	case Record:
		return v, v != nil
	case map[string]interface{}:
		return Record(v), v != nil
	default:
		return nil, false
	}
}

// Has 字段是否存在（值为 null 也视为存在）
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Text 返回去除首尾空白后的非空字符串
func (r Record) Text(key string) (string, bool) {
	s, ok := r[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Object 返回嵌套对象
func (r Record) Object(key string) (Record, bool) {
	return AsRecord(r[key])
}

// List 返回数组字段
func (r Record) List(key string) ([]interface{}, bool) {
	list, ok := r[key].([]interface{})
	return list, ok
}
