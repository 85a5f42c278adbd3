package repair

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticFolder = strings.NewReplacer("đ", "d", "Đ", "D")

// Slugify 将名称转换为小写、连字符分隔的 URL 安全字符串（去除越南语声调）
func Slugify(name string) string {
	return joinWords(name, '-')
}

// fieldKey 将标签转换为下划线分隔的字段键
func fieldKey(label string) string {
	return joinWords(label, '_')
}

func joinWords(value string, sep rune) string {
	folded := foldDiacritics(value)
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, diacriticFolder.Replace(value))
	if err != nil {
		return value
	}
	return result
}
