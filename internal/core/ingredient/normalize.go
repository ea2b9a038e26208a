// Package ingredient 提供食材名稱正規化
package ingredient

import (
	"regexp"
	"strings"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	digits        = regexp.MustCompile(`[0-9]+`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Normalize 將食材名稱轉為比對用的 key：小寫、移除括號內容與數字、合併空白
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	// 移除括號後可能露出新的配對，例如 "((a))"
	for parenthetical.MatchString(s) {
		s = parenthetical.ReplaceAllString(s, "")
	}
	s = digits.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
