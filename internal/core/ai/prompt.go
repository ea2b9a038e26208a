// Package ai 提供 AI 替代建議共用的 prompt 與回應解析
package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
)

const (
	defaultRatio = "1:1"
	defaultNote  = "AI-suggested substitution"

	// 無法以 | 解析時，長度超過此值的行才當作建議
	minLooseLineLength = 10
)

var (
	pipeLine     = regexp.MustCompile(`^([^|]+)\|([^|]+)\|(.+)$`)
	looseSplit   = regexp.MustCompile(`[,\-:]`)
	listMarker   = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
	promptFormat = "Suggest 3-5 ingredient substitutions for '%s'. " +
		"For each substitution, provide:\n" +
		"1. The substitute ingredient name\n" +
		"2. The ratio or amount (e.g., '1:1', '3/4 cup', '1 tbsp')\n" +
		"3. A brief note about usage or flavor changes\n\n" +
		"Format your response as a simple list, one per line, with format: " +
		"SUBSTITUTE|RATIO|NOTE\n\n" +
		"Example format:\n" +
		"Olive Oil|3/4|For baking, reduce liquid by 3 tbsp per cup\n" +
		"Coconut Oil|1:1|Best for baking and sautéing"
)

// SubstitutionPrompt 產生替代建議的 prompt
func SubstitutionPrompt(ingredient string) string {
	return fmt.Sprintf(promptFormat, strings.TrimSpace(ingredient))
}

// ParseSubstitutions 解析 AI 回應，每行一個 SUBSTITUTE|RATIO|NOTE。
// 非此格式但夠長的行以 , - : 切成最多三段，缺少的欄位使用預設值。
func ParseSubstitutions(text string) []substitution.Substitution {
	var out []substitution.Substitution
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := pipeLine.FindStringSubmatch(line); m != nil {
			out = appendSub(out, m[1], m[2], m[3])
			continue
		}

		if len(line) <= minLooseLineLength {
			continue
		}
		parts := looseSplit.Split(listMarker.ReplaceAllString(line, ""), 3)
		ratio, note := defaultRatio, defaultNote
		if len(parts) >= 2 && strings.TrimSpace(parts[1]) != "" {
			ratio = parts[1]
		}
		if len(parts) >= 3 && strings.TrimSpace(parts[2]) != "" {
			note = parts[2]
		}
		out = appendSub(out, parts[0], ratio, note)
	}
	return out
}

func appendSub(out []substitution.Substitution, name, ratio, note string) []substitution.Substitution {
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}
	return append(out, substitution.Substitution{
		Ingredient: name,
		Ratio:      strings.TrimSpace(ratio),
		Note:       strings.TrimSpace(note),
	})
}
