// Package substitution 依規則表、AI 與通用關鍵字提供食材替代建議
package substitution

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaushick2000/cookmate-backend/internal/core/ingredient"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// Source 替代建議的來源
type Source string

const (
	SourceRuleBased Source = "rule-based"
	SourceAI        Source = "ai"
	SourceNone      Source = "none"
)

// DefaultConcurrency 批次建議的預設並行數
const DefaultConcurrency = 4

// Substitution 一個替代品
type Substitution struct {
	Ingredient string `json:"ingredient"`
	Ratio      string `json:"ratio"`
	Note       string `json:"note"`
}

// Result 替代建議結果
type Result struct {
	Substitutions []Substitution `json:"substitutions"`
	Source        Source         `json:"source"`
}

// BatchResult 批次建議中單一食材的結果
type BatchResult struct {
	Ingredient string `json:"ingredient"`
	Result
}

// Suggester 外部替代建議來源（例如 AI），可回傳空清單
type Suggester interface {
	Suggest(ctx context.Context, ingredient string) ([]Substitution, error)
}

// aiSuggester 可選的 AI 能力，零值代表未設定
type aiSuggester struct {
	suggester Suggester
	timeout   time.Duration
}

func (a aiSuggester) configured() bool {
	return a.suggester != nil
}

// suggest 呼叫 AI，逾時或錯誤都視為沒有建議
func (a aiSuggester) suggest(ctx context.Context, name string) []Substitution {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	subs, err := a.suggester.Suggest(ctx, name)
	if err != nil {
		common.LogWarn("AI 替代建議失敗，改用規則",
			zap.String("ingredient", name),
			zap.Error(err),
		)
		return nil
	}
	return subs
}

// Option 設定 Resolver
type Option func(*Resolver)

// WithSuggester 設定 AI 建議來源，timeout <= 0 表示只受呼叫端 context 限制
func WithSuggester(s Suggester, timeout time.Duration) Option {
	return func(r *Resolver) {
		r.ai = aiSuggester{suggester: s, timeout: timeout}
	}
}

// WithConcurrency 設定批次建議的並行數
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRules 替換內建規則表
func WithRules(rules []Rule) Option {
	return func(r *Resolver) {
		r.rules = rules
	}
}

// Resolver 食材替代建議
type Resolver struct {
	rules       []Rule
	fallbacks   []Rule
	ai          aiSuggester
	concurrency int
}

// NewResolver 創建替代建議服務
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		rules:       DefaultRules,
		fallbacks:   fallbackRules,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AIEnabled 是否設定了 AI 建議來源
func (r *Resolver) AIEnabled() bool {
	return r.ai.configured()
}

// Suggest 依序嘗試：完全比對、部分比對、AI、通用關鍵字。永遠不回傳錯誤。
func (r *Resolver) Suggest(ctx context.Context, name string, useAI bool) Result {
	key := ingredient.Normalize(name)
	if key == "" {
		return Result{Substitutions: []Substitution{}, Source: SourceNone}
	}

	subs := r.match(key)
	source := SourceRuleBased

	if useAI && r.ai.configured() {
		aiSubs := r.ai.suggest(ctx, name)
		if len(subs) > 0 {
			var added int
			subs, added = mergeAI(subs, aiSubs)
			if added > 0 {
				source = SourceAI
			}
		} else if len(aiSubs) > 0 {
			subs = cleanAI(aiSubs)
			if len(subs) > 0 {
				source = SourceAI
			}
		}
	}

	if len(subs) == 0 {
		subs = lookupKeyword(r.fallbacks, key)
		if len(subs) > 0 {
			common.LogDebug("使用通用替代建議", zap.String("ingredient", name))
		}
	}

	if len(subs) == 0 {
		return Result{Substitutions: []Substitution{}, Source: SourceNone}
	}
	return Result{Substitutions: subs, Source: source}
}

// SuggestAll 批次建議，重複的輸入只計算一次，結果依首次出現順序排列
func (r *Resolver) SuggestAll(ctx context.Context, names []string, useAI bool) []BatchResult {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}

	results := make([]BatchResult, len(unique))
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, n := range unique {
		g.Go(func() error {
			results[i] = BatchResult{Ingredient: n, Result: r.Suggest(ctx, n, useAI)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// match 完全比對後再依規則表順序做部分比對
func (r *Resolver) match(key string) []Substitution {
	for _, rule := range r.rules {
		if rule.Key == key {
			return clone(rule.Substitutions)
		}
	}
	for _, rule := range r.rules {
		if rule.Key == "" {
			continue
		}
		if strings.Contains(key, rule.Key) || strings.Contains(rule.Key, key) {
			common.LogDebug("替代規則部分比對",
				zap.String("key", key),
				zap.String("rule", rule.Key),
			)
			return clone(rule.Substitutions)
		}
	}
	return nil
}

func lookupKeyword(rules []Rule, key string) []Substitution {
	for _, rule := range rules {
		if strings.Contains(key, rule.Key) {
			return clone(rule.Substitutions)
		}
	}
	return nil
}

// mergeAI 附加名稱（不分大小寫）尚未出現的 AI 建議
func mergeAI(existing, aiSubs []Substitution) ([]Substitution, int) {
	names := make(map[string]struct{}, len(existing)+len(aiSubs))
	for _, s := range existing {
		names[strings.ToLower(strings.TrimSpace(s.Ingredient))] = struct{}{}
	}

	added := 0
	for _, s := range aiSubs {
		n := strings.ToLower(strings.TrimSpace(s.Ingredient))
		if n == "" {
			continue
		}
		if _, ok := names[n]; ok {
			continue
		}
		names[n] = struct{}{}
		existing = append(existing, s)
		added++
	}
	return existing, added
}

// cleanAI 去除沒有名稱的 AI 建議
func cleanAI(aiSubs []Substitution) []Substitution {
	out := make([]Substitution, 0, len(aiSubs))
	for _, s := range aiSubs {
		if strings.TrimSpace(s.Ingredient) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func clone(subs []Substitution) []Substitution {
	return append([]Substitution(nil), subs...)
}
