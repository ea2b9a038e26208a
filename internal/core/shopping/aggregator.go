// Package shopping 將食譜或餐點計畫整合為購物清單
package shopping

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Record 待合併的一筆食材紀錄
type Record struct {
	Key      string           // 正規化後的食材名稱
	Unit     string           // 空字串表示無單位
	Quantity *decimal.Decimal // nil 表示未標示份量
	Category string
	Source   string // 來源食譜標題
}

// Item 購物清單項目
type Item struct {
	Name      string           `json:"name"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Unit      string           `json:"unit,omitempty"`
	Category  string           `json:"category,omitempty"`
	Sources   []string         `json:"sources"`
	Purchased bool             `json:"purchased"`
}

type mergeKey struct {
	key         string
	unit        string
	hasQuantity bool
}

// Aggregate 依 (名稱, 單位) 合併紀錄，保留首次出現的順序。
// 單位必須完全相同才會加總；沒有份量的紀錄彼此合併，但不會與有份量的紀錄合併。
func Aggregate(records []Record) []Item {
	items := make([]Item, 0, len(records))
	index := make(map[mergeKey]int, len(records))

	for _, r := range records {
		k := mergeKey{key: r.Key, unit: r.Unit, hasQuantity: r.Quantity != nil}
		i, ok := index[k]
		if !ok {
			item := Item{
				Name:     r.Key,
				Unit:     r.Unit,
				Category: r.Category,
				Sources:  []string{},
			}
			if r.Quantity != nil {
				q := *r.Quantity
				item.Quantity = &q
			}
			if r.Source != "" {
				item.Sources = append(item.Sources, r.Source)
			}
			index[k] = len(items)
			items = append(items, item)
			continue
		}

		item := &items[i]
		if r.Quantity != nil {
			sum := item.Quantity.Add(*r.Quantity)
			item.Quantity = &sum
		}
		if item.Category == "" {
			item.Category = r.Category
		}
		if r.Source != "" && !slices.Contains(item.Sources, r.Source) {
			item.Sources = append(item.Sources, r.Source)
		}
	}
	return items
}
