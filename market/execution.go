package market

import (
	"math"
	"sort"
)

// Fill 模拟成交中对单个档位的一次吃单。
type Fill struct {
	Venue Venue
	Size  float64
	Price float64
	Value float64
}

// Execution 市价单模拟结果。Remainder > 0 表示合并簿流动性不足，不是错误。
type Execution struct {
	Side       Side
	Requested  float64
	FilledQty  float64
	TotalValue float64
	Fills      []Fill
	Remainder  float64
}

// FullyFilled 是否全部成交。
func (e Execution) FullyFilled() bool {
	return e.Remainder == 0 && e.FilledQty > 0
}

// AveragePrice 成交均价；无成交返回 0。
func (e Execution) AveragePrice() float64 {
	if e.FilledQty <= 0 {
		return 0
	}
	return e.TotalValue / e.FilledQty
}

// PriceExecution 以最优价优先的贪心方式在合并簿上模拟 quantity 数量的市价单。
// 排序只作用于副本，不会修改 book。
func PriceExecution(book *MergedBook, quantity float64, side Side) Execution {
	res := Execution{Side: side, Requested: quantity}
	if !(quantity > 0) {
		// 包含 NaN
		return res
	}

	levels := SortBestFirst(book.Liquidity(side), side)
	remaining := quantity
	for _, lvl := range levels {
		if remaining <= 0 {
			break
		}
		if lvl.Size <= 0 {
			continue
		}
		take := math.Min(lvl.Size, remaining)
		value := take * lvl.Price
		res.TotalValue += value
		res.FilledQty += take
		res.Fills = append(res.Fills, Fill{
			Venue: lvl.Venue,
			Size:  take,
			Price: lvl.Price,
			Value: value,
		})
		remaining -= take
	}
	res.Remainder = remaining
	if remaining == 0 {
		res.FilledQty = quantity
	}
	return res
}

// SortBestFirst 返回按最优价排序的副本：买单吃 asks 升序，卖单吃 bids 降序。
// 同价保持原有顺序。
func SortBestFirst(levels []PriceLevel, side Side) []PriceLevel {
	out := make([]PriceLevel, len(levels))
	copy(out, levels)
	if side == SideSell {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	}
	return out
}
