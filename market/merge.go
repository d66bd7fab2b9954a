package market

import (
	"time"

	"github.com/google/uuid"
)

// MergeBooks 将各交易所快照按 depth 截断后拼接成新的合并簿。
// 截断按交易所各自返回的顺序取前 depth 档（不是跨交易所的 top-K），
// depth <= 0 表示不截断。nil 快照视为空簿。结果先放 Coinbase 再放 Gemini，不排序。
func MergeBooks(coinbase, gemini *VenueSnapshot, depth int, now time.Time) *MergedBook {
	if depth < 0 {
		depth = 0
	}
	book := &MergedBook{
		ID:      uuid.New(),
		BuiltAt: now,
		Depth:   depth,
	}
	snaps := []*VenueSnapshot{coinbase, gemini}
	bidCap, askCap := 0, 0
	for _, s := range snaps {
		if s == nil {
			continue
		}
		bidCap += len(truncate(s.Bids, depth))
		askCap += len(truncate(s.Asks, depth))
	}
	book.Bids = make([]PriceLevel, 0, bidCap)
	book.Asks = make([]PriceLevel, 0, askCap)
	for _, s := range snaps {
		if s == nil {
			continue
		}
		book.Bids = append(book.Bids, truncate(s.Bids, depth)...)
		book.Asks = append(book.Asks, truncate(s.Asks, depth)...)
	}
	return book
}

// truncate 返回前 min(depth, len) 档。
func truncate(levels []PriceLevel, depth int) []PriceLevel {
	if depth <= 0 || len(levels) <= depth {
		return levels
	}
	return levels[:depth]
}
