package market

import (
	"time"

	"github.com/google/uuid"
)

// VenueSnapshot 单个交易所最近一次成功拉取的完整订单簿。
// 发布后只会被整体替换，不会原地修改。
type VenueSnapshot struct {
	Venue     Venue
	Bids      []PriceLevel
	Asks      []PriceLevel
	FetchedAt time.Time
	Sequence  int64 // 交易所提供的序列号，没有则为 0
}

// MergedBook 两个交易所按深度截断后拼接的订单簿，不按价格排序。
type MergedBook struct {
	ID      uuid.UUID
	Bids    []PriceLevel
	Asks    []PriceLevel
	BuiltAt time.Time
	Depth   int // 0 表示不限深度
}

// Liquidity 返回市价单 side 会吃掉的一侧：买单吃 asks，卖单吃 bids。
func (b *MergedBook) Liquidity(side Side) []PriceLevel {
	if b == nil {
		return nil
	}
	if side == SideSell {
		return b.Bids
	}
	return b.Asks
}

// Age 返回距离构建的时间。
func (b *MergedBook) Age(now time.Time) time.Duration {
	if b == nil {
		return 0
	}
	return now.Sub(b.BuiltAt)
}
