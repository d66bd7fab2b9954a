package market

import "fmt"

// Venue 标识行情来源交易所。
type Venue int

const (
	// VenueCoinbase 以 [price, size, ...] 位置数组编码档位。
	VenueCoinbase Venue = iota
	// VenueGemini 以 {price, amount} 对象编码档位。
	VenueGemini

	// NumVenues 来源数量
	NumVenues = 2
)

// Venues 按合并顺序列出所有来源。
var Venues = []Venue{VenueCoinbase, VenueGemini}

// String 返回来源名称
func (v Venue) String() string {
	switch v {
	case VenueCoinbase:
		return "coinbase"
	case VenueGemini:
		return "gemini"
	default:
		return fmt.Sprintf("venue(%d)", int(v))
	}
}

// DisplayName 用于控制台输出。
func (v Venue) DisplayName() string {
	switch v {
	case VenueCoinbase:
		return "Coinbase"
	case VenueGemini:
		return "Gemini"
	default:
		return v.String()
	}
}

// Side 市价单方向
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// PriceLevel 一档价格。构造后不可修改。
type PriceLevel struct {
	Price float64
	Size  float64
	Venue Venue
}

// Value 返回该档全部数量的名义价值。
func (l PriceLevel) Value() float64 {
	return l.Price * l.Size
}

// TotalSize 累加档位数量。
func TotalSize(levels []PriceLevel) float64 {
	total := 0.0
	for _, l := range levels {
		total += l.Size
	}
	return total
}

// FilterVenue 按原顺序返回属于 venue 的档位。
func FilterVenue(levels []PriceLevel, venue Venue) []PriceLevel {
	out := make([]PriceLevel, 0, len(levels))
	for _, l := range levels {
		if l.Venue == venue {
			out = append(out, l)
		}
	}
	return out
}
