package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"book-aggregator-go/market"
)

// coinbaseBook 对应 /products/{id}/book?level=2 的响应。
// 每档为位置数组 [price, size, num_orders]，只取前两项。
type coinbaseBook struct {
	Bids     json.RawMessage `json:"bids"`
	Asks     json.RawMessage `json:"asks"`
	Sequence int64           `json:"sequence"`
}

// geminiBook 对应 /v1/book/{symbol} 的响应。
type geminiBook struct {
	Bids json.RawMessage `json:"bids"`
	Asks json.RawMessage `json:"asks"`
}

type geminiLevel struct {
	Price  json.RawMessage `json:"price"`
	Amount json.RawMessage `json:"amount"`
}

// ParseCoinbaseBook 解析 Coinbase 订单簿为快照，任何一档不合法都返回 SchemaError。
func ParseCoinbaseBook(raw []byte, fetchedAt time.Time) (*market.VenueSnapshot, error) {
	venue := market.VenueCoinbase
	var book coinbaseBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, &SchemaError{Venue: venue, Field: "body", Reason: err.Error()}
	}
	bids, err := parsePositionalSide(venue, "bids", book.Bids)
	if err != nil {
		return nil, err
	}
	asks, err := parsePositionalSide(venue, "asks", book.Asks)
	if err != nil {
		return nil, err
	}
	return &market.VenueSnapshot{
		Venue:     venue,
		Bids:      bids,
		Asks:      asks,
		FetchedAt: fetchedAt,
		Sequence:  book.Sequence,
	}, nil
}

// ParseGeminiBook 解析 Gemini 订单簿为快照。
func ParseGeminiBook(raw []byte, fetchedAt time.Time) (*market.VenueSnapshot, error) {
	venue := market.VenueGemini
	var book geminiBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, &SchemaError{Venue: venue, Field: "body", Reason: err.Error()}
	}
	bids, err := parseKeyedSide(venue, "bids", book.Bids)
	if err != nil {
		return nil, err
	}
	asks, err := parseKeyedSide(venue, "asks", book.Asks)
	if err != nil {
		return nil, err
	}
	return &market.VenueSnapshot{
		Venue:     venue,
		Bids:      bids,
		Asks:      asks,
		FetchedAt: fetchedAt,
	}, nil
}

func parsePositionalSide(venue market.Venue, side string, raw json.RawMessage) ([]market.PriceLevel, error) {
	if isMissing(raw) {
		return nil, &SchemaError{Venue: venue, Field: side, Reason: "missing"}
	}
	var rows [][]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &SchemaError{Venue: venue, Field: side, Reason: "expected array of [price, size] arrays"}
	}
	out := make([]market.PriceLevel, 0, len(rows))
	for i, row := range rows {
		field := fmt.Sprintf("%s[%d]", side, i)
		if len(row) < 2 {
			return nil, &SchemaError{Venue: venue, Field: field, Reason: fmt.Sprintf("expected at least 2 elements, got %d", len(row))}
		}
		lvl, err := newLevel(venue, field, row[0], row[1])
		if err != nil {
			return nil, err
		}
		out = append(out, lvl)
	}
	return out, nil
}

func parseKeyedSide(venue market.Venue, side string, raw json.RawMessage) ([]market.PriceLevel, error) {
	if isMissing(raw) {
		return nil, &SchemaError{Venue: venue, Field: side, Reason: "missing"}
	}
	var rows []geminiLevel
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &SchemaError{Venue: venue, Field: side, Reason: "expected array of {price, amount} objects"}
	}
	out := make([]market.PriceLevel, 0, len(rows))
	for i, row := range rows {
		field := fmt.Sprintf("%s[%d]", side, i)
		lvl, err := newLevel(venue, field, row.Price, row.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, lvl)
	}
	return out, nil
}

func newLevel(venue market.Venue, field string, rawPrice, rawSize json.RawMessage) (market.PriceLevel, error) {
	price, err := parseDecimal(rawPrice)
	if err != nil {
		return market.PriceLevel{}, &SchemaError{Venue: venue, Field: field + ".price", Reason: err.Error()}
	}
	size, err := parseDecimal(rawSize)
	if err != nil {
		return market.PriceLevel{}, &SchemaError{Venue: venue, Field: field + ".size", Reason: err.Error()}
	}
	return market.PriceLevel{Price: price, Size: size, Venue: venue}, nil
}

// parseDecimal 接受十进制字符串（交易所的常见写法）或 JSON 数字，要求有限且非负。
func parseDecimal(raw json.RawMessage) (float64, error) {
	if isMissing(raw) {
		return 0, fmt.Errorf("missing")
	}
	var text string
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("not a number: %s", raw)
		}
		text = n.String()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("out of range: %q", text)
	}
	return v, nil
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
