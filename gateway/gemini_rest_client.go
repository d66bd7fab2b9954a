package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"book-aggregator-go/market"
)

// GeminiRESTClient 拉取 Gemini 公共订单簿。
type GeminiRESTClient struct {
	BaseURL    string
	Symbol     string // 例如 BTCUSD
	Limit      int    // 每侧档数，0 使用交易所默认
	HTTPClient *http.Client
	Clock      Clock
}

func (c *GeminiRESTClient) Venue() market.Venue { return market.VenueGemini }

// FetchBook 调用 /v1/book/{symbol}。
func (c *GeminiRESTClient) FetchBook(ctx context.Context) (*market.VenueSnapshot, error) {
	if c == nil || c.HTTPClient == nil {
		return nil, ErrHTTPClientNotSet
	}
	endpoint := c.BaseURL + "/v1/book/" + url.PathEscape(c.Symbol)
	if c.Limit > 0 {
		q := url.Values{}
		q.Set("limit_bids", strconv.Itoa(c.Limit))
		q.Set("limit_asks", strconv.Itoa(c.Limit))
		endpoint += "?" + q.Encode()
	}
	body, err := getBook(ctx, c.HTTPClient, c.Venue(), endpoint)
	if err != nil {
		return nil, err
	}
	return ParseGeminiBook(body, clockOrSystem(c.Clock).Now())
}
