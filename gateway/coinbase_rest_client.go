package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"book-aggregator-go/market"
)

// CoinbaseRESTClient 拉取 Coinbase Exchange 公共 L2 订单簿，无需签名。
// HTTPClient 可注入 httptest。
type CoinbaseRESTClient struct {
	BaseURL    string
	Product    string // 例如 BTC-USD
	Level      int    // 1/2/3，聚合使用 2
	HTTPClient *http.Client
	Clock      Clock
}

func (c *CoinbaseRESTClient) Venue() market.Venue { return market.VenueCoinbase }

// FetchBook 调用 /products/{product}/book?level=N。
func (c *CoinbaseRESTClient) FetchBook(ctx context.Context) (*market.VenueSnapshot, error) {
	if c == nil || c.HTTPClient == nil {
		return nil, ErrHTTPClientNotSet
	}
	level := c.Level
	if level <= 0 {
		level = 2
	}
	q := url.Values{}
	q.Set("level", strconv.Itoa(level))
	endpoint := c.BaseURL + "/products/" + url.PathEscape(c.Product) + "/book?" + q.Encode()
	body, err := getBook(ctx, c.HTTPClient, c.Venue(), endpoint)
	if err != nil {
		return nil, err
	}
	return ParseCoinbaseBook(body, clockOrSystem(c.Clock).Now())
}

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
