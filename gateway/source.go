package gateway

import (
	"context"
	"net/http"
	"time"

	"book-aggregator-go/market"
)

// BookSource 拉取单个交易所的完整订单簿快照。
type BookSource interface {
	Venue() market.Venue
	FetchBook(ctx context.Context) (*market.VenueSnapshot, error)
}

// DefaultTimeout 单次请求超时，防止卡死的请求阻塞拉取循环。
const DefaultTimeout = 10 * time.Second

// NewDefaultHTTPClient 提供一个带超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return NewHTTPClient(DefaultTimeout)
}

// NewHTTPClient timeout <= 0 时使用 DefaultTimeout。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
