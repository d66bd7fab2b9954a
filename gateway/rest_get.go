package gateway

import (
	"context"
	"io"
	"net/http"
	"strings"

	"book-aggregator-go/market"
)

const maxErrorBody = 256

// getBook 执行 GET 并返回响应体；错误按 Transport/Protocol 分类。
func getBook(ctx context.Context, cli *http.Client, venue market.Venue, endpoint string) ([]byte, error) {
	if cli == nil {
		return nil, ErrHTTPClientNotSet
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Venue: venue, Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "book-aggregator-go")
	resp, err := cli.Do(req)
	if err != nil {
		return nil, &TransportError{Venue: venue, Op: "get book", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProtocolError{
			Venue:      venue,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Venue: venue, Op: "read body", Err: err}
	}
	return body, nil
}
