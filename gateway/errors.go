package gateway

import (
	"context"
	"errors"
	"fmt"

	"book-aggregator-go/market"
)

// ErrHTTPClientNotSet 客户端未注入 http.Client。
var ErrHTTPClientNotSet = errors.New("http client not set")

// TransportError 网络层失败：连接、超时、读取响应体。
type TransportError struct {
	Venue market.Venue
	Op    string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Venue, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError 交易所返回非 2xx 状态。
type ProtocolError struct {
	Venue      market.Venue
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s book status %d", e.Venue, e.StatusCode)
	}
	return fmt.Sprintf("%s book status %d: %s", e.Venue, e.StatusCode, e.Body)
}

// SchemaError 响应缺字段或类型不符。出错时整份数据作废，不会返回部分结果。
type SchemaError struct {
	Venue  market.Venue
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s payload %s: %s", e.Venue, e.Field, e.Reason)
}

// 错误分类，用于日志与指标的 outcome 标签。
const (
	OutcomeOK             = "ok"
	OutcomeRateLimited    = "rate_limited"
	OutcomeTransportError = "transport_error"
	OutcomeProtocolError  = "protocol_error"
	OutcomeSchemaError    = "schema_error"
	OutcomeCanceled       = "canceled"
	OutcomeUnknownError   = "error"
)

// ClassifyError 把错误映射为 outcome 标签。
func ClassifyError(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var schemaErr *SchemaError
	var protoErr *ProtocolError
	var transportErr *TransportError
	switch {
	case errors.As(err, &schemaErr):
		return OutcomeSchemaError
	case errors.As(err, &protoErr):
		return OutcomeProtocolError
	case errors.As(err, &transportErr):
		if errors.Is(transportErr.Err, context.Canceled) {
			return OutcomeCanceled
		}
		return OutcomeTransportError
	default:
		return OutcomeUnknownError
	}
}
