package engine

import (
	"context"
	"time"

	"book-aggregator-go/gateway"
	"book-aggregator-go/infrastructure/logger"
	"book-aggregator-go/infrastructure/monitor"
	"book-aggregator-go/internal/store"
)

// Fetcher 单个交易所的拉取器：限流 -> 拉取并解析 -> 整体替换快照。
type Fetcher struct {
	Source   gateway.BookSource
	Limiter  gateway.RateLimiter
	Store    *store.Store
	Interval time.Duration // 两次尝试之间的休眠

	Monitor *monitor.Monitor
	Logger  *logger.Logger
}

// Fetch 执行一次拉取。被限流时不做任何网络请求，返回 (false, nil)。
// 失败时快照保持不变，错误交由调用方记录。
func (f *Fetcher) Fetch(ctx context.Context) (bool, error) {
	venue := f.Source.Venue()
	if f.Limiter != nil && !f.Limiter.Allow() {
		f.record(gateway.OutcomeRateLimited)
		return false, nil
	}

	start := time.Now()
	snap, err := f.Source.FetchBook(ctx)
	elapsed := time.Since(start)
	if f.Monitor != nil {
		f.Monitor.RecordFetchLatency(venue, elapsed.Seconds())
	}
	if err != nil {
		f.record(gateway.ClassifyError(err))
		return false, err
	}
	if snap == nil || snap.Venue != venue {
		err := &gateway.SchemaError{Venue: venue, Field: "snapshot", Reason: "source returned no snapshot for venue"}
		f.record(gateway.OutcomeSchemaError)
		return false, err
	}

	f.Store.PublishSnapshot(snap)
	f.record(gateway.OutcomeOK)
	if f.Monitor != nil {
		f.Monitor.UpdateSnapshot(snap)
	}
	f.log().LogFetch("fetch_ok", map[string]interface{}{
		"venue":     venue.String(),
		"bids":      len(snap.Bids),
		"asks":      len(snap.Asks),
		"sequence":  snap.Sequence,
		"latencyMs": elapsed.Milliseconds(),
	})
	return true, nil
}

// Run 循环拉取直到 ctx 取消。单次失败只记录日志，循环永不因拉取错误退出。
func (f *Fetcher) Run(ctx context.Context) {
	venue := f.Source.Venue()
	for {
		if _, err := f.Fetch(ctx); err != nil && ctx.Err() == nil {
			f.log().LogFetch("fetch_error", map[string]interface{}{
				"venue":   venue.String(),
				"outcome": gateway.ClassifyError(err),
				"error":   err.Error(),
			})
		}
		if !sleepCtx(ctx, f.Interval) {
			return
		}
	}
}

func (f *Fetcher) record(outcome string) {
	if f.Monitor != nil {
		f.Monitor.RecordFetch(f.Source.Venue(), outcome)
	}
}

func (f *Fetcher) log() *logger.Logger {
	if f.Logger == nil {
		return logger.NewNop()
	}
	return f.Logger
}

// sleepCtx 休眠 d；ctx 取消时提前返回 false。
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
