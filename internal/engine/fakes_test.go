package engine

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"book-aggregator-go/infrastructure/monitor"
	"book-aggregator-go/market"
)

// fakeSource 按顺序返回预设结果，最后一个结果重复使用。
type fakeSource struct {
	venue market.Venue

	mu      sync.Mutex
	results []fakeResult
	calls   int32
}

type fakeResult struct {
	snap *market.VenueSnapshot
	err  error
}

func (s *fakeSource) Venue() market.Venue { return s.venue }

func (s *fakeSource) FetchBook(ctx context.Context) (*market.VenueSnapshot, error) {
	n := atomic.AddInt32(&s.calls, 1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return nil, errors.New("no result configured")
	}
	idx := int(n) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	r := s.results[idx]
	return r.snap, r.err
}

func (s *fakeSource) Calls() int { return int(atomic.LoadInt32(&s.calls)) }

type fixedLimiter struct{ allow bool }

func (l fixedLimiter) Allow() bool { return l.allow }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func snapshot(venue market.Venue, bids, asks [][2]float64) *market.VenueSnapshot {
	toLevels := func(pairs [][2]float64) []market.PriceLevel {
		out := make([]market.PriceLevel, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, market.PriceLevel{Price: p[0], Size: p[1], Venue: venue})
		}
		return out
	}
	return &market.VenueSnapshot{
		Venue:     venue,
		Bids:      toLevels(bids),
		Asks:      toLevels(asks),
		FetchedAt: time.Unix(1700000000, 0),
	}
}

// scrape 读取 /metrics 文本。
func scrape(t *testing.T, m *monitor.Monitor) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func hasMetricLine(body, line string) bool {
	for _, l := range strings.Split(body, "\n") {
		if l == line {
			return true
		}
	}
	return false
}

// recordingReporter 记录每个周期收到的输出。
type recordingReporter struct {
	mu     sync.Mutex
	books  []*market.MergedBook
	buys   []market.Execution
	sells  []market.Execution
	cycles chan struct{}
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{cycles: make(chan struct{}, 64)}
}

func (r *recordingReporter) PrintBook(book *market.MergedBook) {
	r.mu.Lock()
	r.books = append(r.books, book)
	r.mu.Unlock()
}

func (r *recordingReporter) PrintExecutions(book *market.MergedBook, buy, sell market.Execution) {
	r.mu.Lock()
	r.buys = append(r.buys, buy)
	r.sells = append(r.sells, sell)
	r.mu.Unlock()
	select {
	case r.cycles <- struct{}{}:
	default:
	}
}
