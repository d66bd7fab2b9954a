package gateway

import (
	"sync"
	"time"
)

// RateLimiter 控制对某个交易所的轮询频率，避免触发限流。
type RateLimiter interface {
	Allow() bool
}

// Clock 抽象时间便于测试。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock 默认时钟。
var SystemClock Clock = realClock{}

// IntervalLimiter 最小间隔门限：两次放行之间至少相隔 minInterval。
// 被拒绝的调用不排队、不等待，也不改变状态。
type IntervalLimiter struct {
	minInterval   time.Duration
	lastAllowedAt time.Time
	clock         Clock
	mu            sync.Mutex
}

func NewIntervalLimiter(minInterval time.Duration) *IntervalLimiter {
	return NewIntervalLimiterWithClock(minInterval, SystemClock)
}

func NewIntervalLimiterWithClock(minInterval time.Duration, clock Clock) *IntervalLimiter {
	if clock == nil {
		clock = SystemClock
	}
	return &IntervalLimiter{
		minInterval: minInterval,
		clock:       clock,
	}
}

// Allow 若距上次放行已满 minInterval 则记录当前时间并返回 true。
func (l *IntervalLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	if l.lastAllowedAt.IsZero() || now.Sub(l.lastAllowedAt) >= l.minInterval {
		l.lastAllowedAt = now
		return true
	}
	return false
}

// MinInterval 返回配置的最小间隔。
func (l *IntervalLimiter) MinInterval() time.Duration {
	return l.minInterval
}

// LastAllowedAt 返回上次放行时间；从未放行为零值。
func (l *IntervalLimiter) LastAllowedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAllowedAt
}
