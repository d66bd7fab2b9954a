package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"book-aggregator-go/gateway"
	"book-aggregator-go/infrastructure/logger"
	"book-aggregator-go/infrastructure/monitor"
	"book-aggregator-go/internal/store"
	"book-aggregator-go/market"
)

// EngineState 引擎状态
type EngineState int

const (
	// StateIdle 空闲状态
	StateIdle EngineState = iota
	// StateRunning 运行状态
	StateRunning
	// StateStopped 停止状态
	StateStopped
)

// String 返回状态名称
func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

var errNoFetchers = errors.New("at least one fetcher is required")

// Config 引擎配置
type Config struct {
	Depth         int           // 每个交易所每侧保留档数，0 不限
	Quantity      float64       // 模拟市价单数量
	MergeInterval time.Duration // 合并+模拟周期
	StopTimeout   time.Duration // Stop 等待工作协程退出的上限
}

// Reporter 每个合并周期的输出端（控制台等）。
type Reporter interface {
	PrintBook(book *market.MergedBook)
	PrintExecutions(book *market.MergedBook, buy, sell market.Execution)
}

// Components 引擎依赖组件
type Components struct {
	Store    *store.Store
	Fetchers []*Fetcher
	Monitor  *monitor.Monitor
	Logger   *logger.Logger
	Reporter Reporter
	Clock    gateway.Clock
}

// Engine 驱动各交易所拉取循环以及合并+模拟循环。
type Engine struct {
	config   Config
	store    *store.Store
	fetchers []*Fetcher
	monitor  *monitor.Monitor
	logger   *logger.Logger
	reporter Reporter
	clock    gateway.Clock

	// 可热更新的参数
	paramsMu sync.RWMutex
	depth    int
	quantity float64

	state  EngineState
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New 创建引擎
func New(cfg Config, components Components) (*Engine, error) {
	if components.Store == nil {
		return nil, errors.New("invalid components: store is required")
	}
	if len(components.Fetchers) == 0 {
		return nil, fmt.Errorf("invalid components: %w", errNoFetchers)
	}
	if cfg.Depth < 0 {
		return nil, fmt.Errorf("invalid config: depth %d must be >= 0", cfg.Depth)
	}
	if cfg.MergeInterval <= 0 {
		cfg.MergeInterval = 2 * time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 10 * time.Second
	}
	lg := components.Logger
	if lg == nil {
		lg = logger.NewNop()
	}
	clock := components.Clock
	if clock == nil {
		clock = gateway.SystemClock
	}
	for _, f := range components.Fetchers {
		if f.Store == nil {
			f.Store = components.Store
		}
		if f.Monitor == nil {
			f.Monitor = components.Monitor
		}
		if f.Logger == nil {
			f.Logger = lg
		}
	}
	return &Engine{
		config:   cfg,
		store:    components.Store,
		fetchers: components.Fetchers,
		monitor:  components.Monitor,
		logger:   lg,
		reporter: components.Reporter,
		clock:    clock,
		depth:    cfg.Depth,
		quantity: cfg.Quantity,
		state:    StateIdle,
	}, nil
}

// Start 启动所有工作协程；ctx 取消或调用 Stop 时退出。
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return fmt.Errorf("engine already started (state: %s)", e.state)
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	for _, f := range e.fetchers {
		f := f
		g.Go(func() error {
			f.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		e.runMergeLoop(gctx)
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	e.cancel = cancel
	e.done = done
	e.state = StateRunning

	e.logger.Info("aggregator engine started",
		zap.Int("fetchers", len(e.fetchers)),
		zap.Int("depth", e.Depth()),
		zap.Float64("quantity", e.Quantity()),
		zap.Duration("merge_interval", e.config.MergeInterval))
	return nil
}

// Stop 取消所有工作协程并等待退出（幂等）。
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return nil
	}
	cancel, done := e.cancel, e.done
	e.state = StateStopped
	e.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(e.config.StopTimeout):
		return fmt.Errorf("timeout waiting for engine workers to stop")
	}
	e.logger.Info("aggregator engine stopped")
	return nil
}

// Health 未运行时返回错误。
func (e *Engine) Health() error {
	if s := e.State(); s != StateRunning {
		return fmt.Errorf("engine not running (state: %s)", s)
	}
	return nil
}

// Done 所有工作协程退出后关闭；未启动返回 nil。
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetDepth 下一个合并周期生效。
func (e *Engine) SetDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	e.paramsMu.Lock()
	e.depth = depth
	e.paramsMu.Unlock()
}

func (e *Engine) Depth() int {
	e.paramsMu.RLock()
	defer e.paramsMu.RUnlock()
	return e.depth
}

// SetQuantity 下一个模拟周期生效。
func (e *Engine) SetQuantity(q float64) {
	e.paramsMu.Lock()
	e.quantity = q
	e.paramsMu.Unlock()
}

func (e *Engine) Quantity() float64 {
	e.paramsMu.RLock()
	defer e.paramsMu.RUnlock()
	return e.quantity
}

func (e *Engine) runMergeLoop(ctx context.Context) {
	for {
		if !sleepCtx(ctx, e.config.MergeInterval) {
			return
		}
		e.RunCycle()
	}
}

// RunCycle 执行一次 合并 -> 模拟 -> 输出。
func (e *Engine) RunCycle() {
	book := e.BuildMergedBook()
	buy, sell := e.priceBook(book)
	if e.reporter != nil {
		e.reporter.PrintBook(book)
		e.reporter.PrintExecutions(book, buy, sell)
	}
}
