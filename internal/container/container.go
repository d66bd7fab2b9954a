package container

import (
	"context"
	"fmt"
	"io"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"book-aggregator-go/config"
	"book-aggregator-go/gateway"
	"book-aggregator-go/infrastructure/logger"
	"book-aggregator-go/infrastructure/monitor"
	"book-aggregator-go/internal/engine"
	"book-aggregator-go/internal/report"
	"book-aggregator-go/internal/store"
)

// Options 命令行层传入的覆盖项
type Options struct {
	ConfigPath  string    // 为空则使用内置默认 + 环境变量
	Quantity    float64   // QuantitySet 时覆盖 execution.quantity
	QuantitySet bool      // 命令行显式指定了数量，热更新不再修改
	Out         io.Writer // 控制台报表输出，nil 为 stdout
}

// Container 依赖注入容器，管理所有组件的生命周期
type Container struct {
	// 配置
	cfg  config.AppConfig
	opts Options

	// 基础设施
	logger  *logger.Logger
	monitor *monitor.Monitor

	// 核心服务
	store   *store.Store
	engine  *engine.Engine
	console *report.Console
	sources []gateway.BookSource

	metricsServer *httpServerComponent

	// 生命周期管理
	lifecycle *LifecycleManager
}

// New 加载配置并创建 Container
func New(opts Options) (*Container, error) {
	cfg, err := config.LoadWithEnvOverrides(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig 使用已加载的配置创建 Container
func NewWithConfig(cfg config.AppConfig, opts Options) (*Container, error) {
	if opts.QuantitySet {
		cfg.Execution.Quantity = opts.Quantity
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return &Container{
		cfg:       cfg,
		opts:      opts,
		lifecycle: NewLifecycleManager(),
	}, nil
}

// Build 构建所有组件
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}

	c.buildGateway()

	if err := c.buildCoreServices(); err != nil {
		return fmt.Errorf("build core services failed: %w", err)
	}

	c.registerLifecycleComponents()
	c.logger.Info("container built successfully",
		zap.String("env", c.cfg.Env),
		zap.Int("components", c.lifecycle.Len()))
	return nil
}

func (c *Container) buildInfrastructure() error {
	var err error
	c.logger, err = logger.New(c.cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}

	c.monitor = monitor.New(monitor.DefaultConfig())
	return nil
}

func (c *Container) buildGateway() {
	cb := c.cfg.Venues.Coinbase
	gm := c.cfg.Venues.Gemini
	c.sources = []gateway.BookSource{
		&gateway.CoinbaseRESTClient{
			BaseURL:    cb.BaseURL,
			Product:    cb.Instrument,
			Level:      cb.BookLevel,
			HTTPClient: gateway.NewHTTPClient(cb.Timeout()),
		},
		&gateway.GeminiRESTClient{
			BaseURL:    gm.BaseURL,
			Symbol:     gm.Instrument,
			Limit:      gm.BookLevel,
			HTTPClient: gateway.NewHTTPClient(gm.Timeout()),
		},
	}
}

func (c *Container) buildCoreServices() error {
	c.store = store.New(func(event string, fields map[string]interface{}) {
		c.logger.LogEvent(zapcore.DebugLevel, event, fields)
	})
	c.console = report.NewConsole(c.opts.Out)

	venueCfg := []config.VenueConfig{c.cfg.Venues.Coinbase, c.cfg.Venues.Gemini}
	fetchers := make([]*engine.Fetcher, 0, len(c.sources))
	for i, src := range c.sources {
		fetchers = append(fetchers, &engine.Fetcher{
			Source:   src,
			Limiter:  gateway.NewIntervalLimiter(venueCfg[i].MinInterval()),
			Interval: venueCfg[i].PollInterval(),
		})
	}

	var err error
	c.engine, err = engine.New(engine.Config{
		Depth:         c.cfg.Depth,
		Quantity:      c.cfg.Execution.Quantity,
		MergeInterval: c.cfg.MergeInterval(),
	}, engine.Components{
		Store:    c.store,
		Fetchers: fetchers,
		Monitor:  c.monitor,
		Logger:   c.logger,
		Reporter: c.console,
	})
	if err != nil {
		return fmt.Errorf("create engine failed: %w", err)
	}
	return nil
}

func (c *Container) registerLifecycleComponents() {
	if c.cfg.Metrics.Addr != "" {
		c.metricsServer = &httpServerComponent{
			name:    "metrics_server",
			handler: c.monitor.Handler(),
			addr:    c.cfg.Metrics.Addr,
			logger:  c.logger,
		}
		c.lifecycle.Register(c.metricsServer)
	}

	c.lifecycle.Register(c.engine)

	if c.opts.ConfigPath != "" {
		c.lifecycle.Register(&configWatcherComponent{
			watcher: config.Watcher{
				Path: c.opts.ConfigPath,
				OnError: func(err error) {
					c.logger.LogError(err, map[string]interface{}{"action": "config_reload"})
				},
			},
			onUpdate: c.applyConfig,
			logger:   c.logger,
		})
	}
}

// applyConfig 热更新：深度与数量在下一个周期生效，其余字段需重启。
func (c *Container) applyConfig(cfg config.AppConfig) {
	c.engine.SetDepth(cfg.Depth)
	if !c.opts.QuantitySet {
		c.engine.SetQuantity(cfg.Execution.Quantity)
	}
	c.logger.LogEvent(zapcore.InfoLevel, "config_reload", map[string]interface{}{
		"depth":    c.engine.Depth(),
		"quantity": c.engine.Quantity(),
	})
}

func (c *Container) Start(ctx context.Context) error {
	c.logger.Info("starting container...")

	if err := c.lifecycle.StartAll(ctx); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	c.notifySystemd(daemon.SdNotifyReady)
	c.logger.Info("container started")
	return nil
}

func (c *Container) Stop() error {
	c.logger.Info("stopping container...")
	c.notifySystemd(daemon.SdNotifyStopping)

	err := c.lifecycle.StopAll()
	if err != nil {
		c.logger.LogError(err, map[string]interface{}{"action": "stop"})
	}
	_ = c.logger.Close()
	return err
}

// Wait 阻塞直到 ctx 取消或引擎工作协程全部退出。
func (c *Container) Wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-c.engine.Done():
	}
}

func (c *Container) HealthCheck() error {
	return c.lifecycle.CheckHealth()
}

func (c *Container) Engine() *engine.Engine { return c.engine }

func (c *Container) Store() *store.Store { return c.store }

func (c *Container) Config() config.AppConfig { return c.cfg }

// MetricsAddr 返回 /metrics 实际监听地址，未启用为空。
func (c *Container) MetricsAddr() string {
	if c.metricsServer == nil {
		return ""
	}
	return c.metricsServer.Addr()
}

// notifySystemd 非 systemd 环境下 SdNotify 返回 (false, nil)，不做任何事。
func (c *Container) notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		c.logger.Warn("sd_notify failed", zap.String("state", state), zap.Error(err))
		return
	}
	if sent {
		c.logger.Debug("sd_notify sent", zap.String("state", state))
	}
}
