package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"book-aggregator-go/infrastructure/logger"
)

// EnvConfigPath 指定配置文件路径的环境变量；为空时使用内置默认值。
const EnvConfigPath = "BOOKAGG_CONFIG"

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env             string          `yaml:"env"`
	Depth           int             `yaml:"depth"` // 每个交易所每侧保留的档数，0 表示不限
	MergeIntervalMs int             `yaml:"mergeIntervalMs"`
	Execution       ExecutionConfig `yaml:"execution"`
	Venues          VenuesConfig    `yaml:"venues"`
	Log             logger.Config   `yaml:"log"`
	Metrics         MetricsConfig   `yaml:"metrics"`
}

type ExecutionConfig struct {
	Quantity float64 `yaml:"quantity"` // 模拟市价单数量（BTC）
}

type VenuesConfig struct {
	Coinbase VenueConfig `yaml:"coinbase"`
	Gemini   VenueConfig `yaml:"gemini"`
}

// VenueConfig 单个交易所的轮询参数。
type VenueConfig struct {
	BaseURL        string `yaml:"baseURL"`
	Instrument     string `yaml:"instrument"`     // Coinbase: BTC-USD，Gemini: BTCUSD
	BookLevel      int    `yaml:"bookLevel"`      // Coinbase 为 level 参数，Gemini 为 limit_bids/limit_asks
	MinIntervalMs  int    `yaml:"minIntervalMs"`  // 限流：两次请求最小间隔
	PollIntervalMs int    `yaml:"pollIntervalMs"` // 拉取循环休眠间隔
	TimeoutMs      int    `yaml:"timeoutMs"`      // 单次 HTTP 超时
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // 为空则不启动 /metrics
}

func (v VenueConfig) MinInterval() time.Duration {
	return time.Duration(v.MinIntervalMs) * time.Millisecond
}

func (v VenueConfig) PollInterval() time.Duration {
	return time.Duration(v.PollIntervalMs) * time.Millisecond
}

func (v VenueConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutMs) * time.Millisecond
}

func (c AppConfig) MergeInterval() time.Duration {
	return time.Duration(c.MergeIntervalMs) * time.Millisecond
}

// Default 返回内置默认配置：2s 限流/轮询/合并周期，10s 超时，不限深度，数量 10。
func Default() AppConfig {
	return AppConfig{
		Env:             "prod",
		Depth:           0,
		MergeIntervalMs: 2000,
		Execution:       ExecutionConfig{Quantity: 10.0},
		Venues: VenuesConfig{
			Coinbase: VenueConfig{
				BaseURL:        "https://api.exchange.coinbase.com",
				Instrument:     "BTC-USD",
				BookLevel:      2,
				MinIntervalMs:  2000,
				PollIntervalMs: 2000,
				TimeoutMs:      10000,
			},
			Gemini: VenueConfig{
				BaseURL:        "https://api.gemini.com",
				Instrument:     "BTCUSD",
				MinIntervalMs:  2000,
				PollIntervalMs: 2000,
				TimeoutMs:      10000,
			},
		},
		Log: logger.DefaultConfig(),
	}
}

// Load reads YAML config over defaults from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides 先加载 .env（不存在则忽略），再读取配置文件（path 为空用默认值），
// 最后用 BOOKAGG_* 环境变量覆盖。
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("BOOKAGG_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("BOOKAGG_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKAGG_DEPTH: %w", err)
		}
		cfg.Depth = n
	}
	if v := os.Getenv("BOOKAGG_QTY"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BOOKAGG_QTY: %w", err)
		}
		cfg.Execution.Quantity = q
	}
	if v := os.Getenv("BOOKAGG_COINBASE_URL"); v != "" {
		cfg.Venues.Coinbase.BaseURL = v
	}
	if v := os.Getenv("BOOKAGG_GEMINI_URL"); v != "" {
		cfg.Venues.Gemini.BaseURL = v
	}
	if v := os.Getenv("BOOKAGG_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("BOOKAGG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
