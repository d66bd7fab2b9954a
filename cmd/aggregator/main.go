package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"book-aggregator-go/config"
	"book-aggregator-go/internal/container"
)

func main() {
	qty := flag.Float64("qty", 10.0, "模拟市价单数量（BTC），未指定时使用配置中的 execution.quantity（默认同为 10）")
	flag.Parse()

	opts := container.Options{
		ConfigPath: os.Getenv(config.EnvConfigPath),
		Quantity:   *qty,
		Out:        os.Stdout,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "qty" {
			opts.QuantitySet = true
		}
	})

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator: %v\n", err)
		os.Exit(1)
	}
}

func run(opts container.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(opts)
	if err != nil {
		return err
	}
	if err := c.Build(); err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}

	c.Wait(ctx)
	// 退出时的停止错误只记录日志，不影响退出码
	_ = c.Stop()
	return nil
}
