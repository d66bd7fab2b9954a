package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"book-aggregator-go/market"
)

// Console 将合并簿与模拟成交打印到终端（默认 stdout）。
// 展示时的取整只在这里发生，上游数值保持原始精度。
type Console struct {
	Out    io.Writer
	Symbol string // 基础币种，默认 BTC

	mu      sync.Mutex
	printer *message.Printer
}

// NewConsole 创建控制台输出，out 为 nil 时写 stdout。
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{Out: out, Symbol: "BTC"}
}

// PrintBook 按交易所分列打印每一档，行数 = 合并深度；深度不限时取较长的一侧。
func (c *Console) PrintBook(book *market.MergedBook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	if book == nil {
		b.WriteString("Internal order book is not yet available.\n")
		c.flush(b.String())
		return
	}
	b.WriteString("Bids:\n")
	writeLevels(&b, book.Bids, book.Depth)
	b.WriteString("\nAsks:\n")
	writeLevels(&b, book.Asks, book.Depth)
	c.flush(b.String())
}

// PrintExecutions 打印买卖两侧的模拟成交金额；流动性不足时追加缺口一行。
func (c *Console) PrintExecutions(book *market.MergedBook, buy, sell market.Execution) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	if book == nil {
		b.WriteString("Execution prices: internal order book not yet available.\n")
		c.flush(b.String())
		return
	}
	p := c.numberPrinter()
	symbol := c.symbol()

	b.WriteString("\n--- Execution prices (internal order book: Gemini + Coinbase) ---\n")
	for _, row := range []struct {
		verb string
		res  market.Execution
	}{{"Buy", buy}, {"Sell", sell}} {
		fmt.Fprintf(&b, "To %s %s %s = $%s\n", row.verb, formatQty(row.res.Requested), symbol, p.Sprintf("%.2f", row.res.TotalValue))
		if row.res.Remainder > 0 {
			fmt.Fprintf(&b, "  insufficient liquidity: filled %s %s, short %s %s\n",
				formatQty(row.res.FilledQty), symbol, formatQty(row.res.Remainder), symbol)
		}
	}
	b.WriteString("---\n\n")
	c.flush(b.String())
}

func (c *Console) flush(s string) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, _ = io.WriteString(out, s)
}

func (c *Console) numberPrinter() *message.Printer {
	if c.printer == nil {
		c.printer = message.NewPrinter(language.English)
	}
	return c.printer
}

func (c *Console) symbol() string {
	if c.Symbol == "" {
		return "BTC"
	}
	return c.Symbol
}

func writeLevels(b *strings.Builder, levels []market.PriceLevel, depth int) {
	coinbase := market.FilterVenue(levels, market.VenueCoinbase)
	gemini := market.FilterVenue(levels, market.VenueGemini)
	rows := depth
	if rows <= 0 {
		rows = len(coinbase)
		if len(gemini) > rows {
			rows = len(gemini)
		}
	}
	for i := 0; i < rows; i++ {
		fmt.Fprintf(b, "Level %d - %s | %s\n", i+1,
			levelText(market.VenueCoinbase, coinbase, i),
			levelText(market.VenueGemini, gemini, i))
	}
}

func levelText(venue market.Venue, levels []market.PriceLevel, i int) string {
	if i >= len(levels) {
		return venue.DisplayName() + ": None"
	}
	lvl := levels[i]
	return fmt.Sprintf("%s: price=%s, size=%s", venue.DisplayName(), formatQty(lvl.Price), formatQty(lvl.Size))
}

// formatQty 最短表示，整数保留一位小数（10 -> "10.0"）。
func formatQty(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
