package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

type sideStats struct {
	samples    int
	shortfalls int
	valueSum   float64
	lastValue  float64
	lastQty    float64
}

func (s *sideStats) add(value, qty, remainder float64) {
	s.samples++
	s.valueSum += value
	s.lastValue = value
	s.lastQty = qty
	if remainder > 0 {
		s.shortfalls++
	}
}

func (s *sideStats) avgValue() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.valueSum / float64(s.samples)
}

// summary 汇总 aggregator 日志中的 execution_estimate 与 fetch_* 事件。
type summary struct {
	merges    int
	sides     map[string]*sideStats
	fetchOK   map[string]int
	fetchErrs map[string]int // key: venue/outcome
}

func newSummary() *summary {
	return &summary{
		sides:     make(map[string]*sideStats),
		fetchOK:   make(map[string]int),
		fetchErrs: make(map[string]int),
	}
}

func summarize(r io.Reader, since time.Time) (*summary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	st := newSummary()

	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "{")
		if idx == -1 {
			continue
		}
		var evt map[string]interface{}
		if err := json.Unmarshal([]byte(line[idx:]), &evt); err != nil {
			continue
		}
		evtName, _ := evt["event"].(string)
		if evtName == "" {
			continue
		}
		if !since.IsZero() {
			if tsStr, ok := evt["ts"].(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil && ts.Before(since) {
					continue
				}
			}
		}

		switch evtName {
		case "book_merged":
			st.merges++
		case "execution_estimate":
			side, _ := evt["side"].(string)
			if side == "" {
				continue
			}
			s, ok := st.sides[side]
			if !ok {
				s = &sideStats{}
				st.sides[side] = s
			}
			s.add(toFloat(evt["value"]), toFloat(evt["quantity"]), toFloat(evt["remainder"]))
		case "fetch_ok":
			venue, _ := evt["venue"].(string)
			st.fetchOK[venue]++
		case "fetch_error":
			venue, _ := evt["venue"].(string)
			outcome, _ := evt["outcome"].(string)
			st.fetchErrs[venue+"/"+outcome]++
		}
	}
	if err := scanner.Err(); err != nil {
		return st, err
	}
	return st, nil
}

func (st *summary) write(w io.Writer) {
	fmt.Fprintf(w, "合并次数: %d\n", st.merges)
	for _, side := range []string{"buy", "sell"} {
		s, ok := st.sides[side]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s: 样本 %d, 平均金额 %.2f USD, 最近 %.2f USD (数量 %g), 流动性不足 %d 次\n",
			side, s.samples, s.avgValue(), s.lastValue, s.lastQty, s.shortfalls)
	}
	for _, venue := range sortedKeys(st.fetchOK) {
		fmt.Fprintf(w, "拉取成功 %s: %d\n", venue, st.fetchOK[venue])
	}
	for _, key := range sortedKeys(st.fetchErrs) {
		fmt.Fprintf(w, "拉取失败 %s: %d\n", key, st.fetchErrs[key])
	}
}

func main() {
	logPath := flag.String("log", "", "aggregator JSON 日志路径（默认读 stdin）")
	sinceStr := flag.String("since", "", "仅统计此时间之后的记录 (RFC3339，例如 2025-11-22T00:00:00Z)")
	flag.Parse()

	var since time.Time
	var err error
	if *sinceStr != "" {
		since, err = time.Parse(time.RFC3339Nano, *sinceStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "解析 since 参数失败: %v\n", err)
			os.Exit(1)
		}
	}

	var in io.Reader = os.Stdin
	if *logPath != "" {
		f, err := os.Open(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "无法读取日志: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	st, err := summarize(in, since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取日志出错: %v\n", err)
		os.Exit(1)
	}
	if *logPath != "" {
		fmt.Printf("统计文件: %s\n", *logPath)
	}
	if !since.IsZero() {
		fmt.Printf("起始时间: %s\n", since.Format(time.RFC3339))
	}
	st.write(os.Stdout)
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
