package engine

import (
	"book-aggregator-go/market"
)

// BuildMergedBook 读取各交易所最新快照（各自短暂持锁复制指针），
// 在锁外按当前深度合并，然后发布新的合并簿。未拉取成功的交易所视为空簿。
func (e *Engine) BuildMergedBook() *market.MergedBook {
	coinbase := e.store.Snapshot(market.VenueCoinbase)
	gemini := e.store.Snapshot(market.VenueGemini)

	book := market.MergeBooks(coinbase, gemini, e.Depth(), e.clock.Now())
	e.store.PublishMergedBook(book)

	if e.monitor != nil {
		e.monitor.RecordMerge(book)
	}
	e.logger.LogBook(map[string]interface{}{
		"bookId":        book.ID.String(),
		"depth":         book.Depth,
		"bids":          len(book.Bids),
		"asks":          len(book.Asks),
		"coinbaseAgeMs": snapshotAgeMs(coinbase, book),
		"geminiAgeMs":   snapshotAgeMs(gemini, book),
	})
	return book
}

// snapshotAgeMs 快照相对合并时刻的年龄；缺失返回 -1。
func snapshotAgeMs(snap *market.VenueSnapshot, book *market.MergedBook) int64 {
	if snap == nil {
		return -1
	}
	return book.BuiltAt.Sub(snap.FetchedAt).Milliseconds()
}
