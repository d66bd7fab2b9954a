package engine

import (
	"book-aggregator-go/market"
)

// PriceExecutions 在当前合并簿上模拟买入和卖出当前数量；尚无合并簿时 ok=false。
func (e *Engine) PriceExecutions() (buy, sell market.Execution, ok bool) {
	book := e.store.MergedBook()
	if book == nil {
		return market.Execution{}, market.Execution{}, false
	}
	buy, sell = e.priceBook(book)
	return buy, sell, true
}

func (e *Engine) priceBook(book *market.MergedBook) (buy, sell market.Execution) {
	qty := e.Quantity()
	buy = market.PriceExecution(book, qty, market.SideBuy)
	sell = market.PriceExecution(book, qty, market.SideSell)
	for _, res := range []market.Execution{buy, sell} {
		if e.monitor != nil {
			e.monitor.RecordExecution(res)
		}
		e.logger.LogExecution(map[string]interface{}{
			"bookId":    book.ID.String(),
			"side":      res.Side.String(),
			"quantity":  res.Requested,
			"filled":    res.FilledQty,
			"value":     res.TotalValue,
			"avgPrice":  res.AveragePrice(),
			"fills":     len(res.Fills),
			"remainder": res.Remainder,
		})
	}
	return buy, sell
}
