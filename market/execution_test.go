package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 对应 Coinbase asks [[100,1],[101,2]]，Gemini asks [{100.5,1.5}]，depth=2
func scenarioBook() *MergedBook {
	cb := &VenueSnapshot{Venue: VenueCoinbase, Asks: levels(VenueCoinbase, 100, 1, 101, 2)}
	gm := &VenueSnapshot{Venue: VenueGemini, Asks: levels(VenueGemini, 100.5, 1.5)}
	return MergeBooks(cb, gm, 2, time.Now())
}

func TestPriceExecutionBuyFullFill(t *testing.T) {
	res := PriceExecution(scenarioBook(), 2, SideBuy)

	assert.Equal(t, 2.0, res.FilledQty)
	assert.Equal(t, 200.5, res.TotalValue)
	assert.Equal(t, 0.0, res.Remainder)
	assert.True(t, res.FullyFilled())
	assert.Equal(t, []Fill{
		{Venue: VenueCoinbase, Size: 1, Price: 100, Value: 100},
		{Venue: VenueGemini, Size: 1, Price: 100.5, Value: 100.5},
	}, res.Fills)
	assert.InDelta(t, 100.25, res.AveragePrice(), 1e-9)
}

func TestPriceExecutionBuyShortfall(t *testing.T) {
	res := PriceExecution(scenarioBook(), 10, SideBuy)

	assert.Equal(t, 4.5, res.FilledQty)
	assert.Equal(t, 452.75, res.TotalValue)
	assert.Equal(t, 5.5, res.Remainder)
	assert.False(t, res.FullyFilled())
	if assert.Len(t, res.Fills, 3) {
		// 每一档都被吃完
		assert.Equal(t, 1.0, res.Fills[0].Size)
		assert.Equal(t, 1.5, res.Fills[1].Size)
		assert.Equal(t, 2.0, res.Fills[2].Size)
		assert.Equal(t, 101.0, res.Fills[2].Price)
	}
}

func TestPriceExecutionSellWalksBidsDescending(t *testing.T) {
	book := &MergedBook{Bids: []PriceLevel{
		{Price: 98, Size: 3, Venue: VenueCoinbase},
		{Price: 99.5, Size: 1, Venue: VenueCoinbase},
		{Price: 99, Size: 2, Venue: VenueGemini},
	}}
	res := PriceExecution(book, 2.5, SideSell)

	assert.Equal(t, 2.5, res.FilledQty)
	assert.Equal(t, 0.0, res.Remainder)
	assert.Equal(t, 99.5*1+99*1.5, res.TotalValue)
	assert.Equal(t, VenueCoinbase, res.Fills[0].Venue)
	assert.Equal(t, VenueGemini, res.Fills[1].Venue)
	// 原合并簿不被排序
	assert.Equal(t, 98.0, book.Bids[0].Price)
}

func TestPriceExecutionNonPositiveQuantity(t *testing.T) {
	book := scenarioBook()
	for _, qty := range []float64{0, -3} {
		res := PriceExecution(book, qty, SideBuy)
		assert.Equal(t, 0.0, res.FilledQty)
		assert.Equal(t, 0.0, res.Remainder)
		assert.Empty(t, res.Fills)
		assert.Equal(t, qty, res.Requested)
	}
}

func TestPriceExecutionEmptyOrNilBook(t *testing.T) {
	res := PriceExecution(nil, 3, SideSell)
	assert.Equal(t, 3.0, res.Remainder)
	assert.Equal(t, 0.0, res.FilledQty)

	res = PriceExecution(&MergedBook{}, 1.25, SideBuy)
	assert.Equal(t, 1.25, res.Remainder)
}

func TestPriceExecutionSkipsEmptyLevels(t *testing.T) {
	book := &MergedBook{Asks: []PriceLevel{
		{Price: 100, Size: 0, Venue: VenueCoinbase},
		{Price: 101, Size: 1, Venue: VenueGemini},
	}}
	res := PriceExecution(book, 1, SideBuy)
	assert.Len(t, res.Fills, 1)
	assert.Equal(t, 101.0, res.TotalValue)
}

func TestPriceExecutionNeverTakesMoreThanLevel(t *testing.T) {
	book := scenarioBook()
	for _, qty := range []float64{0.3, 1, 2.2, 4.5, 7} {
		res := PriceExecution(book, qty, SideBuy)
		sum := 0.0
		for _, f := range res.Fills {
			assert.LessOrEqual(t, f.Size, levelSize(book.Asks, f.Price))
			sum += f.Size
		}
		assert.InDelta(t, qty, sum+res.Remainder, 1e-9)
	}
}

func TestSortBestFirstStableOnTies(t *testing.T) {
	in := []PriceLevel{
		{Price: 100, Size: 1, Venue: VenueCoinbase},
		{Price: 99, Size: 1, Venue: VenueCoinbase},
		{Price: 100, Size: 2, Venue: VenueGemini},
	}
	out := SortBestFirst(in, SideSell)
	assert.Equal(t, VenueCoinbase, out[0].Venue)
	assert.Equal(t, VenueGemini, out[1].Venue)
	assert.Equal(t, 99.0, out[2].Price)
	assert.Equal(t, 100.0, in[0].Price)
	assert.Equal(t, 99.0, in[1].Price)
}

func levelSize(levels []PriceLevel, price float64) float64 {
	for _, l := range levels {
		if l.Price == price {
			return l.Size
		}
	}
	return 0
}
