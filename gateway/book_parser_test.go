package gateway

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-aggregator-go/market"
)

func TestParseCoinbaseBook(t *testing.T) {
	raw := []byte(`{
		"bids":[["99.5","1.2",3],["99.0","2",1]],
		"asks":[["100","1",2],["101","2",1]],
		"sequence":12345,
		"auction_mode":false
	}`)
	ts := time.Unix(1700000000, 0)
	snap, err := ParseCoinbaseBook(raw, ts)
	require.NoError(t, err)

	assert.Equal(t, market.VenueCoinbase, snap.Venue)
	assert.Equal(t, int64(12345), snap.Sequence)
	assert.Equal(t, ts, snap.FetchedAt)
	assert.Equal(t, []market.PriceLevel{
		{Price: 99.5, Size: 1.2, Venue: market.VenueCoinbase},
		{Price: 99, Size: 2, Venue: market.VenueCoinbase},
	}, snap.Bids)
	assert.Equal(t, 101.0, snap.Asks[1].Price)
}

func TestParseGeminiBook(t *testing.T) {
	raw := []byte(`{
		"bids":[{"price":"99.8","amount":"0.5","timestamp":"1700000000"}],
		"asks":[{"price":"100.5","amount":"1.5","timestamp":"1700000000"}]
	}`)
	snap, err := ParseGeminiBook(raw, time.Now())
	require.NoError(t, err)

	assert.Equal(t, market.VenueGemini, snap.Venue)
	assert.Equal(t, []market.PriceLevel{{Price: 100.5, Size: 1.5, Venue: market.VenueGemini}}, snap.Asks)
	assert.Equal(t, 0.5, snap.Bids[0].Size)
}

func TestParseAcceptsNumericAndEmptySides(t *testing.T) {
	snap, err := ParseCoinbaseBook([]byte(`{"bids":[[100.25, 3]],"asks":[]}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100.25, snap.Bids[0].Price)
	assert.Empty(t, snap.Asks)

	snap, err = ParseGeminiBook([]byte(`{"bids":[],"asks":[{"price":101,"amount":0.1}]}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.1, snap.Asks[0].Size)
}

func TestParseRejectsMalformedPayloads(t *testing.T) {
	testCases := []struct {
		name  string
		parse func([]byte, time.Time) (*market.VenueSnapshot, error)
		raw   string
		field string
	}{
		{name: "coinbase not json", parse: ParseCoinbaseBook, raw: `<html>`, field: "body"},
		{name: "coinbase missing bids", parse: ParseCoinbaseBook, raw: `{"asks":[]}`, field: "bids"},
		{name: "coinbase null asks", parse: ParseCoinbaseBook, raw: `{"bids":[],"asks":null}`, field: "asks"},
		{name: "coinbase keyed levels", parse: ParseCoinbaseBook, raw: `{"bids":[{"price":"1","amount":"1"}],"asks":[]}`, field: "bids"},
		{name: "coinbase short level", parse: ParseCoinbaseBook, raw: `{"bids":[["1"]],"asks":[]}`, field: "bids[0]"},
		{name: "coinbase bad price", parse: ParseCoinbaseBook, raw: `{"bids":[["1","1"]],"asks":[["abc","1"]]}`, field: "asks[0].price"},
		{name: "coinbase negative size", parse: ParseCoinbaseBook, raw: `{"bids":[["1","-1"]],"asks":[]}`, field: "bids[0].size"},
		{name: "gemini missing asks", parse: ParseGeminiBook, raw: `{"bids":[]}`, field: "asks"},
		{name: "gemini positional levels", parse: ParseGeminiBook, raw: `{"bids":[["1","1"]],"asks":[]}`, field: "bids"},
		{name: "gemini missing amount", parse: ParseGeminiBook, raw: `{"bids":[{"price":"1"}],"asks":[]}`, field: "bids[0].size"},
		{name: "gemini nan price", parse: ParseGeminiBook, raw: `{"bids":[],"asks":[{"price":"NaN","amount":"1"}]}`, field: "asks[0].price"},
		{name: "gemini bool amount", parse: ParseGeminiBook, raw: `{"bids":[],"asks":[{"price":"1","amount":true}]}`, field: "asks[0].size"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := tc.parse([]byte(tc.raw), time.Now())
			assert.Nil(t, snap)
			var schemaErr *SchemaError
			if assert.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err) {
				assert.Equal(t, tc.field, schemaErr.Field)
			}
			assert.Equal(t, OutcomeSchemaError, ClassifyError(err))
		})
	}
}
