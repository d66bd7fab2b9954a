package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-aggregator-go/market"
)

func TestCoinbaseRESTClientFetchBook(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/BTC-USD/book" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("level") != "2" {
			t.Errorf("unexpected level %q", r.URL.Query().Get("level"))
		}
		io.WriteString(w, `{"bids":[["99","1",1]],"asks":[["100","1",1],["101","2",1]],"sequence":7}`)
	}))
	defer ts.Close()

	clk := newFakeClock()
	cli := &CoinbaseRESTClient{
		BaseURL:    ts.URL,
		Product:    "BTC-USD",
		HTTPClient: ts.Client(),
		Clock:      clk,
	}
	snap, err := cli.FetchBook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, market.VenueCoinbase, snap.Venue)
	assert.Len(t, snap.Asks, 2)
	assert.Equal(t, clk.Now(), snap.FetchedAt)
	assert.Equal(t, int64(7), snap.Sequence)
}

func TestGeminiRESTClientFetchBook(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/book/BTCUSD" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit_bids") != "25" || r.URL.Query().Get("limit_asks") != "25" {
			t.Errorf("unexpected limits %s", r.URL.RawQuery)
		}
		io.WriteString(w, `{"bids":[{"price":"99.5","amount":"2"}],"asks":[{"price":"100.5","amount":"1.5"}]}`)
	}))
	defer ts.Close()

	cli := &GeminiRESTClient{BaseURL: ts.URL, Symbol: "BTCUSD", Limit: 25, HTTPClient: ts.Client()}
	snap, err := cli.FetchBook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, market.VenueGemini, snap.Venue)
	assert.Equal(t, 100.5, snap.Asks[0].Price)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestRESTClientProtocolError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"message":"slow down"}`)
	}))
	defer ts.Close()

	cli := &GeminiRESTClient{BaseURL: ts.URL, Symbol: "BTCUSD", HTTPClient: ts.Client()}
	_, err := cli.FetchBook(context.Background())
	var protoErr *ProtocolError
	require.True(t, errors.As(err, &protoErr), "expected ProtocolError, got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, protoErr.StatusCode)
	assert.Contains(t, protoErr.Body, "slow down")
	assert.Equal(t, OutcomeProtocolError, ClassifyError(err))
}

func TestRESTClientTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	httpCli := ts.Client()
	httpCli.Timeout = 50 * time.Millisecond
	cli := &CoinbaseRESTClient{BaseURL: ts.URL, Product: "BTC-USD", HTTPClient: httpCli}
	start := time.Now()
	_, err := cli.FetchBook(context.Background())
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "expected TransportError, got %v", err)
	assert.Equal(t, OutcomeTransportError, ClassifyError(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRESTClientSchemaError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"NotFound"}`)
	}))
	defer ts.Close()

	cli := &CoinbaseRESTClient{BaseURL: ts.URL, Product: "BTC-USD", HTTPClient: ts.Client()}
	snap, err := cli.FetchBook(context.Background())
	assert.Nil(t, snap)
	assert.Equal(t, OutcomeSchemaError, ClassifyError(err))
}

func TestRESTClientWithoutHTTPClient(t *testing.T) {
	_, err := (&CoinbaseRESTClient{}).FetchBook(context.Background())
	assert.ErrorIs(t, err, ErrHTTPClientNotSet)
	_, err = (&GeminiRESTClient{}).FetchBook(context.Background())
	assert.ErrorIs(t, err, ErrHTTPClientNotSet)
	assert.Equal(t, OutcomeUnknownError, ClassifyError(err))
}

func TestClassifyCanceled(t *testing.T) {
	err := &TransportError{Venue: market.VenueGemini, Op: "get book", Err: context.Canceled}
	assert.Equal(t, OutcomeCanceled, ClassifyError(err))
	assert.Equal(t, OutcomeOK, ClassifyError(nil))
}

func TestNewHTTPClientTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewDefaultHTTPClient().Timeout)
	assert.Equal(t, 3*time.Second, NewHTTPClient(3*time.Second).Timeout)
	assert.Equal(t, DefaultTimeout, NewHTTPClient(0).Timeout)
}
