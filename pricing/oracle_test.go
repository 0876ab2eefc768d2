package pricing

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/entities"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger.WithField("worker", "test")
}

func TestGetQuoteLiveFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("vs_currencies"); got != "usd" {
			t.Errorf("vs_currencies: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"stellar":{"usd":0.31}}`)
	}))
	defer srv.Close()

	oracle := NewOracle(srv.URL, testLogger())
	xlm, _ := entities.AssetByCode("XLM")

	quote := oracle.GetQuote(xlm)
	if quote.Default {
		t.Fatalf("live feed quote flagged as default")
	}
	if !quote.USDPrice.Equal(decimal.RequireFromString("0.31")) {
		t.Errorf("price: got %v, want 0.31", quote.USDPrice)
	}

	// second call inside the TTL must serve the cache
	cached := oracle.GetQuote(xlm)
	if !cached.FetchedAt.Equal(quote.FetchedAt) {
		t.Errorf("expected cached quote, got a re-fetch")
	}
}

func TestGetQuoteFeedDownUsesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	oracle := NewOracle(srv.URL, testLogger())
	eth, _ := entities.AssetByCode("ETH")

	quote := oracle.GetQuote(eth)
	if !quote.Default {
		t.Fatalf("broken feed should yield a default quote")
	}
	if !quote.USDPrice.Equal(DefaultPrices["ETH"]) {
		t.Errorf("price: got %v, want default %v", quote.USDPrice, DefaultPrices["ETH"])
	}

	// repeated calls keep returning the same default
	again := oracle.GetQuote(eth)
	if !again.Default || !again.USDPrice.Equal(quote.USDPrice) {
		t.Errorf("default quote not stable across calls: %v vs %v", again.USDPrice, quote.USDPrice)
	}
}

func TestGetQuoteMalformedPayloadUsesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"stellar":{"usd":0}}`)
	}))
	defer srv.Close()

	oracle := NewOracle(srv.URL, testLogger())
	xlm, _ := entities.AssetByCode("XLM")

	quote := oracle.GetQuote(xlm)
	if !quote.Default {
		t.Errorf("zero price should yield a default quote")
	}
}

func TestGetQuoteSlowFeedFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(FetchTimeout + time.Second)
		fmt.Fprint(w, `{"stellar":{"usd":0.31}}`)
	}))
	defer srv.Close()

	oracle := NewOracle(srv.URL, testLogger())
	xlm, _ := entities.AssetByCode("XLM")

	start := time.Now()
	quote := oracle.GetQuote(xlm)
	if elapsed := time.Since(start); elapsed > FetchTimeout+2*time.Second {
		t.Errorf("fetch was not bounded by the timeout, took %v", elapsed)
	}
	if !quote.Default {
		t.Errorf("timed-out fetch should yield a default quote")
	}
}

func TestGetQuoteAssetWithoutFeed(t *testing.T) {
	oracle := NewOracle("http://127.0.0.1:1", testLogger())
	usdc, _ := entities.AssetByCode("USDC")

	quote := oracle.GetQuote(usdc)
	if !quote.Default || !quote.USDPrice.Equal(decimal.NewFromInt(1)) {
		t.Errorf("USDC should always come from the default table, got %v (default=%v)", quote.USDPrice, quote.Default)
	}
}

func TestRefreshCountsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("ids")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"%s":{"usd":1.5}}`, id)
	}))
	defer srv.Close()

	oracle := NewOracle(srv.URL, testLogger())
	defaults := oracle.Refresh()
	// USDC and GIV have no live feed, everything else resolves
	if defaults != 2 {
		t.Errorf("defaults: got %v, want 2", defaults)
	}
	if len(oracle.Quotes()) != len(entities.SupportedAssets) {
		t.Errorf("expected a cached quote per supported asset")
	}
}
