package pricing

import (
	"sync"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/entities"
)

const (
	DefaultFeedURL = "https://api.coingecko.com/api/v3/simple/price"
	FetchTimeout   = 3 * time.Second
	QuoteTTL       = 60 * time.Second
)

// feedIDs maps asset codes to the price feed's currency identifiers.
var feedIDs = map[string]string{
	"XLM":   "stellar",
	"ETH":   "ethereum",
	"MATIC": "matic-network",
}

// DefaultPrices is the static fallback table used whenever the live feed
// is unreachable, slow, or returns garbage. Price unavailability must never
// block a donation.
var DefaultPrices = map[string]decimal.Decimal{
	"XLM":   decimal.RequireFromString("0.12"),
	"ETH":   decimal.RequireFromString("2000"),
	"MATIC": decimal.RequireFromString("0.8"),
	"USDC":  decimal.RequireFromString("1"),
	"GIV":   decimal.RequireFromString("1"),
}

type feedEntry struct {
	USD float64 `json:"usd"`
}

// Oracle fetches best-effort spot prices with a bounded timeout and a
// per-session cache. GetQuote never fails: a broken feed degrades to the
// default table.
type Oracle struct {
	http    *resty.Client
	feedURL string

	mu     sync.Mutex
	quotes map[string]entities.PriceQuote

	logger *logrus.Entry
}

func NewOracle(feedURL string, logger *logrus.Entry) *Oracle {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Oracle{
		http:    resty.New().SetTimeout(FetchTimeout),
		feedURL: feedURL,
		quotes:  map[string]entities.PriceQuote{},
		logger:  logger,
	}
}

// GetQuote returns a cached quote when fresh, otherwise re-fetches. Any
// fetch failure yields the configured default quote for the asset.
func (o *Oracle) GetQuote(asset entities.Asset) entities.PriceQuote {
	o.mu.Lock()
	cached, ok := o.quotes[asset.Code]
	o.mu.Unlock()
	if ok && !cached.Default && cached.Fresh(QuoteTTL) {
		return cached
	}

	quote := o.fetch(asset)
	o.mu.Lock()
	o.quotes[asset.Code] = quote
	o.mu.Unlock()
	return quote
}

// Refresh re-fetches quotes for every supported asset and returns the
// number of assets currently served from the default table.
func (o *Oracle) Refresh() int {
	defaults := 0
	for _, asset := range entities.SupportedAssets {
		quote := o.fetch(asset)
		o.mu.Lock()
		o.quotes[asset.Code] = quote
		o.mu.Unlock()
		if quote.Default {
			defaults++
		}
	}
	return defaults
}

func (o *Oracle) fetch(asset entities.Asset) entities.PriceQuote {
	id, ok := feedIDs[asset.Code]
	if !ok {
		// Assets without a live feed (platform tokens, stables) always use
		// the default table.
		return o.defaultQuote(asset)
	}

	var payload map[string]feedEntry
	resp, err := o.http.R().
		SetQueryParam("ids", id).
		SetQueryParam("vs_currencies", "usd").
		SetResult(&payload).
		Get(o.feedURL)
	if err != nil {
		o.logger.Warnf("Price fetch for %v failed, using default - with err: %v", asset.Code, err)
		return o.defaultQuote(asset)
	}
	if resp.StatusCode() != 200 {
		o.logger.Warnf("Price fetch for %v returned status %v, using default", asset.Code, resp.StatusCode())
		return o.defaultQuote(asset)
	}

	entry, ok := payload[id]
	if !ok || entry.USD <= 0 {
		o.logger.Warnf("Price feed returned no usable price for %v, using default", asset.Code)
		return o.defaultQuote(asset)
	}

	return entities.PriceQuote{
		Asset:     asset,
		USDPrice:  decimal.NewFromFloat(entry.USD),
		FetchedAt: time.Now(),
	}
}

func (o *Oracle) defaultQuote(asset entities.Asset) entities.PriceQuote {
	price, ok := DefaultPrices[asset.Code]
	if !ok {
		price = decimal.NewFromInt(1)
	}
	return entities.PriceQuote{
		Asset:     asset,
		USDPrice:  price,
		FetchedAt: time.Now(),
		Default:   true,
	}
}

// Quotes returns a snapshot of all currently cached quotes keyed by asset
// code.
func (o *Oracle) Quotes() map[string]entities.PriceQuote {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]entities.PriceQuote, len(o.quotes))
	for code, q := range o.quotes {
		out[code] = q
	}
	return out
}
