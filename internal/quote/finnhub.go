package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/models"
)

// Finnhub fetches live quotes from the Finnhub REST API. One outbound call
// per invocation; no retry, no caching, no backoff. A rate-limit response is
// treated the same as "no data", just logged distinctly.
type Finnhub struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewFinnhub(apiKey string, logger *zap.Logger) *Finnhub {
	return &Finnhub{
		BaseURL: "https://finnhub.io/api/v1",
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Logger:  logger,
	}
}

// finnhubQuote mirrors the provider's field names: c = current price,
// pc = previous close.
type finnhubQuote struct {
	Current   float64 `json:"c"`
	PrevClose float64 `json:"pc"`
}

func (f *Finnhub) Quote(ctx context.Context, symbol string) (models.Quote, bool) {
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s", f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(f.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		f.Logger.Warn("quote request build failed", zap.String("symbol", symbol), zap.Error(err))
		return models.Quote{}, false
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		f.Logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return models.Quote{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.Logger.Warn("quote provider rate limited", zap.String("symbol", symbol))
		return models.Quote{}, false
	}
	if resp.StatusCode != http.StatusOK {
		f.Logger.Warn("quote provider non-200",
			zap.String("symbol", symbol), zap.Int("status", resp.StatusCode))
		return models.Quote{}, false
	}

	var q finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		f.Logger.Warn("quote decode failed", zap.String("symbol", symbol), zap.Error(err))
		return models.Quote{}, false
	}
	// Finnhub returns all-zero fields for unknown symbols.
	if q.Current <= 0 {
		f.Logger.Warn("quote provider had no data", zap.String("symbol", symbol))
		return models.Quote{}, false
	}

	return models.Quote{Symbol: symbol, Price: q.Current, PrevClose: q.PrevClose}, true
}
