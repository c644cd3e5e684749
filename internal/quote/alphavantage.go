package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/models"
)

const defaultHistoryPoints = 12

// AlphaVantage fetches monthly close series from the Alpha Vantage API.
// Payload-level failures (rate limit note, error message, missing series)
// fail closed to an empty series; only transport failures surface as errors.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Logger  *zap.Logger

	// Points is the number of most-recent months to keep; zero means the
	// default of 12.
	Points int
}

func NewAlphaVantage(apiKey string, logger *zap.Logger) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: "https://www.alphavantage.co",
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Logger:  logger,
	}
}

// alphaVantagePayload covers the three shapes the provider actually returns:
// a series, a rate-limit "Note", or an "Error Message".
type alphaVantagePayload struct {
	Note     string                       `json:"Note"`
	ErrorMsg string                       `json:"Error Message"`
	Series   map[string]map[string]string `json:"Monthly Time Series"`
}

func (a *AlphaVantage) History(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	u := fmt.Sprintf("%s/query?function=TIME_SERIES_MONTHLY&symbol=%s&apikey=%s",
		a.BaseURL, url.QueryEscape(symbol), url.QueryEscape(a.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history fetch %s: status %d", symbol, resp.StatusCode)
	}

	var payload alphaVantagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.Logger.Warn("history decode failed", zap.String("symbol", symbol), zap.Error(err))
		return []models.PricePoint{}, nil
	}
	if payload.Note != "" {
		a.Logger.Warn("history provider rate limited",
			zap.String("symbol", symbol), zap.String("note", payload.Note))
		return []models.PricePoint{}, nil
	}
	if payload.ErrorMsg != "" || payload.Series == nil {
		a.Logger.Warn("history provider error",
			zap.String("symbol", symbol), zap.String("message", payload.ErrorMsg))
		return []models.PricePoint{}, nil
	}

	points := make([]models.PricePoint, 0, len(payload.Series))
	for date, values := range payload.Series {
		closePx, err := strconv.ParseFloat(values["4. close"], 64)
		if err != nil {
			a.Logger.Warn("history close unparseable",
				zap.String("symbol", symbol), zap.String("date", date))
			continue
		}
		points = append(points, models.PricePoint{Date: date, Close: closePx})
	}
	// Dates are YYYY-MM-DD, so lexical order is chronological order.
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	n := a.Points
	if n <= 0 {
		n = defaultHistoryPoints
	}
	if len(points) > n {
		points = points[len(points)-n:]
	}
	return points, nil
}
