package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/models"
)

// FetchError describes a failed portfolio backend request: transport failure,
// non-2xx status, undecodable body, or a body that failed schema validation.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("portfolio fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("portfolio fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches portfolios from a remote backend over HTTP. Responses are
// validated at this boundary so malformed upstream payloads never reach the
// valuation engine.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Logger   *zap.Logger
	validate *validator.Validate
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
		validate: validator.New(),
	}
}

func (c *Client) GetPortfolio(ctx context.Context, userID string) (models.Portfolio, error) {
	u := c.BaseURL + "/api/portfolio/" + url.PathEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Portfolio{}, &FetchError{URL: u, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.Portfolio{}, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Portfolio{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Portfolio{}, &FetchError{URL: u, Status: resp.StatusCode}
	}

	var p models.Portfolio
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.Portfolio{}, &FetchError{URL: u, Err: err}
	}
	if err := c.validate.Struct(p); err != nil {
		c.Logger.Warn("portfolio response failed validation",
			zap.String("userid", userID), zap.Error(err))
		return models.Portfolio{}, &FetchError{URL: u, Err: err}
	}
	if p.Holdings == nil {
		p.Holdings = make(map[string]float64)
	}
	return p, nil
}
