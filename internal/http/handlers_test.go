package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/cache"
	"github.com/example/portfolio-dashboard/internal/models"
	"github.com/example/portfolio-dashboard/internal/portfolio"
	"github.com/example/portfolio-dashboard/internal/refresh"
)

type fakeStore struct {
	portfolios   map[string]models.Portfolio
	transactions map[string][]models.Transaction
}

func (f *fakeStore) GetPortfolio(_ context.Context, userID string) (models.Portfolio, error) {
	p, ok := f.portfolios[userID]
	if !ok {
		return models.Portfolio{}, portfolio.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListPortfolios(context.Context) ([]models.Portfolio, error) {
	out := make([]models.Portfolio, 0, len(f.portfolios))
	for _, p := range f.portfolios {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) GetTransactions(_ context.Context, userID string, limit int) ([]models.Transaction, error) {
	txs := f.transactions[userID]
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (f *fakeStore) ApplyTransaction(context.Context, models.Transaction) error { return nil }

type fakeQuotes map[string]models.Quote

func (f fakeQuotes) Quote(_ context.Context, symbol string) (models.Quote, bool) {
	q, ok := f[symbol]
	return q, ok
}

type fakeHistory map[string][]models.PricePoint

func (f fakeHistory) History(_ context.Context, symbol string) ([]models.PricePoint, error) {
	return f[symbol], nil
}

func newTestServer(t *testing.T, store portfolio.Store, quotes fakeQuotes, history fakeHistory) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	respCache, err := cache.New(1<<20, time.Minute)
	require.NoError(t, err)

	sched := refresh.New(store, quotes, time.Hour, zap.NewNop())
	t.Cleanup(sched.Stop)

	return NewServer(store, quotes, history, sched, respCache, zap.NewNop(), "*")
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.R.ServeHTTP(w, req)
	return w
}

func seededStore() *fakeStore {
	return &fakeStore{
		portfolios: map[string]models.Portfolio{
			"FYJ57": {UserID: "FYJ57", UserName: "Alice Johnson", BankBalance: 1000,
				Holdings: map[string]float64{"AAPL": 10, "MSFT": 5}},
		},
		transactions: map[string][]models.Transaction{
			"FYJ57": {
				{ID: "t1", UserID: "FYJ57", StockSymbol: "AAPL", StockName: "Apple Inc.",
					Type: "buy", Shares: 10, PricePerShare: 150,
					Date: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), Initiator: "user"},
				{ID: "t2", UserID: "FYJ57", StockSymbol: "MSFT", StockName: "Microsoft Corp.",
					Type: "buy", Shares: 5, PricePerShare: 280,
					Date: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC), Initiator: "agent"},
			},
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})
	w := do(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPortfolio(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/portfolio/FYJ57")
	require.Equal(t, http.StatusOK, w.Code)

	var p models.Portfolio
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "FYJ57", p.UserID)
	assert.Equal(t, float64(1000), p.BankBalance)
	assert.Len(t, p.Holdings, 2)
}

func TestGetPortfolioNotFound(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/portfolio/ZZZZZ")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var e apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, "not_found", e.Code)
}

func TestGetTransactions(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/transactions/FYJ57")
	require.Equal(t, http.StatusOK, w.Code)

	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, "t1", txs[0].ID)
	assert.Equal(t, "agent", txs[1].Initiator)
}

func TestGetTransactionsLimit(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/transactions/FYJ57?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	assert.Len(t, txs, 1)
}

func TestGetTransactionsBadLimitFallsBack(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/transactions/FYJ57?limit=bogus")
	require.Equal(t, http.StatusOK, w.Code)

	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	assert.Len(t, txs, 2)
}

func TestGetTransactionsUnknownUserEmpty(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/transactions/NOONE")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetQuote(t *testing.T) {
	quotes := fakeQuotes{"AAPL": {Symbol: "AAPL", Price: 187.33, PrevClose: 185}}
	s := newTestServer(t, seededStore(), quotes, fakeHistory{})

	w := do(s, http.MethodGet, "/api/quote/aapl")
	require.Equal(t, http.StatusOK, w.Code)

	var q models.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 187.33, q.Price)
}

func TestGetQuoteUnavailable(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/quote/AAPL")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetQuoteInvalidSymbol(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/quote/NOT%20A%20SYMBOL")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory(t *testing.T) {
	history := fakeHistory{"AAPL": {
		{Date: "2025-07-31", Close: 180.5},
		{Date: "2025-08-29", Close: 187.3},
	}}
	s := newTestServer(t, seededStore(), fakeQuotes{}, history)

	w := do(s, http.MethodGet, "/api/history/AAPL")
	require.Equal(t, http.StatusOK, w.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Len(t, resp.Points, 2)
}

func TestGetHistoryEmptyNotCached(t *testing.T) {
	// Simulates a rate-limited provider recovering: the empty series must
	// not be pinned in the cache.
	history := fakeHistory{}
	s := newTestServer(t, seededStore(), fakeQuotes{}, history)

	w := do(s, http.MethodGet, "/api/history/AAPL")
	require.Equal(t, http.StatusOK, w.Code)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Points)

	history["AAPL"] = []models.PricePoint{{Date: "2025-08-29", Close: 187.3}}

	w = do(s, http.MethodGet, "/api/history/AAPL")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Points, 1)
}

func TestSessionLifecycle(t *testing.T) {
	quotes := fakeQuotes{
		"AAPL": {Symbol: "AAPL", Price: 180},
		"MSFT": {Symbol: "MSFT", Price: 300},
	}
	s := newTestServer(t, seededStore(), quotes, fakeHistory{})

	// Idle: no snapshot yet.
	w := do(s, http.MethodGet, "/api/snapshot")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(s, http.MethodPost, "/api/session/FYJ57")
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return do(s, http.MethodGet, "/api/snapshot").Code == http.StatusOK
	}, time.Second, 5*time.Millisecond)

	w = do(s, http.MethodGet, "/api/snapshot")
	var snap models.PortfolioSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "FYJ57", snap.UserID)
	assert.Equal(t, float64(4300), snap.NetWorth)

	// Teardown returns the scheduler to idle.
	w = do(s, http.MethodDelete, "/api/session")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(s, http.MethodGet, "/api/snapshot")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListPortfolios(t *testing.T) {
	s := newTestServer(t, seededStore(), fakeQuotes{}, fakeHistory{})

	w := do(s, http.MethodGet, "/api/portfolios")
	require.Equal(t, http.StatusOK, w.Code)

	var ps []models.Portfolio
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ps))
	assert.Len(t, ps, 1)
}
