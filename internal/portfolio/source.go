package portfolio

import (
	"context"
	"errors"

	"github.com/example/portfolio-dashboard/internal/models"
)

// ErrNotFound reports an unknown user id.
var ErrNotFound = errors.New("portfolio: user not found")

// Source resolves one user's portfolio. Implemented by the pgx-backed Service
// and by the HTTP Client for deployments with a remote portfolio backend.
type Source interface {
	GetPortfolio(ctx context.Context, userID string) (models.Portfolio, error)
}

// Store is the full read/write surface the HTTP API and the transaction
// consumer need.
type Store interface {
	Source
	ListPortfolios(ctx context.Context) ([]models.Portfolio, error)
	GetTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	ApplyTransaction(ctx context.Context, t models.Transaction) error
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
