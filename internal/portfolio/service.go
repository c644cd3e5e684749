package portfolio

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/example/portfolio-dashboard/internal/domain"
	"github.com/example/portfolio-dashboard/internal/models"
)

type Service struct{ DB *pgxpool.Pool }

func New(db *pgxpool.Pool) *Service { return &Service{DB: db} }

func (s *Service) GetPortfolio(ctx context.Context, userID string) (models.Portfolio, error) {
	var p models.Portfolio
	err := s.DB.QueryRow(ctx,
		`SELECT userid, user_name, bank_bal FROM portfolios WHERE userid=$1`, userID).
		Scan(&p.UserID, &p.UserName, &p.BankBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Portfolio{}, ErrNotFound
	}
	if err != nil {
		return models.Portfolio{}, err
	}

	rows, err := s.DB.Query(ctx,
		`SELECT symbol, shares FROM holdings WHERE userid=$1 AND shares > 0 ORDER BY symbol`, userID)
	if err != nil {
		return models.Portfolio{}, err
	}
	defer rows.Close()

	p.Holdings = make(map[string]float64)
	for rows.Next() {
		var sym string
		var shares float64
		if err := rows.Scan(&sym, &shares); err != nil {
			return models.Portfolio{}, err
		}
		p.Holdings[sym] = shares
	}
	return p, rows.Err()
}

func (s *Service) ListPortfolios(ctx context.Context) ([]models.Portfolio, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT userid, user_name, bank_bal FROM portfolios ORDER BY userid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Portfolio, 0)
	index := make(map[string]int)
	for rows.Next() {
		var p models.Portfolio
		if err := rows.Scan(&p.UserID, &p.UserName, &p.BankBalance); err != nil {
			return nil, err
		}
		p.Holdings = make(map[string]float64)
		index[p.UserID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.DB.Query(ctx,
		`SELECT userid, symbol, shares FROM holdings WHERE shares > 0 ORDER BY userid, symbol`)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var uid, sym string
		var shares float64
		if err := hrows.Scan(&uid, &sym, &shares); err != nil {
			return nil, err
		}
		if i, ok := index[uid]; ok {
			out[i].Holdings[sym] = shares
		}
	}
	return out, hrows.Err()
}

func (s *Service) GetTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, userid, stock_symbol, stock_name, type, shares, price_per_share, date, initiator
		FROM transactions WHERE userid=$1 ORDER BY date DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.StockSymbol, &t.StockName, &t.Type,
			&t.Shares, &t.PricePerShare, &t.Date, &t.Initiator); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// The holdings upsert and the balance update are both gated on a row coming
// back from ins: the consumer is at-least-once, and a redelivered event id
// must not move shares or money a second time.
const applyTransactionSQL = `
	WITH ins AS (
	  INSERT INTO transactions (id, userid, stock_symbol, stock_name, type, shares, price_per_share, date, initiator)
	  VALUES ($1, $2, $3, $4, $5::transaction_type, $6, $7, $8, $9::initiator)
	  ON CONFLICT (id) DO NOTHING
	  RETURNING 1
	), upd AS (
	  INSERT INTO holdings (userid, symbol, shares)
	  SELECT $2, $3, greatest($10, 0) FROM ins
	  ON CONFLICT (userid, symbol)
	  DO UPDATE SET shares = greatest(holdings.shares + $10, 0),
	                updated_at = now()
	  RETURNING 1
	)
	UPDATE portfolios SET bank_bal = greatest(bank_bal + $11, 0)
	WHERE userid = $2 AND EXISTS (SELECT 1 FROM ins);
`

// transactionDeltas converts one transaction into its signed effects: the
// share delta on the holding and the cash delta on the bank balance. Sells
// reduce the share count and credit the proceeds; buys do the opposite.
func transactionDeltas(t models.Transaction) (shares, cash float64, err error) {
	typ, ok := domain.ParseTransactionType(t.Type)
	if !ok {
		return 0, 0, errors.New("portfolio: unknown transaction type " + t.Type)
	}
	cost := decimal.NewFromFloat(t.Shares).Mul(decimal.NewFromFloat(t.PricePerShare))
	if typ == domain.TypeSell {
		return -t.Shares, cost.InexactFloat64(), nil
	}
	return t.Shares, cost.Neg().InexactFloat64(), nil
}

// ApplyTransaction records one buy or sell and folds it into holdings and the
// bank balance in a single statement. Replays of an already-recorded id are
// no-ops.
func (s *Service) ApplyTransaction(ctx context.Context, t models.Transaction) error {
	sharesDelta, cashDelta, err := transactionDeltas(t)
	if err != nil {
		return err
	}
	typ, _ := domain.ParseTransactionType(t.Type)

	_, err = s.DB.Exec(ctx, applyTransactionSQL,
		t.ID, t.UserID, t.StockSymbol, t.StockName, typ.String(),
		t.Shares, t.PricePerShare, t.Date, t.Initiator,
		sharesDelta, cashDelta)
	return err
}
