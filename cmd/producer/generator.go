package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/example/portfolio-dashboard/internal/domain"
	"github.com/example/portfolio-dashboard/internal/models"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

var (
	users = []string{"FYJ57", "KXJ83", "CX734"}

	symbols   = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "NFLX"}
	stockName = map[string]string{
		"AAPL": "Apple Inc.", "MSFT": "Microsoft Corp.", "GOOGL": "Alphabet Inc.",
		"AMZN": "Amazon.com Inc.", "TSLA": "Tesla Inc.", "NVDA": "NVIDIA Corp.",
		"NFLX": "Netflix Inc.",
	}
	stockBase = map[string]float64{
		"AAPL": 190, "MSFT": 420, "GOOGL": 145, "AMZN": 180,
		"TSLA": 220, "NVDA": 800, "NFLX": 550,
	}
)

func round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

func pick[T any](xs []T) T { return xs[rng.Intn(len(xs))] }

// genTransaction simulates one agent fill: a small buy or sell at a price
// jittered around each symbol's base.
func genTransaction() models.Transaction {
	sym := pick(symbols)
	base := stockBase[sym]
	px := round(base*(1+(rng.Float64()-0.5)*0.03), 2) // ±1.5%
	shares := float64(rng.Intn(20) + 1)

	typ := domain.TypeBuy
	if rng.Intn(2) == 0 {
		typ = domain.TypeSell
	}

	return models.Transaction{
		ID:            uuid.NewString(),
		UserID:        pick(users),
		StockSymbol:   sym,
		StockName:     stockName[sym],
		Type:          typ.String(),
		Shares:        shares,
		PricePerShare: px,
		Date:          time.Now().UTC(),
		Initiator:     domain.InitiatorAgent.String(),
	}
}
