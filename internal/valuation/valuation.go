// Package valuation computes portfolio snapshots from holdings and a price
// map. It performs no I/O and holds no state.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/portfolio-dashboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Valuate computes per-holding market values and the aggregate net worth.
// It is a pure function of its three inputs.
//
// Absence policy: a symbol held but missing from prices stays in the snapshot
// with a market value of zero. Zero-fill keeps the holding visible after a
// transient quote failure and never fails the whole valuation, at the cost of
// understating net worth until the next cycle.
//
// Day change is measured against the provider's previous close carried on the
// quote; when that is absent or non-positive the change is reported as zero.
func Valuate(holdings map[string]float64, prices map[string]models.Quote, bankBalance float64) models.PortfolioSnapshot {
	vals := make([]models.HoldingValuation, 0, len(holdings))
	net := decimal.NewFromFloat(bankBalance)

	for sym, shares := range holdings {
		hv := models.HoldingValuation{Symbol: sym, Shares: shares}
		if q, ok := prices[sym]; ok {
			price := decimal.NewFromFloat(q.Price)
			market := decimal.NewFromFloat(shares).Mul(price)
			hv.Price = q.Price
			hv.MarketValue = market.InexactFloat64()
			if q.PrevClose > 0 {
				prev := decimal.NewFromFloat(q.PrevClose)
				hv.ChangePercent = price.Sub(prev).Div(prev).Mul(hundred).InexactFloat64()
			}
			net = net.Add(market)
		}
		vals = append(vals, hv)
	}

	sort.Slice(vals, func(i, j int) bool { return vals[i].Symbol < vals[j].Symbol })

	return models.PortfolioSnapshot{
		BankBalance: bankBalance,
		NetWorth:    net.InexactFloat64(),
		Holdings:    vals,
	}
}
