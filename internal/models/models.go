package models

import "time"

// Portfolio is the JSON shape served by /api/portfolio/{userid} and expected
// from a remote portfolio backend. Holdings maps ticker symbol to share count.
type Portfolio struct {
	UserID      string             `json:"userid" validate:"required"`
	UserName    string             `json:"user_name"`
	BankBalance float64            `json:"bank_bal" validate:"gte=0"`
	Holdings    map[string]float64 `json:"portfolio" validate:"dive,gte=0"`
}

type Transaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userid"`
	StockSymbol   string    `json:"stock_symbol"`
	StockName     string    `json:"stock_name"`
	Type          string    `json:"type"` // "buy" | "sell"
	Shares        float64   `json:"shares"`
	PricePerShare float64   `json:"price_per_share"`
	Date          time.Time `json:"date"`
	Initiator     string    `json:"initiator"` // "user" | "agent"
}

// Quote is the current market price for one symbol. PrevClose is the
// provider's previous closing price; zero when the provider had none.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
}

// PricePoint is one entry of a chartable close series. Date is YYYY-MM-DD.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type HoldingValuation struct {
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	Price         float64 `json:"price"`
	MarketValue   float64 `json:"market_value"`
	ChangePercent float64 `json:"change_percent"`
}

// PortfolioSnapshot is one full valuation of a user's portfolio. Snapshots
// are replaced wholesale every refresh cycle, never merged.
type PortfolioSnapshot struct {
	UserID      string             `json:"userid"`
	UserName    string             `json:"user_name"`
	BankBalance float64            `json:"bank_bal"`
	NetWorth    float64            `json:"net_worth"`
	Holdings    []HoldingValuation `json:"holdings"`
	AsOf        time.Time          `json:"as_of"`
}
