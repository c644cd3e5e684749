package domain

import "strings"

// TransactionType is the closed set of trade directions.
type TransactionType string

const (
	TypeBuy  TransactionType = "buy"
	TypeSell TransactionType = "sell"
)

func (t TransactionType) String() string { return string(t) }
func (t TransactionType) Valid() bool {
	return t == TypeBuy || t == TypeSell
}

func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return TypeBuy, true
	case "sell":
		return TypeSell, true
	default:
		return "", false
	}
}

// Initiator identifies who placed a transaction: the account holder or the
// automated trading agent.
type Initiator string

const (
	InitiatorUser  Initiator = "user"
	InitiatorAgent Initiator = "agent"
)

func (i Initiator) String() string { return string(i) }
func (i Initiator) Valid() bool {
	return i == InitiatorUser || i == InitiatorAgent
}

func ParseInitiator(s string) (Initiator, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return InitiatorUser, true
	case "agent":
		return InitiatorAgent, true
	default:
		return "", false
	}
}
