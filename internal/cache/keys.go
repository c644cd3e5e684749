package cache

import (
	"fmt"
	"strings"
)

// TransactionsKey identifies one per-user transactions page.
func TransactionsKey(userID string, limit int) string {
	return fmt.Sprintf("txs:%s:%d", userID, limit)
}

// HistoryKey identifies the monthly close series for one symbol.
func HistoryKey(symbol string) string {
	return "hist:" + strings.ToUpper(strings.TrimSpace(symbol))
}
