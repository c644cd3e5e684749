package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTransactionType(t *testing.T) {
	typ, ok := ParseTransactionType(" Buy ")
	assert.True(t, ok)
	assert.Equal(t, TypeBuy, typ)

	typ, ok = ParseTransactionType("SELL")
	assert.True(t, ok)
	assert.Equal(t, TypeSell, typ)

	_, ok = ParseTransactionType("short")
	assert.False(t, ok)
	_, ok = ParseTransactionType("")
	assert.False(t, ok)
}

func TestParseInitiator(t *testing.T) {
	i, ok := ParseInitiator("agent")
	assert.True(t, ok)
	assert.Equal(t, InitiatorAgent, i)

	i, ok = ParseInitiator("User")
	assert.True(t, ok)
	assert.Equal(t, InitiatorUser, i)

	_, ok = ParseInitiator("bot")
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	assert.True(t, TypeBuy.Valid())
	assert.False(t, TransactionType("hold").Valid())
	assert.True(t, InitiatorAgent.Valid())
	assert.False(t, Initiator("").Valid())
}
