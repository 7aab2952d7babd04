package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

func TestFromTrades(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, FromTrades(nil))
	assert.Empty(t, FromTrades(nil))

	id := uuid.MustParse("8f0c6a8e-3c1e-4f55-9b43-1f6d1d1f0a01")
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	res := FromTrades([]entity.Trade{{
		OrderID:      id,
		Owner:        "p@example.com",
		Ticker:       "AAPL",
		DollarAmount: 100,
		CreatedAt:    created,
		IsActive:     true,
		OrderType:    entity.OrderShort,
	}})
	require.Len(t, res, 1)

	b, err := json.Marshal(res[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order_id": "8f0c6a8e-3c1e-4f55-9b43-1f6d1d1f0a01",
		"ticker": "AAPL",
		"dollar_amount": 100,
		"realised_pnl": null,
		"unrealised_pnl": null,
		"open_price": null,
		"close_price": null,
		"created_at": "2024-01-02T03:04:05Z",
		"closed_at": null,
		"is_active": true,
		"order_type": "SHORT"
	}`, string(b))
	// owner is implied by the principal and never echoed back
	assert.NotContains(t, string(b), "p@example.com")
}
