package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

const sample = `[
  {"order_id": "8f0c6a8e-3c1e-4f55-9b43-1f6d1d1f0a01", "owner": "p@example.com", "ticker": "BTC-USDT",
   "dollar_amount": 100, "realised_pnl": 10, "open_price": 40000, "close_price": 44000,
   "created_at": "2024-01-01T00:00:00Z", "closed_at": "2024-01-05T00:00:00Z", "is_active": false, "order_type": "long"},
  {"owner": "p@example.com", "ticker": "ETH-USDT", "dollar_amount": 50, "unrealised_pnl": -2,
   "created_at": "2024-02-01T00:00:00Z", "is_active": true, "order_type": "SHORT"}
]`

func TestReadTrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	trades, err := readTrades(path)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, uuid.MustParse("8f0c6a8e-3c1e-4f55-9b43-1f6d1d1f0a01"), trades[0].OrderID)
	assert.Equal(t, entity.OrderLong, trades[0].OrderType)
	assert.Equal(t, uuid.Nil, trades[1].OrderID, "left for the repository to assign")
	assert.Equal(t, entity.OrderShort, trades[1].OrderType)
}

func TestToTrades_Invalid(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad uuid", `{"order_id": "nope", "owner": "p@example.com", "is_active": true, "order_type": "long"}`},
		{"missing owner", `{"is_active": true, "order_type": "long"}`},
		{"closed without close fields", `{"owner": "p@example.com", "is_active": false, "order_type": "long"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row seedTrade
			require.NoError(t, json.Unmarshal([]byte(tt.row), &row))
			_, err := toTrades([]seedTrade{row})
			assert.Error(t, err)
		})
	}
}
