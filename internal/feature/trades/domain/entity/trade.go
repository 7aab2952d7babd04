// Package entity はトレードフィーチャーのドメインエンティティを定義します。
package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderType はポジションの方向です。
type OrderType string

const (
	OrderLong  OrderType = "LONG"
	OrderShort OrderType = "SHORT"
)

// ParseOrderType accepts either case.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderLong:
		return OrderLong, nil
	case OrderShort:
		return OrderShort, nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}

// UnmarshalText lets JSON request bodies carry "long" or "LONG".
func (o *OrderType) UnmarshalText(b []byte) error {
	v, err := ParseOrderType(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Trade は1つの注文（ポジション）を表します。
type Trade struct {
	OrderID       uuid.UUID
	Owner         string
	Ticker        string
	DollarAmount  float64
	RealisedPnL   *float64
	UnrealisedPnL *float64
	OpenPrice     *float64
	ClosePrice    *float64
	CreatedAt     time.Time
	ClosedAt      *time.Time
	IsActive      bool
	OrderType     OrderType
}

var errClosedFields = errors.New("closed_at and close_price must be set exactly when the trade is closed")

// Validate checks that close fields are present iff the trade is closed.
func (t *Trade) Validate() error {
	closed := t.ClosedAt != nil && t.ClosePrice != nil
	open := t.ClosedAt == nil && t.ClosePrice == nil
	if t.IsActive && !open || !t.IsActive && !closed {
		return errClosedFields
	}
	if t.OrderType != OrderLong && t.OrderType != OrderShort {
		return fmt.Errorf("unknown order type %q", t.OrderType)
	}
	return nil
}
