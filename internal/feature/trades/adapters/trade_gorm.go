package adapters

import (
	"context"
	"fmt"
	"time"

	"portfolio_backend/internal/feature/trades/domain/entity"
	"portfolio_backend/internal/feature/trades/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tradeGorm struct {
	db *gorm.DB
}

var _ usecase.TradeRepository = (*tradeGorm)(nil)

func NewTradeRepository(db *gorm.DB) *tradeGorm {
	return &tradeGorm{db: db}
}

// TradeModel はテーブル "trades" の行です。
type TradeModel struct {
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;primaryKey"`
	Owner         string     `gorm:"column:owner;size:254;not null;index"`
	Ticker        string     `gorm:"column:ticker;size:32;not null"`
	DollarAmount  float64    `gorm:"column:dollar_amount;not null"`
	RealisedPnL   *float64   `gorm:"column:realised_pnl"`
	UnrealisedPnL *float64   `gorm:"column:unrealised_pnl"`
	OpenPrice     *float64   `gorm:"column:open_price"`
	ClosePrice    *float64   `gorm:"column:close_price"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	ClosedAt      *time.Time `gorm:"column:closed_at"`
	IsActive      bool       `gorm:"column:is_active;not null"`
	OrderType     string     `gorm:"column:order_type;size:8;not null"`
}

func (TradeModel) TableName() string {
	return "trades"
}

func toModel(e entity.Trade) TradeModel {
	return TradeModel{
		OrderID:       e.OrderID,
		Owner:         e.Owner,
		Ticker:        e.Ticker,
		DollarAmount:  e.DollarAmount,
		RealisedPnL:   e.RealisedPnL,
		UnrealisedPnL: e.UnrealisedPnL,
		OpenPrice:     e.OpenPrice,
		ClosePrice:    e.ClosePrice,
		CreatedAt:     e.CreatedAt,
		ClosedAt:      e.ClosedAt,
		IsActive:      e.IsActive,
		OrderType:     string(e.OrderType),
	}
}

func (m TradeModel) toEntity() entity.Trade {
	return entity.Trade{
		OrderID:       m.OrderID,
		Owner:         m.Owner,
		Ticker:        m.Ticker,
		DollarAmount:  m.DollarAmount,
		RealisedPnL:   m.RealisedPnL,
		UnrealisedPnL: m.UnrealisedPnL,
		OpenPrice:     m.OpenPrice,
		ClosePrice:    m.ClosePrice,
		CreatedAt:     m.CreatedAt,
		ClosedAt:      m.ClosedAt,
		IsActive:      m.IsActive,
		OrderType:     entity.OrderType(m.OrderType),
	}
}

// columns is the whitelist of fields a predicate may reference.
var columns = map[usecase.Field]string{
	usecase.FieldIsActive:      "is_active",
	usecase.FieldTicker:        "ticker",
	usecase.FieldDollarAmount:  "dollar_amount",
	usecase.FieldUnrealisedPnL: "unrealised_pnl",
	usecase.FieldRealisedPnL:   "realised_pnl",
	usecase.FieldOpenPrice:     "open_price",
	usecase.FieldClosePrice:    "close_price",
	usecase.FieldCreatedAt:     "created_at",
	usecase.FieldClosedAt:      "closed_at",
	usecase.FieldOrderType:     "order_type",
}

var operators = map[usecase.Op]string{
	usecase.OpEq:  "=",
	usecase.OpGte: ">=",
	usecase.OpLte: "<=",
}

// applyPredicate は述語を WHERE 句に変換します。
func applyPredicate(q *gorm.DB, p usecase.Predicate) (*gorm.DB, error) {
	q = q.Where("owner = ?", p.Owner)
	for _, c := range p.Constraints {
		col, ok := columns[c.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported field %q", c.Field)
		}
		op, ok := operators[c.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		v := c.Value
		if ot, ok := v.(entity.OrderType); ok {
			v = string(ot)
		}
		q = q.Where(col+" "+op+" ?", v)
	}
	return q, nil
}

func (r *tradeGorm) Query(ctx context.Context, p usecase.Predicate) ([]entity.Trade, error) {
	q, err := applyPredicate(r.db.WithContext(ctx).Model(&TradeModel{}), p)
	if err != nil {
		return nil, err
	}

	var rows []TradeModel
	if err := q.Order("created_at ASC").Order("order_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Trade, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// Insert は主にシードとテストで使います。
func (r *tradeGorm) Insert(ctx context.Context, trades ...entity.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	ms := make([]TradeModel, 0, len(trades))
	for _, t := range trades {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("trade %s: %w", t.OrderID, err)
		}
		if t.OrderID == uuid.Nil {
			t.OrderID = uuid.New()
		}
		ms = append(ms, toModel(t))
	}
	return r.db.WithContext(ctx).Create(&ms).Error
}
