package usecase

import (
	"fmt"
	"strings"
	"time"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

// Field names a filterable trade column.
type Field string

const (
	FieldIsActive      Field = "is_active"
	FieldTicker        Field = "ticker"
	FieldDollarAmount  Field = "dollar_amount"
	FieldUnrealisedPnL Field = "unrealised_pnl"
	FieldRealisedPnL   Field = "realised_pnl"
	FieldOpenPrice     Field = "open_price"
	FieldClosePrice    Field = "close_price"
	FieldCreatedAt     Field = "created_at"
	FieldClosedAt      Field = "closed_at"
	FieldOrderType     Field = "order_type"
)

// Op is a comparison operator. Range operators are inclusive.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Constraint compares one field against a value.
// Value is bool, string, float64, time.Time or entity.OrderType depending on Field.
type Constraint struct {
	Field Field
	Op    Op
	Value any
}

// Predicate は所有者に束縛された制約の論理積です。
type Predicate struct {
	Owner       string
	Constraints []Constraint
}

// BuildPredicate はフィルタの指定済みフィールドごとに1つの制約を追加します。
// 未指定（nil）のフィールドは何も追加しません。
func BuildPredicate(owner string, f entity.TradeFilter) Predicate {
	p := Predicate{Owner: owner}

	if f.IsActive != nil {
		p.add(FieldIsActive, OpEq, *f.IsActive)
	}
	if f.Ticker != nil {
		p.add(FieldTicker, OpEq, *f.Ticker)
	}

	p.rangeFloat(FieldDollarAmount, f.MinDollarAmount, f.MaxDollarAmount)
	p.rangeFloat(FieldUnrealisedPnL, f.MinUnrealisedPnL, f.MaxUnrealisedPnL)
	p.rangeFloat(FieldRealisedPnL, f.MinRealisedPnL, f.MaxRealisedPnL)
	p.rangeFloat(FieldOpenPrice, f.MinOpenPrice, f.MaxOpenPrice)
	p.rangeFloat(FieldClosePrice, f.MinClosePrice, f.MaxClosePrice)

	p.rangeTime(FieldCreatedAt, f.OpenStart, f.OpenEnd)
	p.rangeTime(FieldClosedAt, f.CloseStart, f.CloseEnd)

	if f.OrderType != nil {
		p.add(FieldOrderType, OpEq, *f.OrderType)
	}
	return p
}

func (p *Predicate) add(field Field, op Op, v any) {
	p.Constraints = append(p.Constraints, Constraint{Field: field, Op: op, Value: v})
}

func (p *Predicate) rangeFloat(field Field, lo, hi *float64) {
	if lo != nil {
		p.add(field, OpGte, *lo)
	}
	if hi != nil {
		p.add(field, OpLte, *hi)
	}
}

func (p *Predicate) rangeTime(field Field, lo, hi *time.Time) {
	if lo != nil {
		p.add(field, OpGte, lo.UTC())
	}
	if hi != nil {
		p.add(field, OpLte, hi.UTC())
	}
}

// Matches evaluates the predicate in memory. A nil trade value never
// satisfies a constraint, the same way SQL NULL compares.
func (p Predicate) Matches(t entity.Trade) bool {
	if t.Owner != p.Owner {
		return false
	}
	for _, c := range p.Constraints {
		if !c.matches(t) {
			return false
		}
	}
	return true
}

func (c Constraint) matches(t entity.Trade) bool {
	switch c.Field {
	case FieldIsActive:
		v, ok := c.Value.(bool)
		return ok && c.Op == OpEq && t.IsActive == v
	case FieldTicker:
		v, ok := c.Value.(string)
		return ok && c.Op == OpEq && t.Ticker == v
	case FieldOrderType:
		v, ok := c.Value.(entity.OrderType)
		return ok && c.Op == OpEq && t.OrderType == v
	case FieldDollarAmount:
		return compareFloat(&t.DollarAmount, c)
	case FieldUnrealisedPnL:
		return compareFloat(t.UnrealisedPnL, c)
	case FieldRealisedPnL:
		return compareFloat(t.RealisedPnL, c)
	case FieldOpenPrice:
		return compareFloat(t.OpenPrice, c)
	case FieldClosePrice:
		return compareFloat(t.ClosePrice, c)
	case FieldCreatedAt:
		return compareTime(&t.CreatedAt, c)
	case FieldClosedAt:
		return compareTime(t.ClosedAt, c)
	}
	return false
}

func compareFloat(got *float64, c Constraint) bool {
	want, ok := c.Value.(float64)
	if got == nil || !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return *got == want
	case OpGte:
		return *got >= want
	case OpLte:
		return *got <= want
	}
	return false
}

func compareTime(got *time.Time, c Constraint) bool {
	want, ok := c.Value.(time.Time)
	if got == nil || !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return got.Equal(want)
	case OpGte:
		return !got.Before(want)
	case OpLte:
		return !got.After(want)
	}
	return false
}

// Key is a stable textual form of the predicate, used as a cache key.
// Constraint order is fixed by BuildPredicate, so equal filters give equal keys.
func (p Predicate) Key() string {
	var b strings.Builder
	b.WriteString(p.Owner)
	for _, c := range p.Constraints {
		b.WriteByte('|')
		b.WriteString(string(c.Field))
		b.WriteString(string(c.Op))
		switch v := c.Value.(type) {
		case time.Time:
			b.WriteString(v.UTC().Format(time.RFC3339Nano))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return b.String()
}
