package janitor

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Unit describes how to display the base units of a mint.
type Unit struct {
	Decimals uint8
	// Symbol is either an ISO currency code (for fiat pegged mints) or a free
	// ticker. It can be empty.
	Symbol string
}

// Amount returns raw base units as an Amount in u.
func (u Unit) Amount(raw uint64) Amount { return Amount{Raw: raw, Unit: u} }

// Amount is a quantity of base units of some mint.
type Amount struct {
	Raw  uint64
	Unit Unit
}

// Decimal returns the amount in human units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromUint64(a.Raw).Shift(-int32(a.Unit.Decimals))
}

// String formats the amount in human units. Currencies known to go-money are
// formatted with their own template, anything else is the exact decimal
// followed by the symbol.
func (a Amount) String() string {
	if cur := money.GetCurrency(a.Unit.Symbol); cur != nil {
		units := a.Decimal().Shift(int32(cur.Fraction)).Round(0)
		return cur.Formatter().Format(units.IntPart())
	}
	return strings.TrimSpace(a.Decimal().String() + " " + a.Unit.Symbol)
}
