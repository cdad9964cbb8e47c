package dto

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money renders a decimal as a string with exactly two fractional digits.
type Money decimal.Decimal

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money(d)
}

func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(2)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts quoted or bare decimal literals.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
