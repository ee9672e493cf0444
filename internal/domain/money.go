package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every Money value is stored
// at. Arithmetic results and parsed input are rounded to this scale with
// banker's rounding (round-half-to-even) at the boundary.
const MoneyScale = 4

// Money is a fixed-scale decimal amount tagged with an ISO-4217 currency
// code. It is a value type: every operation returns a new Money rather than
// mutating the receiver.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney builds a Money value, rounding amount to MoneyScale with banker's
// rounding.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount.RoundBank(MoneyScale), currency: strings.ToUpper(currency)}
}

// ZeroMoney returns the well-defined zero value for a currency.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// ParseMoney parses a textual amount into a Money value. Supported forms:
//
//	1234.56, -1234.56          (dot decimal)
//	1234,56, 1.234,56          (European decimal comma, optional thousands dot)
//	R$ 1234,56, -1234.56 USD   (leading/trailing currency sigil stripped)
//
// Surrounding whitespace is stripped. Invalid input returns ErrParseAmount.
func ParseMoney(text string, currency string) (Money, error) {
	d, err := parseAmountText(text)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d, currency), nil
}

func parseAmountText(text string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(text)
	raw = stripSigils(raw)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, ErrParseAmount
	}

	// European format: thousands dot + decimal comma, e.g. "1.234,56".
	if strings.Contains(raw, ",") && strings.Contains(raw, ".") && strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	} else if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		// Plain decimal comma: "1234,56".
		raw = strings.Replace(raw, ",", ".", 1)
	}
	raw = strings.ReplaceAll(raw, " ", "")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ErrParseAmount
	}
	return d, nil
}

// stripSigils removes a leading or trailing currency sigil (e.g. "R$ ") and
// any bare alphabetic currency code ("USD") surrounding the numeric text.
func stripSigils(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	kept := fields[:0:0]
	for _, f := range fields {
		if isNumericField(f) {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		// No field looked numeric (e.g. sigil glued to number); fall back
		// to stripping known symbols only.
		s = strings.ReplaceAll(s, "R$", "")
		return s
	}
	return strings.Join(kept, "")
}

func isNumericField(f string) bool {
	hasDigit := false
	for _, r := range f {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '.' || r == ',' || r == '-' || r == '+':
			// allowed
		default:
			return false
		}
	}
	return hasDigit
}

// Currency returns the ISO-4217 code.
func (m Money) Currency() string { return m.currency }

// Decimal returns the underlying decimal value at MoneyScale.
func (m Money) Decimal() decimal.Decimal { return m.amount }

// IsZero ignores the sign of zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Neg returns the additive inverse.
func (m Money) Neg() Money { return NewMoney(m.amount.Neg(), m.currency) }

// Abs returns the absolute value.
func (m Money) Abs() Money { return NewMoney(m.amount.Abs(), m.currency) }

// Add returns m+other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.sameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return NewMoney(m.amount.Add(other.amount), m.currency), nil
}

// Sub returns m-other. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if !m.sameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return NewMoney(m.amount.Sub(other.amount), m.currency), nil
}

// Cmp compares m to other; currencies must match.
func (m Money) Cmp(other Money) (int, error) {
	if !m.sameCurrency(other) {
		return 0, ErrCurrencyMismatch
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) sameCurrency(other Money) bool {
	return m.currency == other.currency
}

// StringFixed renders the amount at the given scale with trailing zeros, for
// contexts (e.g. Beancount export) that need an exact width.
func (m Money) StringFixed(scale int32) string {
	return m.amount.StringFixed(scale)
}

// String renders the amount with its currency, e.g. "1234.5600 USD".
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale) + " " + m.currency
}
