package money

import (
	"fmt"
	"math/big"
	"strings"
)

// Currency identifies the unit a Value is denominated in. Crypto
// currencies carry the decimals of their chain's minor unit (satoshi,
// wei); fiat currencies carry the usual two.
type Currency struct {
	Code     string
	Decimals int
	Fiat     bool
}

func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code && c.Fiat == other.Fiat
}

func (c Currency) String() string { return c.Code }

var (
	USD = Currency{Code: "USD", Decimals: 2, Fiat: true}
	EUR = Currency{Code: "EUR", Decimals: 2, Fiat: true}
	GBP = Currency{Code: "GBP", Decimals: 2, Fiat: true}
)

// FiatFromCode resolves a supported fiat currency by its ISO code.
func FiatFromCode(code string) (Currency, error) {
	for _, c := range []Currency{USD, EUR, GBP} {
		if strings.EqualFold(code, c.Code) {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("unsupported fiat currency: %s", code)
}

// Value is an amount of minor units tagged with its currency. The zero
// Value has no currency and must not be used in arithmetic.
type Value struct {
	amount   *big.Int
	currency Currency
}

func NewValue(amount *big.Int, currency Currency) Value {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return Value{amount: new(big.Int).Set(amount), currency: currency}
}

func NewValueFromUint64(amount uint64, currency Currency) Value {
	return Value{amount: new(big.Int).SetUint64(amount), currency: currency}
}

func Zero(currency Currency) Value {
	return Value{amount: big.NewInt(0), currency: currency}
}

// Amount returns a copy of the minor-unit amount.
func (v Value) Amount() *big.Int {
	if v.amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v.amount)
}

func (v Value) Currency() Currency { return v.currency }

// Uint64 returns the amount as uint64, or an error if it does not fit
// or is negative.
func (v Value) Uint64() (uint64, error) {
	a := v.Amount()
	if a.Sign() < 0 || !a.IsUint64() {
		return 0, fmt.Errorf("amount %s does not fit uint64", a.String())
	}
	return a.Uint64(), nil
}

func (v Value) IsZero() bool     { return v.amount == nil || v.amount.Sign() == 0 }
func (v Value) IsNegative() bool { return v.amount != nil && v.amount.Sign() < 0 }
func (v Value) IsPositive() bool { return v.amount != nil && v.amount.Sign() > 0 }

// SameCurrency reports whether both values share a currency; arithmetic
// across currencies is a programming error.
func (v Value) SameCurrency(other Value) bool {
	return v.currency.Equal(other.currency)
}

func (v Value) mustMatch(other Value) {
	if !v.SameCurrency(other) {
		panic(fmt.Sprintf("currency mismatch: %s vs %s", v.currency.Code, other.currency.Code))
	}
}

func (v Value) Add(other Value) Value {
	v.mustMatch(other)
	return Value{amount: new(big.Int).Add(v.Amount(), other.Amount()), currency: v.currency}
}

func (v Value) Sub(other Value) Value {
	v.mustMatch(other)
	return Value{amount: new(big.Int).Sub(v.Amount(), other.Amount()), currency: v.currency}
}

// Cmp returns -1, 0 or 1 comparing v to other in the same currency.
func (v Value) Cmp(other Value) int {
	v.mustMatch(other)
	return v.Amount().Cmp(other.Amount())
}

// ClampToZero returns v, or zero of the same currency when v is negative.
func (v Value) ClampToZero() Value {
	if v.IsNegative() {
		return Zero(v.currency)
	}
	return v
}

func (v Value) String() string {
	return fmt.Sprintf("%s %s", FromBaseUnits(v.Amount(), v.currency.Decimals), v.currency.Code)
}

// ToBaseUnits converts a human-readable decimal string to minor units,
// e.g. "0.5" BTC (8 decimals) -> 50000000.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	negative := false
	if strings.HasPrefix(amount, "-") {
		negative = true
		amount = amount[1:]
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		combined = "0"
	}

	result, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	if negative {
		result.Neg(result)
	}
	return result, nil
}

// FromBaseUnits converts minor units to a human-readable decimal string,
// e.g. 50000000 with 8 decimals -> "0.5".
func FromBaseUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	str := amount.String()
	negative := false
	if strings.HasPrefix(str, "-") {
		negative = true
		str = str[1:]
	}

	if len(str) <= decimals {
		str = strings.Repeat("0", decimals-len(str)+1) + str
	}

	insertPos := len(str) - decimals
	whole := str[:insertPos]
	frac := strings.TrimRight(str[insertPos:], "0")

	result := whole
	if frac != "" {
		result = whole + "." + frac
	}
	if negative {
		result = "-" + result
	}
	return result
}
