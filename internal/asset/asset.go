package asset

import (
	"fmt"
	"strings"

	"github.com/sailwallet/txengine/internal/money"
)

// Chain identifies a supported blockchain.
type Chain string

const (
	Bitcoin     Chain = "Bitcoin"
	BitcoinCash Chain = "BitcoinCash"
	Litecoin    Chain = "Litecoin"
	Dogecoin    Chain = "Dogecoin"
	Ethereum    Chain = "Ethereum"
)

func (c Chain) String() string { return string(c) }

// IsUTXO reports whether the chain uses the unspent-output model.
func (c Chain) IsUTXO() bool {
	switch c {
	case Bitcoin, BitcoinCash, Litecoin, Dogecoin:
		return true
	default:
		return false
	}
}

// IsEvm reports whether the chain uses the Ethereum account model.
func (c Chain) IsEvm() bool {
	return c == Ethereum
}

// FromString parses a chain name case-insensitively.
func FromString(s string) (Chain, error) {
	for _, c := range []Chain{Bitcoin, BitcoinCash, Litecoin, Dogecoin, Ethereum} {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown chain: %s", s)
}

// NativeDecimals maps chain to native token decimals.
var NativeDecimals = map[Chain]int{
	Bitcoin:     8,
	BitcoinCash: 8,
	Litecoin:    8,
	Dogecoin:    8,
	Ethereum:    18,
}

var nativeTickers = map[Chain]string{
	Bitcoin:     "BTC",
	BitcoinCash: "BCH",
	Litecoin:    "LTC",
	Dogecoin:    "DOGE",
	Ethereum:    "ETH",
}

// NativeCurrency returns the money.Currency of a chain's native coin.
func NativeCurrency(c Chain) (money.Currency, error) {
	ticker, ok := nativeTickers[c]
	if !ok {
		return money.Currency{}, fmt.Errorf("unknown chain: %s", c)
	}
	return money.Currency{Code: ticker, Decimals: NativeDecimals[c]}, nil
}

// MustNativeCurrency is NativeCurrency for statically known chains.
func MustNativeCurrency(c Chain) money.Currency {
	cur, err := NativeCurrency(c)
	if err != nil {
		panic(err)
	}
	return cur
}
