// Package address validates destination addresses on the supported
// UTXO chains and produces the output scripts that pay to them.
package address

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	btcchaincfg "github.com/btcsuite/btcd/chaincfg"
	btctxscript "github.com/btcsuite/btcd/txscript"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
	bchtxscript "github.com/gcash/bchd/txscript"
	"github.com/gcash/bchutil"
	ltcchaincfg "github.com/ltcsuite/ltcd/chaincfg"
	"github.com/ltcsuite/ltcd/ltcutil"
	ltctxscript "github.com/ltcsuite/ltcd/txscript"

	"github.com/sailwallet/txengine/internal/asset"
)

// DogeMainNetParams carries the Dogecoin mainnet address version
// bytes; btcd ships no Dogecoin chain config of its own.
var DogeMainNetParams = btcchaincfg.Params{
	Name:             "mainnet",
	Net:              0xc0c0c0c0,
	PubKeyHashAddrID: 0x1E, // D prefix
	ScriptHashAddrID: 0x16, // 9 or A prefix
}

// Address is a validated destination on a UTXO chain together with
// the scriptPubKey paying to it.
type Address struct {
	str    string
	script []byte
}

func (a Address) String() string { return a.str }

// PayToAddrScript returns the output script paying to the address.
func (a Address) PayToAddrScript() []byte {
	return append([]byte(nil), a.script...)
}

// NewFromString parses addr against the chain's mainnet encoding
// rules using the chain's native library.
func NewFromString(chain asset.Chain, addr string) (Address, error) {
	script, err := payToScript(chain, addr)
	if err != nil {
		return Address{}, err
	}
	return Address{str: addr, script: script}, nil
}

func payToScript(chain asset.Chain, addr string) ([]byte, error) {
	switch chain {
	case asset.Bitcoin:
		decoded, err := btcutil.DecodeAddress(addr, &btcchaincfg.MainNetParams)
		if err != nil {
			return nil, fmt.Errorf("invalid %s address: %w", chain, err)
		}
		return btctxscript.PayToAddrScript(decoded)
	case asset.Dogecoin:
		decoded, err := btcutil.DecodeAddress(addr, &DogeMainNetParams)
		if err != nil {
			return nil, fmt.Errorf("invalid %s address: %w", chain, err)
		}
		return btctxscript.PayToAddrScript(decoded)
	case asset.Litecoin:
		decoded, err := ltcutil.DecodeAddress(addr, &ltcchaincfg.MainNetParams)
		if err != nil {
			return nil, fmt.Errorf("invalid %s address: %w", chain, err)
		}
		return ltctxscript.PayToAddrScript(decoded)
	case asset.BitcoinCash:
		decoded, err := bchutil.DecodeAddress(addr, &bchchaincfg.MainNetParams)
		if err != nil {
			return nil, fmt.Errorf("invalid %s address: %w", chain, err)
		}
		return bchtxscript.PayToAddrScript(decoded)
	default:
		return nil, fmt.Errorf("unsupported UTXO chain: %s", chain)
	}
}
