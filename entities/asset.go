package entities

import (
	"math/big"

	"github.com/shopspring/decimal"
)

type Chain string

const (
	ChainStellar  Chain = "stellar"
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
)

func (c Chain) IsEVM() bool {
	return c == ChainEthereum || c == ChainPolygon
}

// Asset is an immutable descriptor of a donatable asset. The table below is
// static; entries are never mutated at runtime.
type Asset struct {
	Code           string
	DisplayName    string
	Chain          Chain
	NativeDecimals int32
}

var SupportedAssets = []Asset{
	{Code: "XLM", DisplayName: "Stellar Lumens", Chain: ChainStellar, NativeDecimals: 7},
	{Code: "ETH", DisplayName: "Ethereum", Chain: ChainEthereum, NativeDecimals: 18},
	{Code: "MATIC", DisplayName: "Polygon", Chain: ChainPolygon, NativeDecimals: 18},
	{Code: "USDC", DisplayName: "USD Coin", Chain: ChainStellar, NativeDecimals: 7},
	{Code: "GIV", DisplayName: "Giveth Token", Chain: ChainStellar, NativeDecimals: 7},
}

func AssetByCode(code string) (Asset, bool) {
	for _, a := range SupportedAssets {
		if a.Code == code {
			return a, true
		}
	}
	return Asset{}, false
}

// ToBaseUnits converts a native amount to the chain's smallest unit,
// truncating any fraction below one base unit.
func (a Asset) ToBaseUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(a.NativeDecimals).Floor().BigInt()
}

// FromBaseUnits converts an amount in the chain's smallest unit back to a
// native amount.
func (a Asset) FromBaseUnits(units *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(units, -a.NativeDecimals)
}

// XlmToStroops converts an XLM amount to stroops (1 XLM = 1e7 stroops).
func XlmToStroops(xlm decimal.Decimal) int64 {
	return xlm.Shift(7).Floor().IntPart()
}

// StroopsToXlm converts stroops back to an XLM amount.
func StroopsToXlm(stroops int64) decimal.Decimal {
	return decimal.New(stroops, -7)
}
