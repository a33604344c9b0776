package decode

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// The venue stores quote-atoms-per-base-atom prices as a u128 fixed-point
// integer scaled by 10^18.
const priceDecimals = 18

// ConvertU128 widens a little-endian u128 (lo, hi) price into a float64.
func ConvertU128(lo, hi uint64) float64 {
	n := new(big.Int).SetUint64(hi)
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(lo))
	return decimal.NewFromBigInt(n, -priceDecimals).InexactFloat64()
}
