// README: Common money value object and rounding rule used across modules.
package types

import (
	"math"
	"strconv"
	"strings"
)

// Money is an amount in major currency units (e.g. 42.50 EUR).
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// maxExactCents bounds amounts whose cents fit an int64 exactly.
const maxExactCents = 1e15

// RoundAmount rounds half away from zero to two decimals. It works on the
// shortest decimal form of v, so 1.005 rounds to 1.01 even though its binary
// value is slightly below. Values already carrying binary error from
// arithmetic (2.675 computed as 2.6749999999999998) round down.
func RoundAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= maxExactCents {
		return math.Round(v*100) / 100
	}

	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) <= 2 {
		return v
	}

	cents, err := strconv.ParseInt(whole+frac[:2], 10, 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	if frac[2] >= '5' {
		cents++
	}
	if cents == 0 {
		return 0
	}
	return math.Copysign(float64(cents)/100, v)
}
