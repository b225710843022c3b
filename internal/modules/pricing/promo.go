// README: Single promo code adjustment, applied to the fully-loaded fare.
package pricing

// ApplyPromo returns amount after the promo discount, never below zero.
// A nil promo leaves the amount unchanged.
func ApplyPromo(amount float64, promo *PromoCode) float64 {
	if promo == nil {
		return amount
	}

	var discounted float64
	switch promo.Type {
	case PromoPercentage:
		discounted = amount * (1 - promo.Value/100)
	case PromoFixed:
		discounted = amount - promo.Value
	default:
		return amount
	}

	if discounted < 0 {
		return 0
	}
	return discounted
}
