package engine

// PositionSize computes the quantity to open when committing
// positionPct percent of cash at price. The trade amount is clamped to
// the available cash so a misconfigured percentage can never overdraw.
// Quantity may be fractional (crypto/forex).
func PositionSize(cash, positionPct, price float64) (qty, amount float64) {
	if cash <= 0 || price <= 0 || positionPct <= 0 {
		return 0, 0
	}
	amount = cash * positionPct / 100
	if amount > cash {
		amount = cash
	}
	return amount / price, amount
}
