package decimalx

import "github.com/shopspring/decimal"

// FractionalChange (cur-prev)/prev, prev 为零时返回零
func FractionalChange(prev, cur decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev)
}
