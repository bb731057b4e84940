package utils

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money отображает сумму с двумя знаками после запятой как JSON число
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
