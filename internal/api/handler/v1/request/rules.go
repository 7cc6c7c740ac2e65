package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var errNegative = errors.New("must not be negative")

// nonNegative rejects negative decimal.Decimal and *decimal.Decimal values.
// The built-in Min rule cannot be used because decimal implements
// driver.Valuer and is compared as a string.
var nonNegative = validation.By(func(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return nil
	}

	if d.IsNegative() {
		return errNegative
	}

	return nil
})

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}

	return *d
}
