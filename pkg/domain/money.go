package domain

import "fmt"

// Cents is a price in integer minor units. Every price in the system uses
// this one representation; there is no floating-point money anywhere.
type Cents int64

// String renders a Cents value as a decimal amount, e.g. 1299 -> "12.99".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Mul scales a price by an item quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}
