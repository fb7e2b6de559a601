package model

import (
	"fmt"
)

// Money is an amount in minor currency units (cents).
type Money int64

// Half returns half of m rounded half-up to the cent.
func (m Money) Half() Money {
	return (m + 1) / 2
}

// Times returns m multiplied by n.
func (m Money) Times(n int) Money {
	return m * Money(n)
}

func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)

	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
