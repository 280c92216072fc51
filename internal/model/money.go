package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor units (cents). JSON carries major units.
type Money int64

func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", data)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid amount %q", data)
	}
	*m = Money(math.Round(f * 100))
	return nil
}

// Times multiplies a unit price by a quantity
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// MinMoney returns the smaller amount
func MinMoney(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

var _ json.Marshaler = Money(0)
