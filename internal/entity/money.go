package entity

import "github.com/shopspring/decimal"

// Money is a decimal amount; stored as Decimal128 and rendered as a string.
type Money = decimal.Decimal
