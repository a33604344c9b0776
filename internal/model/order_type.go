package model

import "fmt"

// OrderType is the venue's order type set, one byte on the wire.
type OrderType uint8

const (
	OrderTypeLimit OrderType = iota
	OrderTypeImmediateOrCancel
	OrderTypePostOnly
	OrderTypeGlobal
	OrderTypeReverse
)

func (o OrderType) String() string {
	switch o {
	case OrderTypeLimit:
		return "Limit"
	case OrderTypeImmediateOrCancel:
		return "ImmediateOrCancel"
	case OrderTypePostOnly:
		return "PostOnly"
	case OrderTypeGlobal:
		return "Global"
	case OrderTypeReverse:
		return "Reverse"
	default:
		return fmt.Sprintf("OrderType(%d)", uint8(o))
	}
}
