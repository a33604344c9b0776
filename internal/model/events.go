package model

// Event is a decoded venue log event ready for publication.
type Event interface {
	EventType() string
}

// Envelope is the wire shape broadcast to subscribers.
type Envelope struct {
	Type string `json:"type"`
	Data Event  `json:"data"`
}

// FillEvent is a decoded fill log. Atom quantities and sequence numbers are
// string-encoded because subscribers cannot represent u64 exactly.
type FillEvent struct {
	Market              string  `json:"market"`
	Maker               string  `json:"maker"`
	Taker               string  `json:"taker"`
	BaseAtoms           string  `json:"baseAtoms"`
	QuoteAtoms          string  `json:"quoteAtoms"`
	PriceAtoms          float64 `json:"priceAtoms"`
	TakerIsBuy          bool    `json:"takerIsBuy"`
	IsMakerGlobal       bool    `json:"isMakerGlobal"`
	MakerSequenceNumber string  `json:"makerSequenceNumber"`
	TakerSequenceNumber string  `json:"takerSequenceNumber"`
	Signature           string  `json:"signature"`
	Slot                uint64  `json:"slot"`
}

func (*FillEvent) EventType() string { return "fill" }

// PlaceOrderEvent is a decoded order placement log. The order sequence number
// wraps around at the u64 maximum; that is venue behavior, not an error.
type PlaceOrderEvent struct {
	Market              string    `json:"market"`
	Trader              string    `json:"trader"`
	BaseAtoms           string    `json:"baseAtoms"`
	Price               float64   `json:"price"`
	OrderSequenceNumber string    `json:"orderSequenceNumber"`
	OrderIndex          uint32    `json:"orderIndex"`
	LastValidSlot       uint32    `json:"lastValidSlot"`
	OrderType           OrderType `json:"orderType"`
	IsBid               bool      `json:"isBid"`
	Padding             []uint8   `json:"padding"`
	Signature           string    `json:"signature"`
	Slot                uint64    `json:"slot"`
}

func (*PlaceOrderEvent) EventType() string { return "placeOrder" }
