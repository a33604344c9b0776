package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"

	"fillRelay/internal/model"
)

// ErrTruncated reports a payload body shorter than its fixed record layout.
var ErrTruncated = errors.New("payload truncated")

// Fixed record widths after the 8-byte discriminator.
const (
	fillLogSize       = 160
	placeOrderLogSize = 112
)

// Decoder parses fill and place-order log payloads. Discriminators are
// derived once at construction.
type Decoder struct {
	fillDisc       [8]byte
	placeOrderDisc [8]byte
}

func NewDecoder() *Decoder {
	return &Decoder{
		fillDisc:       LogDiscriminator(fillLogName),
		placeOrderDisc: LogDiscriminator(placeOrderLogName),
	}
}

// CanDecode reports whether the discriminator names a known record layout.
// Unknown discriminators are not errors; the payload is simply not an event
// this relay cares about.
func (d *Decoder) CanDecode(disc [8]byte) bool {
	return disc == d.fillDisc || disc == d.placeOrderDisc
}

// Decode parses the payload body against the layout named by its
// discriminator. The returned event carries the signature and slot of the
// transaction the payload was extracted from.
func (d *Decoder) Decode(payload Payload, ref model.SignatureRef) (model.Event, error) {
	switch payload.Discriminator {
	case d.fillDisc:
		return d.decodeFill(payload.Body, ref)
	case d.placeOrderDisc:
		return d.decodePlaceOrder(payload.Body, ref)
	default:
		return nil, fmt.Errorf("unknown discriminator %x", payload.Discriminator)
	}
}

func (d *Decoder) decodeFill(body []byte, ref model.SignatureRef) (*model.FillEvent, error) {
	if len(body) < fillLogSize {
		return nil, fmt.Errorf("fill log: %w: %d bytes, want %d", ErrTruncated, len(body), fillLogSize)
	}

	return &model.FillEvent{
		Market:              solana.PublicKeyFromBytes(body[0:32]).String(),
		Maker:               solana.PublicKeyFromBytes(body[32:64]).String(),
		Taker:               solana.PublicKeyFromBytes(body[64:96]).String(),
		BaseAtoms:           formatU64(body[96:104]),
		QuoteAtoms:          formatU64(body[104:112]),
		PriceAtoms:          ConvertU128(binary.LittleEndian.Uint64(body[112:120]), binary.LittleEndian.Uint64(body[120:128])),
		MakerSequenceNumber: formatU64(body[128:136]),
		TakerSequenceNumber: formatU64(body[136:144]),
		TakerIsBuy:          body[144] != 0,
		IsMakerGlobal:       body[145] != 0,
		Signature:           ref.ID,
		Slot:                ref.Slot,
	}, nil
}

func (d *Decoder) decodePlaceOrder(body []byte, ref model.SignatureRef) (*model.PlaceOrderEvent, error) {
	if len(body) < placeOrderLogSize {
		return nil, fmt.Errorf("place order log: %w: %d bytes, want %d", ErrTruncated, len(body), placeOrderLogSize)
	}

	padding := make([]uint8, 6)
	copy(padding, body[106:112])

	return &model.PlaceOrderEvent{
		Market:              solana.PublicKeyFromBytes(body[0:32]).String(),
		Trader:              solana.PublicKeyFromBytes(body[32:64]).String(),
		BaseAtoms:           formatU64(body[64:72]),
		Price:               ConvertU128(binary.LittleEndian.Uint64(body[72:80]), binary.LittleEndian.Uint64(body[80:88])),
		OrderSequenceNumber: formatU64(body[88:96]),
		OrderIndex:          binary.LittleEndian.Uint32(body[96:100]),
		LastValidSlot:       binary.LittleEndian.Uint32(body[100:104]),
		OrderType:           model.OrderType(body[104]),
		IsBid:               body[105] != 0,
		Padding:             padding,
		Signature:           ref.ID,
		Slot:                ref.Slot,
	}, nil
}

func formatU64(b []byte) string {
	return strconv.FormatUint(binary.LittleEndian.Uint64(b), 10)
}
