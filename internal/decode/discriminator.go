package decode

import "crypto/sha256"

const (
	fillLogName       = "manifest::logs::FillLog"
	placeOrderLogName = "manifest::logs::PlaceOrderLog"
)

// LogDiscriminator derives the 8-byte tag for a namespaced log record name:
// the first 8 bytes of the sha256 of the name.
func LogDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte(name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}
