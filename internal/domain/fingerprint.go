package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// RequestFingerprint derives the key identifying a transfer request for
// duplicate suppression. Identical (origin, destination, amount) triples map
// to the same fingerprint.
func RequestFingerprint(originID, destinationID string, amount decimal.Decimal) string {
	data := fmt.Sprintf("%s:%s:%s", originID, destinationID, amount.String())
	sum := sha256.Sum256([]byte(data))

	return hex.EncodeToString(sum[:])
}
