package payment

import (
	"strings"

	"github.com/google/uuid"
)

const (
	TransactionIDPrefix = "TX-"
	txRefHexLen         = 16
)

// NewTransactionID returns TX- followed by 16 lowercase hex characters taken
// from a random UUID.
func NewTransactionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return TransactionIDPrefix + hex[:txRefHexLen]
}
