package service

import (
	"encoding/base32"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderNumberPrefix starts every order number issued by the stateful API
const OrderNumberPrefix = "ORD"

var orderNumberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewOrderNumber returns ORD + YYYYMM + "-" + 8 random base-32 characters.
// Uniqueness is enforced by the orders table; callers retry on collision.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	return OrderNumberPrefix + now.Format("200601") + "-" + orderNumberEncoding.EncodeToString(id[:5])
}

// NewConfirmationNumber returns 8 random uppercase hex characters, the
// shape used by the stateless confirmer
func NewConfirmationNumber() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:4]))
}
