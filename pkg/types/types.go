package types

import (
	"floatbits/pkg/bitorder"
	"floatbits/pkg/bitvector"

	"github.com/google/uuid"
)

// Record is a computed encoding kept in the catalog.
type Record struct {
	Value float32
	Order bitorder.Order
	Bits  *bitvector.BitVector
	RunID uuid.UUID // run that computed the encoding
}
