package postgres

import (
	"fmt"
	"math/big"

	"github.com/oklog/ulid/v2"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

const accountNumberDigits = 12

var accountNumberSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(accountNumberDigits), nil)

// ReferenceGenerator derives account numbers and transaction references from
// ULID entropy. Uniqueness of account numbers is checked by the caller.
type ReferenceGenerator struct{}

// NewReferenceGenerator creates a new ReferenceGenerator.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{}
}

// AccountNumber returns the category prefix followed by 12 random digits.
func (g *ReferenceGenerator) AccountNumber(category domain.AccountCategory) string {
	id := ulid.Make()
	n := new(big.Int).SetBytes(id.Entropy())
	n.Mod(n, accountNumberSpace)

	return fmt.Sprintf("%s%0*d", category.NumberPrefix(), accountNumberDigits, n)
}

// TransactionReference returns a sortable, unique transaction reference.
func (g *ReferenceGenerator) TransactionReference() string {
	return "TXN-" + ulid.Make().String()
}
