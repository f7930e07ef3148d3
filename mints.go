package janitor

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
)

// Well known mints.
const (
	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// DefaultKeepMints are the mints a sweep leaves alone unless configured otherwise.
var DefaultKeepMints = []string{
	WSOLMint,
	USDCMint,
	USDTMint,
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", // RAY
	"SRMuApVNdxXokk5GT7XD5cUUgXMBCoAz2LHeuAoKWRt",  // SRM
	"9vMJfxuKxXBoEa7rM12mYLMwTacLMLDJqHozw96WQL8i", // UST
	"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", // stSOL
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",  // mSOL
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs", // ETH (Wormhole)
}

// KeepSet is a set of mints that must never be swapped, keyed by their base58 form.
type KeepSet map[string]struct{}

// NewKeepSet returns a KeepSet containing mints.
func NewKeepSet(mints ...string) KeepSet {
	k := make(KeepSet, len(mints))
	for _, m := range mints {
		k[m] = struct{}{}
	}
	return k
}

// Has reports whether mint is kept.
func (k KeepSet) Has(mint string) bool {
	_, ok := k[mint]
	return ok
}

// ValidateMint checks that s is the base58 encoding of a 32 bytes public key.
func ValidateMint(s string) error {
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid mint %q: %w", s, err)
	}
	if len(b) != 32 {
		return fmt.Errorf("invalid mint %q: %d bytes, want 32", s, len(b))
	}
	return nil
}

// ParseMint decodes a base58 mint address.
func ParseMint(s string) (common.PublicKey, error) {
	if err := ValidateMint(s); err != nil {
		return common.PublicKey{}, err
	}
	return common.PublicKeyFromString(s), nil
}
