package janitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
)

// ErrInvalidAccount is returned when raw account data does not decode as a token account.
var ErrInvalidAccount = errors.New("invalid token account data")

// RawAccount is a token account as returned by the ledger, before decoding.
type RawAccount struct {
	Address common.PublicKey
	Data    []byte
}

// Holding is a snapshot of a token account: a balance of one mint for one owner.
//
// Holdings are never updated, they are scanned again instead.
type Holding struct {
	Address common.PublicKey // the token account
	Mint    common.PublicKey
	Owner   common.PublicKey
	Amount  uint64 // in base units of the mint
}

// MintString returns the canonical (base58) form of the holding's mint.
func (h Holding) MintString() string { return h.Mint.ToBase58() }

// DecodeHolding decodes a raw SPL token account.
func DecodeHolding(raw RawAccount) (Holding, error) {
	if len(raw.Data) != token.TokenAccountSize {
		return Holding{}, fmt.Errorf("%w: account %s is %d bytes long, want %d", ErrInvalidAccount, raw.Address.ToBase58(), len(raw.Data), token.TokenAccountSize)
	}
	acc, err := token.TokenAccountFromData(raw.Data)
	if err != nil {
		return Holding{}, fmt.Errorf("%w: account %s: %v", ErrInvalidAccount, raw.Address.ToBase58(), err)
	}
	return Holding{
		Address: raw.Address,
		Mint:    acc.Mint,
		Owner:   acc.Owner,
		Amount:  acc.Amount,
	}, nil
}

// Scan returns all the holdings of owner, in the order the ledger lists them.
//
// A single undecodable account fails the whole scan.
func Scan(ctx context.Context, ledger Ledger, owner common.PublicKey) ([]Holding, error) {
	raws, err := ledger.TokenAccountsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("cannot list token accounts of %s: %w", owner.ToBase58(), err)
	}
	holdings := make([]Holding, 0, len(raws))
	for _, raw := range raws {
		h, err := DecodeHolding(raw)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// DistinctMints returns the set of mints held, in canonical form.
func DistinctMints(holdings []Holding) map[string]struct{} {
	mints := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		mints[h.MintString()] = struct{}{}
	}
	return mints
}
