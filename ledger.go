package janitor

import (
	"context"
	"errors"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// ErrNotConfirmed is returned when a submitted transaction expired before being confirmed.
var ErrNotConfirmed = errors.New("transaction not confirmed")

// Blockhash is a recent blockhash and the last block height at which a
// transaction using it can still land.
type Blockhash struct {
	Hash                 string
	LastValidBlockHeight uint64
}

// Ledger is the network client the janitor talks to.
type Ledger interface {
	// TokenAccountsByOwner returns the raw token accounts owned by owner.
	TokenAccountsByOwner(ctx context.Context, owner common.PublicKey) ([]RawAccount, error)
	// LatestBlockhash returns a blockhash to build new transactions with.
	LatestBlockhash(ctx context.Context) (Blockhash, error)
	// SendAndConfirm submits a signed transaction and waits for its
	// confirmation, or for lastValidBlockHeight to be exceeded.
	SendAndConfirm(ctx context.Context, tx types.Transaction, lastValidBlockHeight uint64) (string, error)
}

// TopTokens is a feed of token mints ranked by trading volume.
type TopTokens interface {
	TopTokens(ctx context.Context) ([]string, error)
}
