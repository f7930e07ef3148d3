package janitor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/shopspring/decimal"
)

// ErrNoRoute is returned by a Router that cannot find a way to swap.
var ErrNoRoute = errors.New("no route available")

// DefaultSlippageBps is the default slippage tolerance, 0.5%.
const DefaultSlippageBps = 50

// QuoteRequest asks for the conversion of Amount base units of InputMint into OutputMint.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      uint64
	SlippageBps int
}

// Quote is the best route found by a Router.
type Quote struct {
	InputMint   string
	OutputMint  string
	InAmount    uint64 // in InputMint base units
	OutAmount   uint64 // in OutputMint base units
	SlippageBps int
	PriceImpact decimal.Decimal // in percent
	Labels      []string        // the venues used by the route
	Mints       []string        // the mints traversed, starting with InputMint
	// Raw is the Router's own representation of the quote, needed to build the swap.
	Raw json.RawMessage
}

// SwapTransaction is a prebuilt, unsigned, versioned transaction.
type SwapTransaction struct {
	Transaction          []byte
	LastValidBlockHeight uint64
}

// Router finds routes between mints and builds swap transactions for them.
type Router interface {
	// Quote returns the best route for req, or ErrNoRoute.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	// SwapTransaction builds the transaction executing q on behalf of payer.
	SwapTransaction(ctx context.Context, q *Quote, payer common.PublicKey) (*SwapTransaction, error)
}
