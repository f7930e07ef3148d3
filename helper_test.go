package janitor

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/compute_budget"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
)

// newMint returns a fresh random mint address.
func newMint() common.PublicKey { return types.NewAccount().PublicKey }

// tokenAccountData encodes an initialized SPL token account.
func tokenAccountData(mint, owner common.PublicKey, amount uint64) []byte {
	data := make([]byte, token.TokenAccountSize)
	copy(data[0:32], mint.Bytes())
	copy(data[32:64], owner.Bytes())
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}

// fakeLedger is an in-memory Ledger. Created associated token accounts are
// added to its accounts, so that a second scan sees them.
type fakeLedger struct {
	accounts []RawAccount
	listErr  error
	// sendErr, when set, decides the error of the i-th submission.
	sendErr func(i int) error
	sent    []types.Transaction
}

func (l *fakeLedger) add(owner common.PublicKey, mint common.PublicKey, amount uint64) Holding {
	address := types.NewAccount().PublicKey
	l.accounts = append(l.accounts, RawAccount{Address: address, Data: tokenAccountData(mint, owner, amount)})
	return Holding{Address: address, Mint: mint, Owner: owner, Amount: amount}
}

func (l *fakeLedger) TokenAccountsByOwner(_ context.Context, owner common.PublicKey) ([]RawAccount, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	var res []RawAccount
	for _, raw := range l.accounts {
		if common.PublicKeyFromBytes(raw.Data[32:64]) == owner {
			res = append(res, raw)
		}
	}
	return res, nil
}

func (l *fakeLedger) LatestBlockhash(context.Context) (Blockhash, error) {
	return Blockhash{Hash: types.NewAccount().PublicKey.ToBase58(), LastValidBlockHeight: 100}, nil
}

func (l *fakeLedger) SendAndConfirm(_ context.Context, tx types.Transaction, _ uint64) (string, error) {
	i := len(l.sent)
	l.sent = append(l.sent, tx)
	if l.sendErr != nil {
		if err := l.sendErr(i); err != nil {
			return "", err
		}
	}
	l.created(tx)
	return "sig" + string(rune('A'+i)), nil
}

// created records the associated token accounts created by tx.
func (l *fakeLedger) created(tx types.Transaction) {
	for _, ix := range tx.Message.Instructions {
		if tx.Message.Accounts[ix.ProgramIDIndex] != common.SPLAssociatedTokenAccountProgramID {
			continue
		}
		ata := tx.Message.Accounts[ix.Accounts[1]]
		owner := tx.Message.Accounts[ix.Accounts[2]]
		mint := tx.Message.Accounts[ix.Accounts[3]]
		l.accounts = append(l.accounts, RawAccount{Address: ata, Data: tokenAccountData(mint, owner, 0)})
	}
}

// fakeRouter answers quotes from a table, keyed by input mint. Unknown mints have no route.
type fakeRouter struct {
	outAmounts map[string]uint64
	quoteErrs  map[string]error
	// swapErr, when set, fails every swap transaction request.
	swapErr error
	// fee is the compute unit price set in the prebuilt swap transactions.
	fee uint64
	// version of the prebuilt messages, legacy when empty.
	version types.MessageVersion

	quoted  []QuoteRequest
	swapped []string
}

func (r *fakeRouter) Quote(_ context.Context, req QuoteRequest) (*Quote, error) {
	r.quoted = append(r.quoted, req)
	if err, ok := r.quoteErrs[req.InputMint]; ok {
		return nil, err
	}
	out, ok := r.outAmounts[req.InputMint]
	if !ok {
		return nil, ErrNoRoute
	}
	return &Quote{
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		InAmount:    req.Amount,
		OutAmount:   out,
		SlippageBps: req.SlippageBps,
		Labels:      []string{"Fake"},
		Mints:       []string{req.InputMint, req.OutputMint},
	}, nil
}

func (r *fakeRouter) SwapTransaction(_ context.Context, q *Quote, payer common.PublicKey) (*SwapTransaction, error) {
	r.swapped = append(r.swapped, q.InputMint)
	if r.swapErr != nil {
		return nil, r.swapErr
	}
	raw, err := unsignedSwap(payer, r.fee, r.version)
	if err != nil {
		return nil, err
	}
	return &SwapTransaction{Transaction: raw, LastValidBlockHeight: 100}, nil
}

// unsignedSwap builds a serialized transaction shaped like a prebuilt swap:
// a compute unit price instruction followed by some work, with an empty
// signature slot for payer. An empty version is a legacy message.
func unsignedSwap(payer common.PublicKey, fee uint64, version types.MessageVersion) ([]byte, error) {
	msg := types.NewMessage(types.NewMessageParam{
		FeePayer:        payer,
		RecentBlockhash: types.NewAccount().PublicKey.ToBase58(),
		Instructions: []types.Instruction{
			compute_budget.SetComputeUnitPrice(compute_budget.SetComputeUnitPriceParam{MicroLamports: fee}),
			system.Transfer(system.TransferParam{From: payer, To: types.NewAccount().PublicKey, Amount: 1}),
		},
	})
	if version != "" {
		msg.Version = version
	}
	tx := types.Transaction{
		Signatures: []types.Signature{make([]byte, 64)},
		Message:    msg,
	}
	return tx.Serialize()
}

type fakeFeed struct {
	top []string
	err error
}

func (f fakeFeed) TopTokens(context.Context) ([]string, error) { return f.top, f.err }

type fakeFees struct {
	fee uint64
	err error
}

func (f fakeFees) RecommendedFee(context.Context) (uint64, error) { return f.fee, f.err }

var errBoom = errors.New("boom")

// recordSleeps replaces the sweeper pause by a recorder.
func recordSleeps(s *Sweeper) *[]time.Duration {
	var sleeps []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }
	return &sleeps
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
