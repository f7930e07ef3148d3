package janitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
)

// MaxBatchSize is the maximum number of create instructions packed in one transaction.
const MaxBatchSize = 10

// Batch is one provisioning transaction.
type Batch struct {
	Mints     []string
	Signature string // empty if the transaction was never sent
	Err       error
}

// ProvisionReport describes a provisioning run.
type ProvisionReport struct {
	Owner     common.PublicKey
	DryRun    bool
	Shortlist Shortlist
	Batches   []Batch
}

// Created returns the number of accounts created by confirmed batches.
func (r ProvisionReport) Created() (n int) {
	for _, b := range r.Batches {
		if b.Err == nil {
			n += len(b.Mints)
		}
	}
	return n
}

// Failed returns the number of accounts in batches that failed.
func (r ProvisionReport) Failed() (n int) {
	for _, b := range r.Batches {
		if b.Err != nil {
			n += len(b.Mints)
		}
	}
	return n
}

// Provisioner creates missing associated token accounts.
type Provisioner struct {
	Ledger    Ledger
	BatchSize int // defaults to MaxBatchSize
	Logger    zerolog.Logger
}

// NewProvisioner returns a Provisioner with the default batch size and no logging.
func NewProvisioner(ledger Ledger) *Provisioner {
	return &Provisioner{Ledger: ledger, BatchSize: MaxBatchSize, Logger: zerolog.Nop()}
}

func (p *Provisioner) batchSize() int {
	if p.BatchSize <= 0 || p.BatchSize > MaxBatchSize {
		return MaxBatchSize
	}
	return p.BatchSize
}

// Reconcile scans the owner's holdings, computes the shortlist of missing
// accounts among the first tokensFromTop top tokens, and provisions them
// unless dryRun is set.
//
// Only setup errors (feed or scan failures) are returned, batch failures are
// part of the report.
func (p *Provisioner) Reconcile(ctx context.Context, payer types.Account, owner common.PublicKey, feed TopTokens, tokensFromTop int, dryRun bool) (ProvisionReport, error) {
	report := ProvisionReport{Owner: owner, DryRun: dryRun}

	top, err := feed.TopTokens(ctx)
	if err != nil {
		return report, fmt.Errorf("cannot fetch top tokens: %w", err)
	}
	holdings, err := Scan(ctx, p.Ledger, owner)
	if err != nil {
		return report, err
	}

	report.Shortlist = NewShortlist(top, tokensFromTop, holdings)
	for _, mint := range report.Shortlist.Invalid {
		p.Logger.Warn().Str("mint", mint).Msg("ignoring invalid top token")
	}
	p.Logger.Info().Int("existing", report.Shortlist.Existing).Msg("existing token accounts of distinct mint")
	p.Logger.Info().
		Int("create", len(report.Shortlist.Need)).
		Int("candidates", len(report.Shortlist.Candidates)).
		Msgf("create %d associated token accounts out of %d", len(report.Shortlist.Need), len(report.Shortlist.Candidates))

	if dryRun || len(report.Shortlist.Need) == 0 {
		return report, nil
	}
	report.Batches = p.Provision(ctx, payer, owner, report.Shortlist.Need)
	return report, nil
}

// Provision creates the associated token accounts of owner for every mint in
// need, funded by payer, one transaction per batch.
//
// A failed batch is reported and not retried, the next batches are still
// attempted. Batches are not attempted once ctx is done.
func (p *Provisioner) Provision(ctx context.Context, payer types.Account, owner common.PublicKey, need []string) []Batch {
	var batches []Batch
	for _, mints := range SplitBatches(need, p.batchSize()) {
		if ctx.Err() != nil {
			p.Logger.Warn().Int("remaining", len(need)-countMints(batches)).Msg("provisioning interrupted")
			break
		}
		b := Batch{Mints: mints}
		b.Signature, b.Err = p.submit(ctx, payer, owner, mints)
		if b.Err != nil {
			p.Logger.Error().Err(b.Err).Strs("mints", mints).Str("signature", b.Signature).Msg("batch failed")
		} else {
			p.Logger.Info().Str("signature", b.Signature).Int("accounts", len(mints)).Msg("batch confirmed")
		}
		batches = append(batches, b)
	}
	return batches
}

func (p *Provisioner) submit(ctx context.Context, payer types.Account, owner common.PublicKey, mints []string) (string, error) {
	ixs, err := CreateAccountInstructions(payer.PublicKey, owner, mints)
	if err != nil {
		return "", err
	}
	bh, err := p.Ledger.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot get latest blockhash: %w", err)
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: bh.Hash,
			Instructions:    ixs,
		}),
		Signers: []types.Account{payer},
	})
	if err != nil {
		return "", fmt.Errorf("cannot sign transaction: %w", err)
	}
	return p.Ledger.SendAndConfirm(ctx, tx, bh.LastValidBlockHeight)
}

// CreateAccountInstructions returns one "create associated token account"
// instruction per mint, for owner, funded by funder.
func CreateAccountInstructions(funder, owner common.PublicKey, mints []string) ([]types.Instruction, error) {
	ixs := make([]types.Instruction, 0, len(mints))
	for _, m := range mints {
		mint, err := ParseMint(m)
		if err != nil {
			return nil, err
		}
		ata, _, err := common.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, fmt.Errorf("cannot derive associated token account of %s for %s: %w", owner.ToBase58(), m, err)
		}
		ixs = append(ixs, associated_token_account.Create(associated_token_account.CreateParam{
			Funder:                 funder,
			Owner:                  owner,
			Mint:                   mint,
			AssociatedTokenAccount: ata,
		}))
	}
	if len(ixs) == 0 {
		return nil, errors.New("no instruction to send")
	}
	return ixs, nil
}

// SplitBatches splits mints in consecutive groups of at most size elements,
// preserving order.
func SplitBatches(mints []string, size int) [][]string {
	if size <= 0 {
		size = MaxBatchSize
	}
	var batches [][]string
	for start := 0; start < len(mints); start += size {
		end := min(start+size, len(mints))
		batches = append(batches, mints[start:end])
	}
	return batches
}

func countMints(batches []Batch) (n int) {
	for _, b := range batches {
		n += len(b.Mints)
	}
	return n
}
