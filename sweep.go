package janitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
)

// Sweep defaults.
const (
	// DefaultDustThreshold is about one cent when the output mint is USDC.
	DefaultDustThreshold uint64 = 10_000
	// DefaultDelay keeps the routing service under its rate limit.
	DefaultDelay = 500 * time.Millisecond
)

// SweepConfig holds everything a sweep needs to know besides the holdings.
type SweepConfig struct {
	OutputMint    string  // the reference mint everything is swapped into
	Keep          KeepSet // mints never swapped, OutputMint should be in it
	DustThreshold uint64  // quotes below this OutAmount are not swapped
	SlippageBps   int
	Delay         time.Duration // pause after each quoted holding
	DryRun        bool
}

// DefaultSweepConfig sweeps into USDC and keeps DefaultKeepMints.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		OutputMint:    USDCMint,
		Keep:          NewKeepSet(DefaultKeepMints...),
		DustThreshold: DefaultDustThreshold,
		SlippageBps:   DefaultSlippageBps,
		Delay:         DefaultDelay,
	}
}

// Outcome is what happened to a holding during a sweep.
type Outcome int

const (
	Kept        Outcome = iota // the mint is in the keep set
	Empty                      // nothing to swap
	QuoteFailed                // the router failed
	NoRoute                    // the router found no route
	Dust                       // the quote is below the dust threshold
	Simulated                  // would have been swapped, but dry run
	Swapped                    // swap confirmed
	SwapFailed                 // swap built, sent or confirmed with an error
)

var outcomeNames = [...]string{
	Kept:        "kept",
	Empty:       "empty",
	QuoteFailed: "quote failed",
	NoRoute:     "no route available",
	Dust:        "below dust threshold",
	Simulated:   "dry run",
	Swapped:     "swapped",
	SwapFailed:  "swap failed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// HoldingResult is the sweep result for one holding.
type HoldingResult struct {
	Holding   Holding
	Outcome   Outcome
	Quote     *Quote // nil unless a quote was received
	Signature string
	Err       error
}

// SweepReport describes a sweep run.
type SweepReport struct {
	OutputMint string
	DryRun     bool
	// Expected is the sum of the quoted OutAmount of every holding that was
	// neither kept nor dust, whether or not the swap was executed.
	Expected uint64
	// Realized is the sum of the quoted OutAmount of the confirmed swaps only.
	Realized uint64
	Results  []HoldingResult
}

// Count returns the number of holdings with outcome o.
func (r SweepReport) Count(o Outcome) (n int) {
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Sweeper swaps holdings back into a reference mint.
type Sweeper struct {
	Ledger Ledger
	Router Router
	Fees   FeeEstimator // optional
	Config SweepConfig
	Logger zerolog.Logger

	sleep func(context.Context, time.Duration)
}

// NewSweeper returns a Sweeper without fee estimation nor logging.
func NewSweeper(ledger Ledger, router Router, cfg SweepConfig) *Sweeper {
	return &Sweeper{Ledger: ledger, Router: router, Config: cfg, Logger: zerolog.Nop()}
}

// Run scans the holdings of user and sweeps them.
func (s *Sweeper) Run(ctx context.Context, user types.Account) (SweepReport, error) {
	holdings, err := Scan(ctx, s.Ledger, user.PublicKey)
	if err != nil {
		return SweepReport{OutputMint: s.Config.OutputMint, DryRun: s.Config.DryRun}, err
	}
	return s.Sweep(ctx, user, holdings), nil
}

// Sweep processes holdings sequentially, in order. Failures are recorded in the
// report and never stop the sweep, only ctx cancellation does.
func (s *Sweeper) Sweep(ctx context.Context, user types.Account, holdings []Holding) SweepReport {
	report := SweepReport{OutputMint: s.Config.OutputMint, DryRun: s.Config.DryRun}
	fee := s.priorityFee(ctx)

	for _, h := range holdings {
		if ctx.Err() != nil {
			s.Logger.Warn().Err(ctx.Err()).Msg("sweep interrupted")
			break
		}
		mint := h.MintString()
		if s.Config.Keep.Has(mint) || mint == s.Config.OutputMint {
			report.Results = append(report.Results, HoldingResult{Holding: h, Outcome: Kept})
			continue
		}
		if h.Amount == 0 {
			report.Results = append(report.Results, HoldingResult{Holding: h, Outcome: Empty})
			continue
		}

		res := s.sweepOne(ctx, user, h, fee)
		if res.Quote != nil && res.Outcome != Dust {
			report.Expected += res.Quote.OutAmount
			if res.Outcome == Swapped {
				report.Realized += res.Quote.OutAmount
			}
		}
		report.Results = append(report.Results, res)
		s.pause(ctx)
	}

	ev := s.Logger.Info().Uint64("expected", report.Expected).Bool("dry_run", report.DryRun)
	if !report.DryRun {
		ev = ev.Uint64("realized", report.Realized)
	}
	ev.Msg("expected total out amount (raw amount)")
	return report
}

// sweepOne quotes a single holding and swaps it when worth it.
func (s *Sweeper) sweepOne(ctx context.Context, user types.Account, h Holding, fee uint64) HoldingResult {
	res := HoldingResult{Holding: h}
	log := s.Logger.With().Str("mint", h.MintString()).Str("account", h.Address.ToBase58()).Logger()

	log.Info().Uint64("amount", h.Amount).Msg("fetching quote")
	q, err := s.Router.Quote(ctx, QuoteRequest{
		InputMint:   h.MintString(),
		OutputMint:  s.Config.OutputMint,
		Amount:      h.Amount,
		SlippageBps: s.Config.SlippageBps,
	})
	switch {
	case errors.Is(err, ErrNoRoute):
		res.Outcome, res.Err = NoRoute, err
		log.Warn().Msg(NoRoute.String())
		return res
	case err != nil:
		res.Outcome, res.Err = QuoteFailed, err
		log.Error().Err(err).Msg(QuoteFailed.String())
		return res
	case q == nil:
		res.Outcome, res.Err = NoRoute, ErrNoRoute
		log.Warn().Msg(NoRoute.String())
		return res
	}
	res.Quote = q

	if q.OutAmount < s.Config.DustThreshold {
		res.Outcome = Dust
		log.Info().Uint64("out_amount", q.OutAmount).Uint64("threshold", s.Config.DustThreshold).Msg("skipping swap, " + Dust.String())
		return res
	}

	if s.Config.DryRun {
		res.Outcome = Simulated
		log.Info().Uint64("out_amount", q.OutAmount).Msg("would swap")
		return res
	}

	log.Info().Uint64("out_amount", q.OutAmount).Msg("swapping")
	res.Signature, res.Err = ExecuteSwap(ctx, s.Ledger, s.Router, q, user, fee)
	if res.Err != nil {
		res.Outcome = SwapFailed
		log.Error().Err(res.Err).Str("signature", res.Signature).Msg(SwapFailed.String())
		return res
	}
	res.Outcome = Swapped
	log.Info().Str("signature", res.Signature).Msg("executed swap")
	return res
}

// priorityFee asks the estimator once per run, any failure means no adjustment.
func (s *Sweeper) priorityFee(ctx context.Context) uint64 {
	if s.Fees == nil || s.Config.DryRun {
		return 0
	}
	fee, err := s.Fees.RecommendedFee(ctx)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("priority fee unavailable, using the router's default")
		return 0
	}
	s.Logger.Debug().Uint64("micro_lamports", fee).Msg("priority fee")
	return fee
}

func (s *Sweeper) pause(ctx context.Context) {
	if s.sleep != nil {
		s.sleep(ctx, s.Config.Delay)
		return
	}
	Pause(ctx, s.Config.Delay)
}

// Pause waits for d, or until ctx is done.
func Pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
