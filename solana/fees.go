package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/PaesslerAG/jsonpath"
)

// ErrNoFeeData is returned when the node reports no recent non zero priority fee.
var ErrNoFeeData = errors.New("no recent prioritization fee")

// FeeEstimator recommends a compute unit price from the fees paid in recent
// slots (getRecentPrioritizationFees).
type FeeEstimator struct {
	client *Client
	// Accounts restricts the estimation to transactions locking these accounts.
	Accounts []string
	// Percentile of the non zero recent fees to recommend, 0 to 100.
	Percentile int
	// Max caps the recommendation, zero means no cap.
	Max uint64
}

// FeeEstimator returns an estimator using c.
func (c *Client) FeeEstimator(percentile int, limit uint64, accounts ...string) *FeeEstimator {
	return &FeeEstimator{client: c, Accounts: accounts, Percentile: percentile, Max: limit}
}

// RecommendedFee returns a compute unit price in micro lamports.
func (f *FeeEstimator) RecommendedFee(ctx context.Context) (uint64, error) {
	params := []any{"getRecentPrioritizationFees"}
	if len(f.Accounts) > 0 {
		params = append(params, f.Accounts)
	}
	body, err := f.client.rpc.RpcClient.Call(ctx, params...)
	if err != nil {
		return 0, fmt.Errorf("getRecentPrioritizationFees: %w", err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, fmt.Errorf("getRecentPrioritizationFees: %w", err)
	}
	if msg, err := jsonpath.Get("$.error.message", doc); err == nil {
		return 0, fmt.Errorf("getRecentPrioritizationFees: %v", msg)
	}
	jval, err := jsonpath.Get("$.result[*].prioritizationFee", doc)
	if err != nil {
		return 0, fmt.Errorf("getRecentPrioritizationFees: %w", err)
	}
	jlist, _ := jval.([]any)

	var fees []uint64
	for _, v := range jlist {
		if fee, ok := v.(float64); ok && fee > 0 {
			fees = append(fees, uint64(fee))
		}
	}
	fee, err := percentile(fees, f.Percentile)
	if err != nil {
		return 0, err
	}
	if f.Max > 0 && fee > f.Max {
		fee = f.Max
	}
	return fee, nil
}

// percentile returns the nearest-rank p-th percentile of fees.
func percentile(fees []uint64, p int) (uint64, error) {
	if len(fees) == 0 {
		return 0, ErrNoFeeData
	}
	p = max(0, min(100, p))
	sort.Slice(fees, func(i, j int) bool { return fees[i] < fees[j] })
	rank := int(math.Ceil(float64(p) / 100 * float64(len(fees))))
	if rank < 1 {
		rank = 1
	}
	return fees[rank-1], nil
}
