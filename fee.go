package janitor

import (
	"context"
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/compute_budget"
	"github.com/blocto/solana-go-sdk/types"
)

// FeeEstimator recommends a compute unit price, in micro lamports.
type FeeEstimator interface {
	RecommendedFee(ctx context.Context) (uint64, error)
}

// SetPriorityFee rewrites the compute unit price instruction of an unsigned
// transaction to microLamports. It reports whether such an instruction was found,
// the transaction is left untouched otherwise.
func SetPriorityFee(tx *types.Transaction, microLamports uint64) bool {
	data := compute_budget.SetComputeUnitPrice(compute_budget.SetComputeUnitPriceParam{
		MicroLamports: microLamports,
	}).Data

	for i, ix := range tx.Message.Instructions {
		if ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= len(tx.Message.Accounts) {
			continue
		}
		if tx.Message.Accounts[ix.ProgramIDIndex] != common.ComputeBudgetProgramID {
			continue
		}
		if len(ix.Data) != len(data) || ix.Data[0] != data[0] {
			continue
		}
		tx.Message.Instructions[i].Data = data
		return true
	}
	return false
}

// PriorityFee reads the compute unit price instruction of tx, if any.
func PriorityFee(tx types.Transaction) (uint64, bool) {
	for _, ix := range tx.Message.Instructions {
		if ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= len(tx.Message.Accounts) {
			continue
		}
		if tx.Message.Accounts[ix.ProgramIDIndex] != common.ComputeBudgetProgramID {
			continue
		}
		// instruction tag 3 followed by a little endian u64.
		if len(ix.Data) != 9 || ix.Data[0] != 3 {
			continue
		}
		return binary.LittleEndian.Uint64(ix.Data[1:]), true
	}
	return 0, false
}
