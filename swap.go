package janitor

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
)

// ExecuteSwap builds the swap transaction of q, sets its priority fee when
// priorityFee is positive, signs it with user and waits for its confirmation.
func ExecuteSwap(ctx context.Context, ledger Ledger, router Router, q *Quote, user types.Account, priorityFee uint64) (string, error) {
	swap, err := router.SwapTransaction(ctx, q, user.PublicKey)
	if err != nil {
		return "", fmt.Errorf("cannot build swap transaction: %w", err)
	}
	tx, err := types.TransactionDeserialize(swap.Transaction)
	if err != nil {
		return "", fmt.Errorf("cannot decode swap transaction: %w", err)
	}
	if priorityFee > 0 {
		SetPriorityFee(&tx, priorityFee)
	}
	if err := Sign(&tx, user); err != nil {
		return "", err
	}
	return ledger.SendAndConfirm(ctx, tx, swap.LastValidBlockHeight)
}

// Sign adds the signature of signer to tx.
func Sign(tx *types.Transaction, signer types.Account) error {
	msg, err := tx.Message.Serialize()
	if err != nil {
		return fmt.Errorf("cannot serialize message: %w", err)
	}
	if err := tx.AddSignature(signer.Sign(msg)); err != nil {
		return fmt.Errorf("cannot sign with %s: %w", signer.PublicKey.ToBase58(), err)
	}
	return nil
}
