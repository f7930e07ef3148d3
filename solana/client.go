// Package solana implements the janitor Ledger on top of a Solana JSON RPC node.
package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/etnz/janitor"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// MainnetEndpoint is the public mainnet RPC endpoint.
const MainnetEndpoint = rpc.MainnetRPCEndpoint

// mint account layout: decimals are stored right after the supply.
const mintDecimalsOffset = 44

// Client is a janitor.Ledger backed by a Solana RPC node.
type Client struct {
	rpc      *client.Client
	decimals *lru.Cache[string, uint8]

	// PollInterval is the delay between two signature status checks.
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// New returns a client for the RPC node at endpoint.
func New(endpoint string) *Client {
	cache, err := lru.New[string, uint8](1024)
	if err != nil {
		panic(err)
	}
	return &Client{
		rpc:          client.NewClient(endpoint),
		decimals:     cache,
		PollInterval: 2 * time.Second,
		Logger:       zerolog.Nop(),
	}
}

// rpcError is the error member of a JSON RPC response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

type tokenAccountsResponse struct {
	Error  *rpcError `json:"error"`
	Result struct {
		Value []struct {
			Pubkey  string `json:"pubkey"`
			Account struct {
				Data []string `json:"data"` // [content, encoding]
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
}

// TokenAccountsByOwner lists the SPL token accounts of owner, undecoded.
func (c *Client) TokenAccountsByOwner(ctx context.Context, owner common.PublicKey) ([]janitor.RawAccount, error) {
	body, err := c.rpc.RpcClient.Call(ctx, "getTokenAccountsByOwner",
		owner.ToBase58(),
		map[string]any{"programId": common.TokenProgramID.ToBase58()},
		map[string]any{"encoding": "base64", "commitment": "confirmed"},
	)
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner: %w", err)
	}
	var resp tokenAccountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner: %w", resp.Error)
	}

	accounts := make([]janitor.RawAccount, 0, len(resp.Result.Value))
	for _, v := range resp.Result.Value {
		if len(v.Account.Data) != 2 || v.Account.Data[1] != "base64" {
			return nil, fmt.Errorf("%w: account %s is not base64 encoded", janitor.ErrInvalidAccount, v.Pubkey)
		}
		data, err := base64.StdEncoding.DecodeString(v.Account.Data[0])
		if err != nil {
			return nil, fmt.Errorf("%w: account %s: %v", janitor.ErrInvalidAccount, v.Pubkey, err)
		}
		address, err := janitor.ParseMint(v.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", janitor.ErrInvalidAccount, err)
		}
		accounts = append(accounts, janitor.RawAccount{Address: address, Data: data})
	}
	return accounts, nil
}

// LatestBlockhash returns the latest blockhash.
func (c *Client) LatestBlockhash(ctx context.Context) (janitor.Blockhash, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return janitor.Blockhash{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return janitor.Blockhash{Hash: res.Blockhash, LastValidBlockHeight: res.LatestValidBlockHeight}, nil
}

// SendAndConfirm sends tx and polls its status until it is confirmed, fails,
// or the block height passes lastValidBlockHeight (zero means no limit).
func (c *Client) SendAndConfirm(ctx context.Context, tx types.Transaction, lastValidBlockHeight uint64) (string, error) {
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("sendTransaction: %w", err)
	}
	c.Logger.Debug().Str("signature", sig).Msg("transaction sent")

	for {
		status, err := c.rpc.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			c.Logger.Debug().Err(err).Str("signature", sig).Msg("status unavailable")
		case status == nil:
		case status.Err != nil:
			return sig, fmt.Errorf("transaction %s failed: %v", sig, status.Err)
		case confirmed(status.ConfirmationStatus):
			return sig, nil
		}

		if lastValidBlockHeight > 0 {
			res, err := c.rpc.RpcClient.GetBlockHeight(ctx)
			if err == nil && res.Error != nil {
				err = res.Error
			}
			if err != nil {
				c.Logger.Debug().Err(err).Msg("block height unavailable")
			} else if res.Result > lastValidBlockHeight {
				return sig, fmt.Errorf("%w: %s expired at block height %d", janitor.ErrNotConfirmed, sig, lastValidBlockHeight)
			}
		}

		select {
		case <-ctx.Done():
			return sig, fmt.Errorf("%w: %s: %v", janitor.ErrNotConfirmed, sig, ctx.Err())
		case <-time.After(c.PollInterval):
		}
	}
}

func confirmed(c *rpc.Commitment) bool {
	return c != nil && (*c == rpc.CommitmentConfirmed || *c == rpc.CommitmentFinalized)
}

// MintDecimals returns the number of decimals of mint. Results are cached.
func (c *Client) MintDecimals(ctx context.Context, mint string) (uint8, error) {
	if d, ok := c.decimals.Get(mint); ok {
		return d, nil
	}
	info, err := c.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("getAccountInfo %s: %w", mint, err)
	}
	if len(info.Data) <= mintDecimalsOffset {
		return 0, errors.New(mint + " mint account is too short")
	}
	d := info.Data[mintDecimalsOffset]
	c.decimals.Add(mint, d)
	return d, nil
}

// Unit returns the display unit of mint, with symbol.
func (c *Client) Unit(ctx context.Context, mint, symbol string) (janitor.Unit, error) {
	d, err := c.MintDecimals(ctx, mint)
	if err != nil {
		return janitor.Unit{Symbol: symbol}, err
	}
	return janitor.Unit{Decimals: d, Symbol: symbol}, nil
}
