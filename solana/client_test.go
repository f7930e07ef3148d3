package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/etnz/janitor"
)

// rpcServer is a fake JSON RPC node answering from a table of results per method.
type rpcServer struct {
	mu      sync.Mutex
	results map[string]func(params []json.RawMessage) any
	calls   map[string]int
}

func (s *rpcServer) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func newRPCServer(t *testing.T, results map[string]func(params []json.RawMessage) any) (*rpcServer, *Client) {
	t.Helper()
	s := &rpcServer{results: results, calls: map[string]int{}}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	c.PollInterval = time.Millisecond
	return s, c
}

func (s *rpcServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		ID     any               `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[req.Method]++
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if f, ok := s.results[req.Method]; ok {
		resp["result"] = f(req.Params)
	} else {
		resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func tokenAccount(mint, owner common.PublicKey, amount uint64) string {
	data := make([]byte, 165)
	copy(data[0:32], mint.Bytes())
	copy(data[32:64], owner.Bytes())
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return base64.StdEncoding.EncodeToString(data)
}

func TestClient_TokenAccountsByOwner(t *testing.T) {
	owner, mint, address := types.NewAccount().PublicKey, types.NewAccount().PublicKey, types.NewAccount().PublicKey
	var gotOwner, gotProgram string
	_, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
		"getTokenAccountsByOwner": func(params []json.RawMessage) any {
			json.Unmarshal(params[0], &gotOwner)
			var filter map[string]string
			json.Unmarshal(params[1], &filter)
			gotProgram = filter["programId"]
			return map[string]any{
				"context": map[string]any{"slot": 1},
				"value": []any{
					map[string]any{
						"pubkey": address.ToBase58(),
						"account": map[string]any{
							"data":     []string{tokenAccount(mint, owner, 42), "base64"},
							"lamports": 2039280,
							"owner":    common.TokenProgramID.ToBase58(),
						},
					},
				},
			}
		},
	})

	raws, err := c.TokenAccountsByOwner(context.Background(), owner)
	if err != nil {
		t.Fatalf("TokenAccountsByOwner() error = %v", err)
	}
	if gotOwner != owner.ToBase58() || gotProgram != common.TokenProgramID.ToBase58() {
		t.Errorf("TokenAccountsByOwner() requested owner %q program %q", gotOwner, gotProgram)
	}
	if len(raws) != 1 {
		t.Fatalf("TokenAccountsByOwner() = %d accounts, want 1", len(raws))
	}
	h, err := janitor.DecodeHolding(raws[0])
	if err != nil {
		t.Fatalf("DecodeHolding() error = %v", err)
	}
	if h.Address != address || h.Mint != mint || h.Amount != 42 {
		t.Errorf("TokenAccountsByOwner() holding = %+v", h)
	}
}

func TestClient_TokenAccountsByOwner_Errors(t *testing.T) {
	t.Run("rpc error", func(t *testing.T) {
		_, c := newRPCServer(t, nil)
		if _, err := c.TokenAccountsByOwner(context.Background(), types.NewAccount().PublicKey); err == nil {
			t.Error("TokenAccountsByOwner() expected an error")
		}
	})
	t.Run("wrong encoding", func(t *testing.T) {
		_, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
			"getTokenAccountsByOwner": func([]json.RawMessage) any {
				return map[string]any{"value": []any{map[string]any{
					"pubkey":  types.NewAccount().PublicKey.ToBase58(),
					"account": map[string]any{"data": []string{"xx", "base58"}},
				}}}
			},
		})
		_, err := c.TokenAccountsByOwner(context.Background(), types.NewAccount().PublicKey)
		if !errors.Is(err, janitor.ErrInvalidAccount) {
			t.Errorf("TokenAccountsByOwner() error = %v, want %v", err, janitor.ErrInvalidAccount)
		}
	})
}

func TestClient_MintDecimals(t *testing.T) {
	mint := janitor.USDCMint
	data := make([]byte, 82)
	data[mintDecimalsOffset] = 6
	s, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
		"getAccountInfo": func([]json.RawMessage) any {
			return map[string]any{
				"context": map[string]any{"slot": 1},
				"value": map[string]any{
					"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
					"executable": false,
					"lamports":   1461600,
					"owner":      common.TokenProgramID.ToBase58(),
					"rentEpoch":  0,
				},
			}
		},
	})

	for i := 0; i < 3; i++ {
		d, err := c.MintDecimals(context.Background(), mint)
		if err != nil {
			t.Fatalf("MintDecimals() error = %v", err)
		}
		if d != 6 {
			t.Errorf("MintDecimals() = %d, want 6", d)
		}
	}
	if n := s.count("getAccountInfo"); n != 1 {
		t.Errorf("MintDecimals() fetched %d times, want 1", n)
	}
}

func signedTransfer(t *testing.T) types.Transaction {
	t.Helper()
	payer := types.NewAccount()
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: types.NewAccount().PublicKey.ToBase58(),
			Instructions: []types.Instruction{
				system.Transfer(system.TransferParam{From: payer.PublicKey, To: types.NewAccount().PublicKey, Amount: 1}),
			},
		}),
		Signers: []types.Account{payer},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func statusResult(status any) func([]json.RawMessage) any {
	return func([]json.RawMessage) any {
		return map[string]any{"context": map[string]any{"slot": 1}, "value": []any{status}}
	}
}

func TestClient_SendAndConfirm(t *testing.T) {
	const sig = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
	polls := 0
	s, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
		"sendTransaction": func([]json.RawMessage) any { return sig },
		"getSignatureStatuses": func(p []json.RawMessage) any {
			polls++
			if polls < 3 {
				return statusResult(nil)(p)
			}
			return statusResult(map[string]any{"slot": 10, "confirmations": 1, "err": nil, "confirmationStatus": "confirmed"})(p)
		},
		"getBlockHeight": func([]json.RawMessage) any { return 50 },
	})

	got, err := c.SendAndConfirm(context.Background(), signedTransfer(t), 100)
	if err != nil {
		t.Fatalf("SendAndConfirm() error = %v", err)
	}
	if got != sig {
		t.Errorf("SendAndConfirm() = %q, want %q", got, sig)
	}
	if n := s.count("getSignatureStatuses"); n != 3 {
		t.Errorf("SendAndConfirm() polled %d times, want 3", n)
	}
}

func TestClient_SendAndConfirm_Failures(t *testing.T) {
	const sig = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"

	t.Run("expired", func(t *testing.T) {
		heights := 0
		s, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
			"sendTransaction":      func([]json.RawMessage) any { return sig },
			"getSignatureStatuses": statusResult(nil),
			"getBlockHeight": func([]json.RawMessage) any {
				heights++
				return 99 + heights
			},
		})
		got, err := c.SendAndConfirm(context.Background(), signedTransfer(t), 100)
		if !errors.Is(err, janitor.ErrNotConfirmed) {
			t.Errorf("SendAndConfirm() error = %v, want %v", err, janitor.ErrNotConfirmed)
		}
		if got != sig {
			t.Errorf("SendAndConfirm() = %q, want the signature even on failure", got)
		}
		// heights 100 then 101: the second one is past the last valid height.
		if n := s.count("getBlockHeight"); n != 2 {
			t.Errorf("SendAndConfirm() read the block height %d times, want 2", n)
		}
	})

	t.Run("block height unavailable", func(t *testing.T) {
		// no getBlockHeight: the node answers with a JSON RPC error.
		s, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
			"sendTransaction":      func([]json.RawMessage) any { return sig },
			"getSignatureStatuses": statusResult(nil),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := c.SendAndConfirm(ctx, signedTransfer(t), 100)
		if !errors.Is(err, janitor.ErrNotConfirmed) {
			t.Errorf("SendAndConfirm() error = %v, want %v", err, janitor.ErrNotConfirmed)
		}
		if s.count("getBlockHeight") == 0 {
			t.Error("SendAndConfirm() never asked for the block height")
		}
	})

	t.Run("transaction error", func(t *testing.T) {
		_, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
			"sendTransaction": func([]json.RawMessage) any { return sig },
			"getSignatureStatuses": statusResult(map[string]any{
				"slot": 10, "confirmations": 0, "confirmationStatus": "processed",
				"err": map[string]any{"InstructionError": []any{0, "Custom"}},
			}),
		})
		if _, err := c.SendAndConfirm(context.Background(), signedTransfer(t), 0); err == nil {
			t.Error("SendAndConfirm() expected an error")
		}
	})

	t.Run("rejected", func(t *testing.T) {
		_, c := newRPCServer(t, nil)
		if _, err := c.SendAndConfirm(context.Background(), signedTransfer(t), 0); err == nil {
			t.Error("SendAndConfirm() expected an error")
		}
	})
}

func TestFeeEstimator_RecommendedFee(t *testing.T) {
	fees := []any{}
	for slot, fee := range []int{0, 400, 100, 0, 300, 200} {
		fees = append(fees, map[string]any{"slot": slot, "prioritizationFee": fee})
	}
	_, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
		"getRecentPrioritizationFees": func([]json.RawMessage) any { return fees },
	})

	tests := []struct {
		percentile int
		max        uint64
		want       uint64
	}{
		{50, 0, 200},
		{75, 0, 300},
		{100, 0, 400},
		{0, 0, 100},
		{75, 250, 250},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("p%d max %d", tt.percentile, tt.max), func(t *testing.T) {
			got, err := c.FeeEstimator(tt.percentile, tt.max, janitor.USDCMint).RecommendedFee(context.Background())
			if err != nil {
				t.Fatalf("RecommendedFee() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RecommendedFee() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFeeEstimator_RecommendedFee_Unavailable(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		_, c := newRPCServer(t, map[string]func([]json.RawMessage) any{
			"getRecentPrioritizationFees": func([]json.RawMessage) any {
				return []any{map[string]any{"slot": 1, "prioritizationFee": 0}}
			},
		})
		if _, err := c.FeeEstimator(50, 0).RecommendedFee(context.Background()); !errors.Is(err, ErrNoFeeData) {
			t.Errorf("RecommendedFee() error = %v, want %v", err, ErrNoFeeData)
		}
	})
	t.Run("rpc error", func(t *testing.T) {
		_, c := newRPCServer(t, nil)
		if _, err := c.FeeEstimator(50, 0).RecommendedFee(context.Background()); err == nil {
			t.Error("RecommendedFee() expected an error")
		}
	})
}
