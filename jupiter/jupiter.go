// Package jupiter implements the janitor Router and TopTokens with the
// Jupiter aggregator APIs.
package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/etnz/janitor"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Default endpoints.
const (
	DefaultBaseURL      = "https://quote-api.jup.ag/v6"
	DefaultTopTokensURL = "https://cache.jup.ag/top-tokens"
)

// error codes meaning that there is no way to swap.
var noRouteCodes = map[string]bool{
	"COULD_NOT_FIND_ANY_ROUTE": true,
	"NO_ROUTES_FOUND":          true,
	"TOKEN_NOT_TRADABLE":       true,
}

// Client talks to the quote, swap and top tokens APIs.
type Client struct {
	BaseURL      string
	TopTokensURL string
	// ComputeUnitPrice is requested in swap transactions so that they carry a
	// compute unit price instruction that can be adjusted before signing.
	ComputeUnitPrice uint64

	http  *http.Client
	daily *http.Client // for the top tokens
}

// New returns a client for the default endpoints. Top tokens are cached on
// disk in cacheDir for the day (os.TempDir() if empty).
func New(cacheDir string, logger zerolog.Logger) *Client {
	return &Client{
		BaseURL:          DefaultBaseURL,
		TopTokensURL:     DefaultTopTokensURL,
		ComputeUnitPrice: 1,
		http:             new(http.Client),
		daily:            newDailyCachingClient(cacheDir, logger),
	}
}

// TopTokens returns the mints ranked by trading volume.
func (c *Client) TopTokens(ctx context.Context) ([]string, error) {
	var top []string
	if err := jwget(ctx, c.daily, c.TopTokensURL, &top); err != nil {
		return nil, fmt.Errorf("cannot fetch top tokens: %w", err)
	}
	return top, nil
}

// quoteResponse holds the fields of a quote the janitor reads. The full
// response is kept raw to be sent back to build the swap.
type quoteResponse struct {
	InputMint      string `json:"inputMint"`
	InAmount       string `json:"inAmount"`
	OutputMint     string `json:"outputMint"`
	OutAmount      string `json:"outAmount"`
	SlippageBps    int    `json:"slippageBps"`
	PriceImpactPct string `json:"priceImpactPct"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// Quote returns the best route for req, or janitor.ErrNoRoute.
func (c *Client) Quote(ctx context.Context, req janitor.QuoteRequest) (*janitor.Quote, error) {
	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("amount", strconv.FormatUint(req.Amount, 10))
	q.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	addr := c.BaseURL + "/quote?" + q.Encode()

	var raw json.RawMessage
	if err := jwget(ctx, c.http, addr, &raw); err != nil {
		if isNoRoute(err) {
			return nil, fmt.Errorf("%s to %s: %w", req.InputMint, req.OutputMint, janitor.ErrNoRoute)
		}
		return nil, fmt.Errorf("cannot quote %s: %w", req.InputMint, err)
	}
	return parseQuote(raw)
}

func isNoRoute(err error) bool {
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode >= 500 {
		return false
	}
	var resp errorResponse
	if json.Unmarshal(serr.Body, &resp) != nil {
		return false
	}
	return noRouteCodes[resp.ErrorCode]
}

// parseQuote decodes a quote response.
func parseQuote(raw json.RawMessage) (*janitor.Quote, error) {
	var resp quoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("invalid quote: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid quote: %w", err)
	}

	labels := jstrings(doc, "$.routePlan[*].swapInfo.label")
	if len(labels) == 0 {
		return nil, janitor.ErrNoRoute
	}
	q := &janitor.Quote{
		InputMint:   resp.InputMint,
		OutputMint:  resp.OutputMint,
		SlippageBps: resp.SlippageBps,
		Labels:      labels,
		Mints:       append([]string{resp.InputMint}, jstrings(doc, "$.routePlan[*].swapInfo.outputMint")...),
		Raw:         raw,
	}
	var err error
	if q.InAmount, err = strconv.ParseUint(resp.InAmount, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid quote inAmount %q: %w", resp.InAmount, err)
	}
	if q.OutAmount, err = strconv.ParseUint(resp.OutAmount, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid quote outAmount %q: %w", resp.OutAmount, err)
	}
	if resp.PriceImpactPct != "" {
		if impact, err := decimal.NewFromString(resp.PriceImpactPct); err == nil {
			q.PriceImpact = impact.Shift(2)
		}
	}
	return q, nil
}

// jstrings returns the string values matched by path in doc.
func jstrings(doc any, path string) []string {
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	jlist, ok := jval.([]any)
	if !ok {
		jlist = []any{jval}
	}
	var res []string
	for _, v := range jlist {
		if s, ok := v.(string); ok {
			res = append(res, s)
		}
	}
	return res
}

type swapRequest struct {
	QuoteResponse                 json.RawMessage `json:"quoteResponse"`
	UserPublicKey                 string          `json:"userPublicKey"`
	DynamicComputeUnitLimit       bool            `json:"dynamicComputeUnitLimit"`
	ComputeUnitPriceMicroLamports uint64          `json:"computeUnitPriceMicroLamports,omitempty"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// SwapTransaction asks for the transaction executing quote on behalf of payer.
func (c *Client) SwapTransaction(ctx context.Context, quote *janitor.Quote, payer common.PublicKey) (*janitor.SwapTransaction, error) {
	if len(quote.Raw) == 0 {
		return nil, errors.New("quote was not issued by jupiter")
	}
	req := swapRequest{
		QuoteResponse:                 quote.Raw,
		UserPublicKey:                 payer.ToBase58(),
		DynamicComputeUnitLimit:       true,
		ComputeUnitPriceMicroLamports: c.ComputeUnitPrice,
	}
	var resp swapResponse
	if err := jwpost(ctx, c.http, c.BaseURL+"/swap", req, &resp); err != nil {
		return nil, err
	}
	tx, err := base64.StdEncoding.DecodeString(resp.SwapTransaction)
	if err != nil {
		return nil, fmt.Errorf("invalid swap transaction: %w", err)
	}
	return &janitor.SwapTransaction{Transaction: tx, LastValidBlockHeight: resp.LastValidBlockHeight}, nil
}
