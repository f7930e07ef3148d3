package renderer

import (
	"bytes"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/etnz/janitor"
	md "github.com/nao1215/markdown"
)

// HoldingsMarkdown renders the token accounts of owner.
func HoldingsMarkdown(owner common.PublicKey, holdings []janitor.Holding, units Units) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holdings of %s", owner.ToBase58()))
	if len(holdings) == 0 {
		doc.PlainText("No token accounts.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Mint", "Account", "Balance"},
		Rows:      [][]string{},
	}
	empty := 0
	for _, h := range holdings {
		if h.Amount == 0 {
			empty++
		}
		table.Rows = append(table.Rows, []string{
			h.MintString(),
			h.Address.ToBase58(),
			units.Amount(h.MintString(), h.Amount),
		})
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%d accounts, %d distinct mints, %d empty.", len(holdings), len(janitor.DistinctMints(holdings)), empty))
	return doc.String()
}
