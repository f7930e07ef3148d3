package renderer

import (
	"bytes"
	"strings"

	"github.com/etnz/janitor"
	md "github.com/nao1215/markdown"
)

// QuoteMarkdown renders a single quote.
func QuoteMarkdown(q *janitor.Quote, in, out janitor.Unit) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Quote")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Field", "Value"},
		Rows: [][]string{
			{"Input", in.Amount(q.InAmount).String()},
			{"Input mint", q.InputMint},
			{"Output", md.Bold(out.Amount(q.OutAmount).String())},
			{"Output mint", q.OutputMint},
			{"Price impact", q.PriceImpact.StringFixed(2) + "%"},
			{"Slippage", janitor.Unit{Decimals: 2}.Amount(uint64(q.SlippageBps)).String() + "%"},
			{"Route", strings.Join(q.Labels, " → ")},
		},
	})
	if len(q.Mints) > 0 {
		doc.H2("Path")
		doc.OrderedList(q.Mints...)
	}
	return doc.String()
}
