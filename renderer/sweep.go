package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/janitor"
	md "github.com/nao1215/markdown"
)

// SweepMarkdown renders a sweep report. Output amounts are displayed in out.
func SweepMarkdown(r janitor.SweepReport, out janitor.Unit) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if r.DryRun {
		doc.H1("Sweep (dry run)")
	} else {
		doc.H1("Sweep")
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Mint", "Amount", "Quote", "Outcome", "Details"},
		Rows:      [][]string{},
	}
	for _, res := range r.Results {
		if res.Outcome == janitor.Kept || res.Outcome == janitor.Empty {
			continue
		}
		quoted := "-"
		if res.Quote != nil {
			quoted = out.Amount(res.Quote.OutAmount).String()
		}
		details := res.Signature
		if res.Err != nil {
			details = res.Err.Error()
		}
		table.Rows = append(table.Rows, []string{
			res.Holding.MintString(),
			fmt.Sprint(res.Holding.Amount),
			quoted,
			res.Outcome.String(),
			details,
		})
	}
	if len(table.Rows) > 0 {
		doc.Table(table)
	} else {
		doc.PlainText("Nothing to sweep.")
	}

	doc.H2("Summary")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Output mint", r.OutputMint},
		Rows: [][]string{
			{"Kept", fmt.Sprint(r.Count(janitor.Kept))},
			{"Empty", fmt.Sprint(r.Count(janitor.Empty))},
			{"Below dust threshold", fmt.Sprint(r.Count(janitor.Dust))},
			{"No route", fmt.Sprint(r.Count(janitor.NoRoute))},
			{"Failed", fmt.Sprint(r.Count(janitor.QuoteFailed) + r.Count(janitor.SwapFailed))},
			{"Swapped", fmt.Sprint(r.Count(janitor.Swapped))},
			{md.Bold("Expected"), md.Bold(out.Amount(r.Expected).String())},
			{md.Bold("Realized"), md.Bold(out.Amount(r.Realized).String())},
		},
	})
	if r.DryRun {
		doc.PlainText("Dry run: the expected total is quoted, nothing was executed.")
	}
	return doc.String()
}
