package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/janitor"
	md "github.com/nao1215/markdown"
)

// ProvisionMarkdown renders the result of a provision-accounts run.
func ProvisionMarkdown(r janitor.ProvisionReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Provision Accounts")
	s := r.Shortlist
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Owner", r.Owner.ToBase58()},
		Rows: [][]string{
			{"Existing mints", fmt.Sprint(s.Existing)},
			{"Candidates", fmt.Sprint(len(s.Candidates))},
			{"To create", fmt.Sprint(len(s.Need))},
			{"Created", fmt.Sprint(r.Created())},
			{"Failed", fmt.Sprint(r.Failed())},
		},
	})

	if len(s.Invalid) > 0 {
		doc.H2("Ignored Top Tokens")
		doc.BulletList(s.Invalid...)
	}

	switch {
	case len(s.Need) == 0:
		doc.PlainText("Every shortlisted mint already has an account.")
	case r.DryRun:
		doc.H2("Accounts To Create")
		doc.PlainText(md.Bold("Dry run") + ": nothing was sent.")
		doc.OrderedList(s.Need...)
	}

	if len(r.Batches) > 0 {
		doc.H2("Batches")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignRight, md.AlignRight, md.AlignLeft, md.AlignLeft},
			Header:    []string{"#", "Accounts", "Signature", "Error"},
			Rows:      [][]string{},
		}
		for i, b := range r.Batches {
			table.Rows = append(table.Rows, []string{
				fmt.Sprint(i + 1),
				fmt.Sprint(len(b.Mints)),
				orDash(b.Signature),
				errString(b.Err),
			})
		}
		doc.Table(table)

		var failed []string
		for _, b := range r.Batches {
			if b.Err != nil {
				failed = append(failed, strings.Join(b.Mints, ", "))
			}
		}
		if len(failed) > 0 {
			doc.H2("Mints Of Failed Batches")
			doc.BulletList(failed...)
		}
	}
	return doc.String()
}
