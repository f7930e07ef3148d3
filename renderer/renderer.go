// Package renderer turns janitor reports into markdown documents.
package renderer

import (
	"github.com/etnz/janitor"
)

// Units resolves the display unit of a mint. Unknown mints are displayed in
// raw base units.
type Units map[string]janitor.Unit

// Amount formats raw base units of mint.
func (u Units) Amount(mint string, raw uint64) string {
	return u[mint].Amount(raw).String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
