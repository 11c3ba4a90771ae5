// Package deckfill fills placeholder tokens in a presentation from a
// companion workbook: scalar text from a key/value sheet, linked charts and
// styled tables from sheet tabs named after their tokens.
package deckfill

import (
	"io"
	"log/slog"
)

// DefaultSubstitutionsSheet is the workbook tab holding scalar key/value
// substitution rows.
const DefaultSubstitutionsSheet = "substitutions"

// Options configures an update cycle.
type Options struct {
	// SubstitutionsSheet is the name of the scalar key/value tab.
	// Empty means DefaultSubstitutionsSheet.
	SubstitutionsSheet string
	// Logger receives substitution and skip diagnostics. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns default update options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) sheet() string {
	if o.SubstitutionsSheet != "" {
		return o.SubstitutionsSheet
	}
	return DefaultSubstitutionsSheet
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
