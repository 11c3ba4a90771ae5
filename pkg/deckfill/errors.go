package deckfill

import (
	"errors"
	"fmt"

	"github.com/hmasato/deckfill/pkg/deckfill/registry"
)

// ErrNoSubstitutionsSheet indicates the workbook has no scalar key/value
// sheet. Raised only when a text-token lookup is attempted; chart and table
// resolution do not depend on the sheet.
var ErrNoSubstitutionsSheet = registry.ErrNoSubstitutionsSheet

// ErrEmptyTableRange indicates a table token resolved to a range with no
// populated rows.
var ErrEmptyTableRange = errors.New("table range has no rows")

// ErrZeroSizeChart indicates a chart with a zero natural width or height,
// which cannot be scaled into a placeholder box.
var ErrZeroSizeChart = errors.New("chart has zero natural size")

// SubstituteError ties a failed substitution to its slide part and token.
type SubstituteError struct {
	SlidePart string
	Token     string
	Err       error
}

func (e *SubstituteError) Error() string {
	return fmt.Sprintf("substitute %q on %s: %v", e.Token, e.SlidePart, e.Err)
}

func (e *SubstituteError) Unwrap() error {
	return e.Err
}
