package istat

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rivaluta/internal/core"
)

// resultSelector matches the read-only text boxes the calculator fills in:
// the coefficient first, the revalued amount second. The type value is
// compared case-insensitively, as HTML does.
const resultSelector = "input[readonly][type=text i]"

// ParseResult extracts the coefficient and revalued amount from a
// calculator response page. Only surrounding whitespace is removed; the
// values are otherwise returned exactly as the page shows them.
func ParseResult(r io.Reader) (core.Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return core.Result{}, fmt.Errorf("%w: read html: %w", core.ErrParse, err)
	}

	inputs := doc.Find(resultSelector)
	if inputs.Length() < 2 {
		return core.Result{}, fmt.Errorf("%w: found %d result fields, want 2", core.ErrParse, inputs.Length())
	}

	result := core.Result{
		Coefficient:    strings.TrimSpace(inputs.Eq(0).AttrOr("value", "")),
		RevaluedAmount: strings.TrimSpace(inputs.Eq(1).AttrOr("value", "")),
	}
	if err := result.Validate(); err != nil {
		return core.Result{}, fmt.Errorf("%w: %w", core.ErrParse, err)
	}

	return result, nil
}
