/*
Package report renders registers, depreciation, disposal and reconciliation
reports from stored assets and freshly computed schedules.

PURPOSE:
  Everything a reader sees in rupees goes through this package. Schedules
  are recomputed from the asset and the current settings on every call;
  reports never read the schedule cache.

KEY CONCEPTS:
  - Formatter: One currency convention per report (symbol, grouping, places)
  - As-of date: Depreciation and reconciliation values are read from the
    fiscal year containing the as-of date, after clipping at disposal
  - ClipAtDisposal: Disposal truncation lives here, not in the calculators

SEE ALSO:
  - factory/engine.go: Computes the schedules reports consume
  - api/handlers.go: JSON and CSV endpoints
*/
package report

import (
	"strconv"
	"strings"

	"github.com/warp/asset-engine/generic"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// CURRENCY FORMATTER
// =============================================================================

// Formatter renders Money for display. Build one per report so every cell
// rounds the same way.
type Formatter struct {
	Symbol   string
	Places   int32
	Grouping generic.Grouping
}

// NewFormatter takes the display settings from cfg.
func NewFormatter(cfg generic.Config) Formatter {
	return Formatter{Symbol: cfg.CurrencySymbol, Places: cfg.DisplayPlaces, Grouping: cfg.Grouping}
}

// Format renders m as "₹12,34,567" (Indian) or "₹1,234,567" (Western).
// Negative amounts put the sign before the symbol.
func (f Formatter) Format(m generic.Money) string {
	s := m.Value.Round(f.Places).StringFixed(f.Places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	out := f.Symbol + group(intPart, f.Grouping) + frac
	if neg && !isZeroString(intPart+frac) {
		out = "-" + out
	}
	return out
}

// CSV renders m for CSV cells: two decimals, no symbol, no grouping.
func CSV(m generic.Money) string {
	return m.Value.StringFixed(2)
}

// groupingLocale picks the CLDR locale whose decimal pattern matches each
// grouping: en-IN is #,##,##0 (lakh/crore), en is #,##0.
var groupingLocale = map[generic.Grouping]language.Tag{
	generic.GroupingIndian:  language.MustParse("en-IN"),
	generic.GroupingWestern: language.English,
}

// group inserts separators into an unsigned integer digit string.
func group(digits string, grouping generic.Grouping) string {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits
	}
	tag, ok := groupingLocale[grouping]
	if !ok {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", n)
}

func isZeroString(s string) bool {
	return strings.Trim(s, "0.") == ""
}
