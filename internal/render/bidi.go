package render

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// rtlLanguages are the language codes whose script is written right to
// left. Captions in these languages get per-line visual reordering.
var rtlLanguages = map[string]bool{
	"ar": true, "he": true, "fa": true, "ur": true, "ps": true,
	"sd": true, "yi": true, "ug": true, "dv": true, "ku": true,
}

// RTLLanguage reports whether text in the given language code needs
// right-to-left reordering for display.
func RTLLanguage(code string) bool {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return rtlLanguages[strings.ToLower(code)]
}

// VisualOrder reorders a logical-order line for display surfaces that
// render left-to-right only, so right-to-left text reads correctly. Lines
// without RTL content come back unchanged.
func VisualOrder(line string) string {
	var p bidi.Paragraph
	if _, err := p.SetString(line); err != nil {
		return line
	}
	ordering, err := p.Order()
	if err != nil {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = bidi.ReverseString(text)
		}
		b.WriteString(text)
	}
	return b.String()
}
