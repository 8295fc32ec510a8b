package convert

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// ReshapeRTL reorders each line of text into visual order so right-to-left
// runs (Arabic, Hebrew) display correctly in plain-text viewers that lack
// bidi support. Form feeds separate pages and pass through untouched.
func ReshapeRTL(text string) string {
	pages := strings.Split(text, "\f")
	for pi, page := range pages {
		lines := strings.Split(page, "\n")
		for li, line := range lines {
			lines[li] = reshapeLine(line)
		}
		pages[pi] = strings.Join(lines, "\n")
	}
	return strings.Join(pages, "\f")
}

func reshapeLine(line string) string {
	if line == "" {
		return line
	}
	var p bidi.Paragraph
	p.SetString(line)
	ordering, err := p.Order()
	if err != nil {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		s := run.String()
		if run.Direction() == bidi.RightToLeft {
			s = reverseRunes(s)
		}
		b.WriteString(s)
	}
	return b.String()
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
