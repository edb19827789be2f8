package snapshot

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy = bluemonday.UGCPolicy()

	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	multiLineRe  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips scripts, event handlers and other active content from
// captured HTML before it is rendered to markdown or echoed into a prompt.
// Framework detection runs on the raw HTML, never on this output, because
// sanitization removes exactly the markers detection looks for.
func Sanitize(html string) string {
	return ugcPolicy.Sanitize(html)
}

// CleanText normalises extracted text: drops zero-width characters,
// collapses runs of spaces and blank lines, trims the result.
func CleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00ad':
			return -1
		}
		return r
	}, text)
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiLineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
