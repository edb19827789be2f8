package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/maquette/maquette/internal/snapshot"
)

// MaxHTMLExcerpt caps the raw HTML echoed into the prompt. The screenshot
// carries the visual truth; the HTML excerpt is there for structure and text.
const MaxHTMLExcerpt = 3000

// BuildPrompt constructs the deterministic analysis prompt: same summary and
// HTML in, byte-identical prompt out. Determinism keeps transcripts
// comparable across runs of the same page.
func BuildPrompt(sum *snapshot.Summary, html string) string {
	var b strings.Builder

	b.WriteString("Analyze the provided website screenshot and HTML to produce a cloning specification. ")
	b.WriteString("Extract all visible text and map it to page components. ")
	b.WriteString("Identify the framework, layout, color palette, typography and component inventory.\n\n")

	fmt.Fprintf(&b, "PAGE TITLE: %s\n", sum.Title)
	if sum.MetaDescription != "" {
		fmt.Fprintf(&b, "META DESCRIPTION: %s\n", sum.MetaDescription)
	}

	b.WriteString("\nFRAMEWORK DETECTION HINTS:\n")
	fmt.Fprintf(&b, "- JS frameworks: %s\n", joinOr(sum.Detection.Frameworks, "none detected"))
	fmt.Fprintf(&b, "- CSS frameworks: %s\n", joinOr(sum.Detection.CSSFrameworks, "none detected"))
	fmt.Fprintf(&b, "- CMS: %s\n", joinOr(sum.Detection.CMS, "none detected"))
	fmt.Fprintf(&b, "- Components in markup: %s\n", joinOr(sum.Components, "none detected"))

	if len(sum.Headings) > 0 {
		b.WriteString("\nHEADING OUTLINE:\n")
		for _, h := range sum.Headings {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	fmt.Fprintf(&b, "\nELEMENT COUNTS: links=%d images=%d forms=%d\n", sum.LinkCount, sum.ImageCount, sum.FormCount)

	// The sanitized markdown rendering is the text the model should quote
	// from; the raw excerpt below is only there for structural markers.
	if sum.Markdown != "" {
		b.WriteString("\nPAGE CONTENT (markdown):\n")
		b.WriteString(sum.Markdown)
		b.WriteString("\n")
	}

	excerpt := truncateBytes(html, MaxHTMLExcerpt)
	fmt.Fprintf(&b, "\nHTML (first %d bytes):\n%s\n", MaxHTMLExcerpt, excerpt)

	b.WriteString(`
Return ONLY a JSON object with this structure:
{
  "framework": {
    "primary": "react|vue|angular|next|nuxt|svelte|vanilla|unknown",
    "css": "tailwind|bootstrap|material-ui|chakra|vanilla|unknown",
    "build_tools": ["vite"]
  },
  "layout": {
    "type": "grid|flexbox|float|modern",
    "structure": "header-main-footer|sidebar-main|full-width|dashboard",
    "component_hierarchy": ["Header", "Main", "Footer"]
  },
  "colors": {
    "primary": "#hexcode",
    "secondary": "#hexcode",
    "accent": "#hexcode",
    "background": "#hexcode",
    "text": "#hexcode"
  },
  "typography": {
    "primary_font": "font-family-name",
    "font_sizes": ["14px", "16px", "24px"]
  },
  "components": ["header", "navigation", "hero", "card", "form", "footer"],
  "sections": ["hero", "features", "cta", "footer"],
  "text_content": {"header": "extracted text", "main": "extracted text", "footer": "extracted text"}
}
`)
	return b.String()
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// truncateBytes caps s at max bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
