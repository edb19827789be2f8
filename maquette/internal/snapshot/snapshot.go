// CLAUDE:SUMMARY DOM snapshot preparation: sanitize, summarize structure, render markdown for prompting.
// Package snapshot turns a raw DOM capture into the compact, safe form the
// analyzer prompts with: sanitized HTML, a markdown rendering, structural
// hints and framework detection.
package snapshot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// MaxMarkdownBytes caps the markdown rendering included in prompts.
// Vision models get the screenshot anyway; the text is a supplement.
const MaxMarkdownBytes = 24_000

// Summary is everything the analyzer needs to know about a captured page
// besides the screenshot itself.
type Summary struct {
	Title           string
	MetaDescription string
	Markdown        string
	Headings        []string
	LinkCount       int
	ImageCount      int
	FormCount       int
	Detection       Detection
	Components      []string
}

// Builder converts captured HTML into Summaries. Safe for concurrent use.
type Builder struct {
	conv *converter.Converter
}

// NewBuilder creates a Builder with the commonmark + table plugins.
func NewBuilder() *Builder {
	return &Builder{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Build produces a Summary from raw captured HTML.
func (b *Builder) Build(html string) (*Summary, error) {
	clean := Sanitize(html)

	md, err := b.conv.ConvertString(clean)
	if err != nil {
		return nil, fmt.Errorf("snapshot: markdown conversion: %w", err)
	}
	md = strings.TrimSpace(md)
	if len(md) > MaxMarkdownBytes {
		cut := MaxMarkdownBytes
		for cut > 0 && !utf8.RuneStart(md[cut]) {
			cut--
		}
		md = md[:cut]
	}

	st, err := parseStructure(html)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse structure: %w", err)
	}

	return &Summary{
		Title:           st.title,
		MetaDescription: st.metaDescription,
		Markdown:        md,
		Headings:        st.headings,
		LinkCount:       st.links,
		ImageCount:      st.images,
		FormCount:       st.forms,
		Detection:       DetectFrameworks(html),
		Components:      DetectComponents(html),
	}, nil
}
