// CLAUDE:SUMMARY Vision analysis step: deterministic prompt, one model call, schema-validated Analysis.
// Package analyzer turns a captured page into a typed Analysis by prompting
// a vision model and validating its JSON reply. Missing fields become
// documented defaults; an unparsable reply is an error, never a
// loosely-typed map.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/maquette/maquette/internal/llm"
	"github.com/hazyhaar/maquette/maquette/internal/snapshot"
)

// Defaults substituted when the model omits a field.
const (
	DefaultFramework = "unknown"
	DefaultLayout    = "unknown"
)

// Framework describes the detected or declared front-end stack.
type Framework struct {
	Primary    string   `json:"primary"`
	CSS        string   `json:"css"`
	BuildTools []string `json:"build_tools,omitempty"`
}

// Layout classifies the page structure.
type Layout struct {
	Type      string   `json:"type"`
	Structure string   `json:"structure"`
	Hierarchy []string `json:"component_hierarchy,omitempty"`
}

// Typography carries the font choices worth reproducing.
type Typography struct {
	PrimaryFont string   `json:"primary_font,omitempty"`
	FontSizes   []string `json:"font_sizes,omitempty"`
}

// Analysis is the normalized description the generator consumes.
type Analysis struct {
	Framework   Framework         `json:"framework"`
	Layout      Layout            `json:"layout"`
	Components  []string          `json:"components"`
	Palette     map[string]string `json:"colors,omitempty"`
	Typography  Typography        `json:"typography,omitempty"`
	TextContent map[string]string `json:"text_content,omitempty"`
	Sections    []string          `json:"sections,omitempty"`
}

// Analyzer runs the vision analysis step.
type Analyzer struct {
	cli     llm.Client
	builder *snapshot.Builder
	logger  *slog.Logger
}

// New creates an Analyzer backed by the given model client.
func New(cli llm.Client, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cli: cli, builder: snapshot.NewBuilder(), logger: logger}
}

// Analyze builds the snapshot summary and prompt, makes one vision call,
// and validates the reply into an Analysis.
func (a *Analyzer) Analyze(ctx context.Context, screenshotPNG []byte, html string) (*Analysis, error) {
	sum, err := a.builder.Build(html)
	if err != nil {
		return nil, fmt.Errorf("analyzer: build snapshot: %w", err)
	}

	prompt := BuildPrompt(sum, html)

	raw, err := a.cli.GenerateJSON(ctx, prompt, screenshotPNG)
	if err != nil {
		return nil, fmt.Errorf("analyzer: model call: %w", err)
	}

	an, err := parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	// The markup-derived component list backstops a model that saw the
	// picture but skipped the inventory.
	if len(an.Components) == 0 {
		an.Components = sum.Components
	}

	a.logger.Debug("analysis complete",
		"framework", an.Framework.Primary,
		"components_count", len(an.Components),
		"layout_type", an.Layout.Type)
	return an, nil
}
