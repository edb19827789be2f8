package analyzer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hazyhaar/maquette/maquette/internal/llm"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// parseAnalysis validates the model's JSON into an Analysis, substituting
// documented defaults for missing fields. Only structural failure (not
// valid JSON, or not an object) is an error.
func parseAnalysis(raw json.RawMessage) (*Analysis, error) {
	var an Analysis
	if err := json.Unmarshal(raw, &an); err != nil {
		return nil, fmt.Errorf("%w: analysis reply: %v", llm.ErrInvalidJSON, err)
	}

	if an.Framework.Primary == "" {
		an.Framework.Primary = DefaultFramework
	}
	if an.Framework.CSS == "" {
		an.Framework.CSS = DefaultFramework
	}
	if an.Layout.Type == "" {
		an.Layout.Type = DefaultLayout
	}
	if an.Layout.Structure == "" {
		an.Layout.Structure = DefaultLayout
	}
	if an.Components == nil {
		an.Components = []string{}
	}

	an.Framework.Primary = strings.ToLower(strings.TrimSpace(an.Framework.Primary))
	an.Framework.CSS = strings.ToLower(strings.TrimSpace(an.Framework.CSS))

	// Drop palette entries that are not hex colors; the generator
	// interpolates these into CSS verbatim.
	for k, v := range an.Palette {
		if !hexColorRe.MatchString(strings.TrimSpace(v)) {
			delete(an.Palette, k)
		} else {
			an.Palette[k] = strings.TrimSpace(v)
		}
	}

	return &an, nil
}
