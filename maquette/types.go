package maquette

// CloneRequest describes one clone call. Immutable once submitted.
type CloneRequest struct {
	URL       string            `json:"url"`
	Framework string            `json:"framework,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
}

// CloneResult is the outcome of a successful clone run.
type CloneResult struct {
	RunID           string   `json:"run_id"`
	OutputPath      string   `json:"output_path"`
	Framework       string   `json:"framework"`
	ComponentsCount int      `json:"components_count"`
	LayoutType      string   `json:"layout_type"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	GenerationMs    int64    `json:"generation_ms"`
	FallbackRoles   []string `json:"fallback_roles,omitempty"`
}
