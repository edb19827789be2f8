// CLAUDE:SUMMARY Code generation step: one model call, per-role fallback templates, runnable output guaranteed.
// Package generator maps an Analysis plus target framework to a concrete
// file set. The model proposes files; a deterministic per-role fallback
// policy guarantees the project is runnable even when the model produces
// nothing useful.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/hazyhaar/maquette/maquette/internal/analyzer"
	"github.com/hazyhaar/maquette/maquette/internal/llm"
)

// MinUsableBytes is the usability threshold: a model-produced file is kept
// only if its whitespace-trimmed content is at least this long. Anything
// shorter cannot be a meaningful entry page, stylesheet or script, so the
// role falls back to its built-in template.
const MinUsableBytes = 24

// Supported target frameworks.
const (
	FrameworkVanilla = "vanilla"
	FrameworkReact   = "react"
	FrameworkNext    = "next"
	FrameworkVue     = "vue"
	FrameworkAngular = "angular"
)

// Project is the generated file set: relative path to content.
type Project struct {
	Framework string
	Files     map[string]string
	// FallbackRoles lists the file roles that used a built-in template
	// instead of model output. Diagnostic only.
	FallbackRoles []string
}

// Generator runs the code-generation step.
type Generator struct {
	cli    llm.Client
	logger *slog.Logger
}

// New creates a Generator backed by the given model client.
func New(cli llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cli: cli, logger: logger}
}

// ResolveFramework picks the target framework: an explicit request wins,
// then the analysis detection, then the configured default. Aliases
// (nextjs, vuejs, plain) normalize; anything unrecognized becomes the
// default.
func ResolveFramework(requested string, an *analyzer.Analysis, def string) string {
	candidates := []string{requested}
	if an != nil {
		candidates = append(candidates, an.Framework.Primary)
	}
	candidates = append(candidates, def)

	for _, c := range candidates {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case FrameworkVanilla, "plain", "html":
			return FrameworkVanilla
		case FrameworkReact:
			return FrameworkReact
		case FrameworkNext, "nextjs", "next.js":
			return FrameworkNext
		case FrameworkVue, "vuejs", "vue.js", "nuxt":
			return FrameworkVue
		case FrameworkAngular:
			return FrameworkAngular
		}
	}
	return FrameworkVanilla
}

// Generate makes one code-generation call and assembles the project,
// applying the fallback policy per required file role. A model failure is
// not fatal: the project degrades to all-template output.
func (g *Generator) Generate(ctx context.Context, an *analyzer.Analysis, framework string) (*Project, error) {
	if an == nil {
		return nil, fmt.Errorf("generator: nil analysis")
	}

	roles := rolesFor(framework)
	if roles == nil {
		return nil, fmt.Errorf("generator: unsupported framework %q", framework)
	}

	aiFiles := g.requestFiles(ctx, an, framework)

	proj := &Project{Framework: framework, Files: make(map[string]string)}

	// Keep every usable model file under a safe relative path.
	for p, content := range aiFiles {
		clean, ok := safeRelPath(p)
		if !ok {
			g.logger.Warn("generator: dropping unsafe path from model", "path", p)
			continue
		}
		if Usable(content) {
			proj.Files[clean] = content
		}
	}

	// Per-role fallback: each required role must be filled, by a model
	// file if one matched and survived the usability check, otherwise by
	// the built-in template.
	for _, role := range roles {
		if hasRole(proj.Files, role) {
			continue
		}
		proj.Files[role.path] = role.template(an)
		proj.FallbackRoles = append(proj.FallbackRoles, role.name)
		g.logger.Info("generator: fallback template used",
			"role", role.name, "path", role.path, "framework", framework)
	}

	// Every project ships with README and .gitignore.
	if !hasFile(proj.Files, "README.md") {
		proj.Files["README.md"] = readmeTemplate(an, framework)
	}
	if !hasFile(proj.Files, ".gitignore") {
		proj.Files[".gitignore"] = gitignoreTemplate(framework)
	}

	return proj, nil
}

// requestFiles makes the code-generation call. Any failure returns an empty
// map; the caller's fallback policy covers it.
func (g *Generator) requestFiles(ctx context.Context, an *analyzer.Analysis, framework string) map[string]string {
	prompt := BuildPrompt(an, framework)
	raw, err := g.cli.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		g.logger.Warn("generator: model call failed, using templates", "error", err)
		return nil
	}

	var reply struct {
		Files map[string]string `json:"files"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil || len(reply.Files) == 0 {
		// Some models return the file map directly.
		var direct map[string]string
		if err2 := json.Unmarshal(raw, &direct); err2 == nil {
			return direct
		}
		g.logger.Warn("generator: unparsable file map from model, using templates")
		return nil
	}
	return reply.Files
}

// Usable reports whether model-produced file content meets the usability
// threshold.
func Usable(content string) bool {
	return len(strings.TrimSpace(content)) >= MinUsableBytes
}

// hasRole reports whether any existing file fills the role, matched by
// path suffix (the model may nest files differently than the templates).
func hasRole(files map[string]string, role fileRole) bool {
	for p := range files {
		lower := strings.ToLower(p)
		for _, suffix := range role.suffixes {
			if strings.HasSuffix(lower, suffix) {
				return true
			}
		}
	}
	return false
}

func hasFile(files map[string]string, name string) bool {
	for p := range files {
		if strings.EqualFold(path.Base(p), name) {
			return true
		}
	}
	return false
}

// safeRelPath normalizes a model-proposed path and rejects anything that
// escapes the project directory.
func safeRelPath(p string) (string, bool) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "./")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", false
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// BuildPrompt constructs the deterministic code-generation prompt.
func BuildPrompt(an *analyzer.Analysis, framework string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a complete %s front-end project that reproduces the analyzed website.\n\n", framework)

	desc, _ := json.MarshalIndent(an, "", "  ")
	b.WriteString("SITE ANALYSIS:\n")
	b.Write(desc)
	b.WriteString("\n\n")

	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("1. Reproduce the layout, color palette, typography and text content from the analysis.\n")
	fmt.Fprintf(&b, "2. Use the %s framework conventions for file layout.\n", framework)
	b.WriteString("3. Include every component from the analysis.\n")
	b.WriteString("4. Files must be complete and runnable, not sketches.\n\n")

	b.WriteString("Return ONLY a JSON object of the form:\n")
	b.WriteString(`{"files": {"relative/path.ext": "full file content", ...}}` + "\n")

	roles := rolesFor(framework)
	if roles != nil {
		b.WriteString("\nThe file set must include at least:\n")
		for _, r := range roles {
			fmt.Fprintf(&b, "- %s (%s)\n", r.path, r.name)
		}
	}
	return b.String()
}
