package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hazyhaar/maquette/maquette/internal/analyzer"
	"github.com/hazyhaar/maquette/maquette/internal/llm"
)

func baseAnalysis() *analyzer.Analysis {
	return &analyzer.Analysis{
		Framework:  analyzer.Framework{Primary: "vanilla", CSS: "vanilla"},
		Layout:     analyzer.Layout{Type: "flexbox", Structure: "header-main-footer"},
		Components: []string{"header", "hero", "card", "footer", "main"},
		Palette:    map[string]string{"primary": "#336699", "background": "#fafafa"},
		TextContent: map[string]string{
			"header": "Acme Widgets",
			"footer": "© Acme",
		},
	}
}

func TestGenerate_EmptyModelOutputFallsBack(t *testing.T) {
	// WHAT: with the model returning nothing useful, every required role
	// is filled from templates and the project is still runnable.
	// WHY: the fallback policy is the one hard guarantee of this stage.
	fake := llm.NewFake(`{"files": {}}`)
	g := New(fake, nil)

	proj, err := g.Generate(context.Background(), baseAnalysis(), FrameworkVanilla)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"index.html", "css/styles.css", "js/main.js"} {
		if _, ok := proj.Files[want]; !ok {
			t.Errorf("missing required file %s", want)
		}
	}
	if len(proj.FallbackRoles) != 3 {
		t.Errorf("FallbackRoles = %v, want all three roles", proj.FallbackRoles)
	}
	if !strings.Contains(proj.Files["index.html"], "Acme Widgets") {
		t.Error("template not parameterized with text content")
	}
	if !strings.Contains(proj.Files["css/styles.css"], "#336699") {
		t.Error("template not parameterized with palette")
	}
}

func TestGenerate_ModelErrorFallsBack(t *testing.T) {
	fake := llm.NewFake()
	fake.Err = context.DeadlineExceeded
	g := New(fake, nil)

	proj, err := g.Generate(context.Background(), baseAnalysis(), FrameworkVanilla)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := proj.Files["index.html"]; !ok {
		t.Error("missing entry file after model failure")
	}
}

func TestGenerate_UsableModelFilesKept(t *testing.T) {
	page := "<!DOCTYPE html><html><body><h1>Real generated page with content</h1></body></html>"
	fake := llm.NewFake(`{"files": {
		"index.html": ` + quote(page) + `,
		"css/styles.css": "tiny",
		"notes.txt": "some extra file the model wanted to include"
	}}`)
	g := New(fake, nil)

	proj, err := g.Generate(context.Background(), baseAnalysis(), FrameworkVanilla)
	if err != nil {
		t.Fatal(err)
	}
	if proj.Files["index.html"] != page {
		t.Error("usable model entry file was not kept")
	}
	// "tiny" is below the usability threshold, so the stylesheet role
	// falls back to the template.
	if !strings.Contains(proj.Files["css/styles.css"], "--color-primary") {
		t.Error("unusable stylesheet did not fall back to template")
	}
	if _, ok := proj.Files["notes.txt"]; !ok {
		t.Error("extra usable model file was dropped")
	}
}

func TestGenerate_RejectsUnsafePaths(t *testing.T) {
	fake := llm.NewFake(`{"files": {
		"../escape.html": "<!DOCTYPE html><html><body>escape attempt</body></html>",
		"/etc/passwd": "absolute path attempt with enough content"
	}}`)
	g := New(fake, nil)

	proj, err := g.Generate(context.Background(), baseAnalysis(), FrameworkVanilla)
	if err != nil {
		t.Fatal(err)
	}
	for p := range proj.Files {
		if strings.HasPrefix(p, "..") || strings.HasPrefix(p, "/") {
			t.Errorf("unsafe path survived: %s", p)
		}
	}
}

func TestGenerate_ReactRoles(t *testing.T) {
	fake := llm.NewFake(`{"files": {}}`)
	g := New(fake, nil)

	proj, err := g.Generate(context.Background(), baseAnalysis(), FrameworkReact)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"public/index.html", "src/index.jsx", "src/App.jsx", "src/index.css", "package.json"} {
		if _, ok := proj.Files[want]; !ok {
			t.Errorf("missing %s", want)
		}
	}
	if _, ok := proj.Files["README.md"]; !ok {
		t.Error("missing README.md")
	}
	if _, ok := proj.Files[".gitignore"]; !ok {
		t.Error("missing .gitignore")
	}
}

func TestGenerate_AllFrameworksProduceRunnableSet(t *testing.T) {
	for _, fw := range []string{FrameworkVanilla, FrameworkReact, FrameworkNext, FrameworkVue, FrameworkAngular} {
		t.Run(fw, func(t *testing.T) {
			g := New(llm.NewFake(`{}`), nil)
			proj, err := g.Generate(context.Background(), baseAnalysis(), fw)
			if err != nil {
				t.Fatal(err)
			}
			var hasEntry, hasStyle, hasScript bool
			for p := range proj.Files {
				lower := strings.ToLower(p)
				if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, "index.jsx") {
					hasEntry = true
				}
				if strings.HasSuffix(lower, ".css") {
					hasStyle = true
				}
				if strings.HasSuffix(lower, ".js") || strings.HasSuffix(lower, ".jsx") ||
					strings.HasSuffix(lower, ".ts") || strings.HasSuffix(lower, ".vue") {
					hasScript = true
				}
			}
			if !hasEntry || !hasStyle || !hasScript {
				t.Fatalf("incomplete set for %s: entry=%v style=%v script=%v files=%v",
					fw, hasEntry, hasStyle, hasScript, keys(proj.Files))
			}
		})
	}
}

func TestResolveFramework(t *testing.T) {
	an := &analyzer.Analysis{Framework: analyzer.Framework{Primary: "react"}}
	tests := []struct {
		requested string
		an        *analyzer.Analysis
		def       string
		want      string
	}{
		{"vue", an, "vanilla", "vue"},
		{"nextjs", an, "vanilla", "next"},
		{"plain", an, "vanilla", "vanilla"},
		{"", an, "vanilla", "react"},
		{"", &analyzer.Analysis{Framework: analyzer.Framework{Primary: "unknown"}}, "vanilla", "vanilla"},
		{"cobol", nil, "vanilla", "vanilla"},
		{"", nil, "react", "react"},
	}
	for _, tt := range tests {
		if got := ResolveFramework(tt.requested, tt.an, tt.def); got != tt.want {
			t.Errorf("ResolveFramework(%q, _, %q) = %q, want %q", tt.requested, tt.def, got, tt.want)
		}
	}
}

func TestTemplates_EscapeModelText(t *testing.T) {
	// WHAT: hostile text in the analysis reply comes out entity-escaped in
	// every template that interpolates it.
	// WHY: text_content is model output; a poisoned reply must not plant
	// live markup in the generated project.
	an := baseAnalysis()
	an.TextContent["header"] = `<script>alert(1)</script>`
	an.TextContent["hero"] = `"><img src=x onerror=alert(1)>`
	an.TextContent["main"] = `</p><script>alert(2)</script>`
	an.TextContent["footer"] = `<iframe src="//evil"></iframe>`

	templates := map[string]func(*analyzer.Analysis) string{
		"vanillaIndex":     vanillaIndex,
		"vanillaScript":    vanillaScript,
		"reactApp":         reactApp,
		"nextIndex":        nextIndex,
		"vueApp":           vueApp,
		"angularComponent": angularComponent,
	}
	for name, tmpl := range templates {
		out := tmpl(an)
		if strings.Contains(out, "<script>alert") {
			t.Errorf("%s: script tag survived unescaped", name)
		}
		if strings.Contains(out, "<img src=x") || strings.Contains(out, "<iframe") {
			t.Errorf("%s: injected element survived unescaped", name)
		}
	}
	if !strings.Contains(vanillaIndex(an), "&lt;script&gt;") {
		t.Error("escaped text missing: hostile content was dropped instead of escaped")
	}
}

func TestSiteTitle_CapOnRuneBoundary(t *testing.T) {
	an := baseAnalysis()
	an.TextContent["header"] = strings.Repeat("a", 79) + "日本語"

	got := siteTitle(an)
	if !utf8.ValidString(got) {
		t.Fatalf("title %q is not valid UTF-8", got)
	}
	if got != strings.Repeat("a", 79) {
		t.Fatalf("title = %q, want the cap to back off to the rune boundary", got)
	}
}

func TestUsable(t *testing.T) {
	if Usable("   \n\t  ") {
		t.Error("blank content must not be usable")
	}
	if Usable("short") {
		t.Error("content below threshold must not be usable")
	}
	if !Usable(strings.Repeat("x", MinUsableBytes)) {
		t.Error("content at threshold must be usable")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	proj := &Project{
		Framework: FrameworkVanilla,
		Files: map[string]string{
			"index.html":     "<!DOCTYPE html><html></html>",
			"css/styles.css": "body {}",
		},
	}
	if err := Write(dir, proj); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "css", "styles.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "body {}" {
		t.Fatalf("content = %q", data)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
