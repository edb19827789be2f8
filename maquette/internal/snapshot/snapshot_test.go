package snapshot

import (
	"slices"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Acme Widgets</title>
<meta name="description" content="The best widgets on the market.">
<script src="/static/evil.js"></script>
</head>
<body>
<header class="site-header"><h1>Acme Widgets</h1></header>
<nav class="navbar"><a href="/">Home</a><a href="/shop">Shop</a></nav>
<main>
<section class="hero"><h2>Widgets for everyone</h2></section>
<div class="card"><img src="/w1.png"><p>Widget One</p></div>
<div class="card"><img src="/w2.png"><p>Widget Two</p></div>
<form action="/subscribe"><button>Subscribe</button></form>
</main>
<footer class="site-footer">© Acme</footer>
</body>
</html>`

func TestBuild(t *testing.T) {
	b := NewBuilder()
	s, err := b.Build(samplePage)
	if err != nil {
		t.Fatal(err)
	}

	if s.Title != "Acme Widgets" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.MetaDescription != "The best widgets on the market." {
		t.Errorf("MetaDescription = %q", s.MetaDescription)
	}
	if s.LinkCount != 2 {
		t.Errorf("LinkCount = %d, want 2", s.LinkCount)
	}
	if s.ImageCount != 2 {
		t.Errorf("ImageCount = %d, want 2", s.ImageCount)
	}
	if s.FormCount != 1 {
		t.Errorf("FormCount = %d, want 1", s.FormCount)
	}
	if len(s.Headings) == 0 {
		t.Error("no headings extracted")
	}
	if s.Markdown == "" {
		t.Error("empty markdown rendering")
	}
	if strings.Contains(s.Markdown, "evil.js") {
		t.Error("script content leaked into markdown")
	}
}

func TestBuild_MarkdownCapped(t *testing.T) {
	b := NewBuilder()
	huge := "<html><body><p>" + strings.Repeat("word ", 20_000) + "</p></body></html>"
	s, err := b.Build(huge)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Markdown) > MaxMarkdownBytes {
		t.Fatalf("markdown length %d exceeds cap %d", len(s.Markdown), MaxMarkdownBytes)
	}
}

func TestSanitize_StripsScripts(t *testing.T) {
	out := Sanitize(`<p onclick="steal()">hi</p><script>alert(1)</script>`)
	if strings.Contains(out, "script") || strings.Contains(out, "onclick") {
		t.Fatalf("active content survived: %q", out)
	}
	if !strings.Contains(out, "hi") {
		t.Fatalf("text content lost: %q", out)
	}
}

func TestDetectFrameworks(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		primary  string
		css      string
		wantCMS  string
	}{
		{
			name:    "react",
			html:    `<div id="root" data-reactroot></div>`,
			primary: "react",
			css:     "vanilla",
		},
		{
			name:    "next beats react",
			html:    `<script src="/_next/static/chunks/main.js"></script><div data-reactroot></div>`,
			primary: "next",
		},
		{
			name:    "vue",
			html:    `<div data-v-abc123 @click="go"></div>`,
			primary: "vue",
		},
		{
			name:    "angular",
			html:    `<div ng-app="demo"></div>`,
			primary: "angular",
		},
		{
			name: "tailwind",
			html: `<div class="flex bg-white text-lg"></div>`,
			css:  "tailwind",
		},
		{
			name: "bootstrap",
			html: `<link href="bootstrap.min.css"><div class="container-fluid col-md-6"></div>`,
			css:  "bootstrap",
		},
		{
			name:    "wordpress",
			html:    `<link href="/wp-content/themes/x/style.css">`,
			wantCMS: "wordpress",
		},
		{
			name:    "plain page",
			html:    `<html><body><p>hello</p></body></html>`,
			primary: "vanilla",
			css:     "vanilla",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetectFrameworks(tt.html)
			if tt.primary != "" && d.Primary() != tt.primary {
				t.Errorf("Primary = %q, want %q", d.Primary(), tt.primary)
			}
			if tt.css != "" && d.CSS() != tt.css {
				t.Errorf("CSS = %q, want %q", d.CSS(), tt.css)
			}
			if tt.wantCMS != "" && !slices.Contains(d.CMS, tt.wantCMS) {
				t.Errorf("CMS = %v, want %q", d.CMS, tt.wantCMS)
			}
		})
	}
}

func TestDetectComponents(t *testing.T) {
	components := DetectComponents(samplePage)

	for _, want := range []string{"header", "navigation", "hero", "card", "form", "button", "footer", "main"} {
		if !slices.Contains(components, want) {
			t.Errorf("missing component %q in %v", want, components)
		}
	}
}

func TestDetectComponents_AlwaysHasSkeleton(t *testing.T) {
	// WHAT: even a bare page reports header/main/footer.
	// WHY: every scaffold renders at least that structure.
	components := DetectComponents(`<html><body><p>nothing here</p></body></html>`)
	for _, want := range []string{"header", "main", "footer"} {
		if !slices.Contains(components, want) {
			t.Errorf("missing baseline component %q in %v", want, components)
		}
	}
}

func TestCleanText(t *testing.T) {
	in := "  hello ​world\n\n\n\nbye  "
	got := CleanText(in)
	if got != "hello world\n\nbye" {
		t.Fatalf("CleanText = %q", got)
	}
}
