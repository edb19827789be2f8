package generator

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/maquette/maquette/internal/analyzer"
)

// fileRole is one required slot in a framework's file set. The model may
// fill it under any path matching one of the suffixes; otherwise the
// template does.
type fileRole struct {
	name     string
	path     string
	suffixes []string
	template func(*analyzer.Analysis) string
}

func rolesFor(framework string) []fileRole {
	switch framework {
	case FrameworkVanilla:
		return []fileRole{
			{"entry page", "index.html", []string{"index.html"}, vanillaIndex},
			{"stylesheet", "css/styles.css", []string{".css"}, globalCSS},
			{"script", "js/main.js", []string{"main.js", "index.js", "app.js", "script.js"}, vanillaScript},
		}
	case FrameworkReact:
		return []fileRole{
			{"entry page", "public/index.html", []string{"index.html"}, reactIndexHTML},
			{"bootstrap script", "src/index.jsx", []string{"index.jsx", "index.js", "main.jsx"}, reactIndex},
			{"root component", "src/App.jsx", []string{"app.jsx", "app.js"}, reactApp},
			{"stylesheet", "src/index.css", []string{".css"}, globalCSS},
			{"manifest", "package.json", []string{"package.json"}, reactPackageJSON},
		}
	case FrameworkNext:
		return []fileRole{
			{"app wrapper", "pages/_app.jsx", []string{"_app.jsx", "_app.js"}, nextApp},
			{"entry page", "pages/index.jsx", []string{"index.jsx", "index.js"}, nextIndex},
			{"stylesheet", "styles/globals.css", []string{".css"}, globalCSS},
			{"manifest", "package.json", []string{"package.json"}, nextPackageJSON},
		}
	case FrameworkVue:
		return []fileRole{
			{"entry page", "public/index.html", []string{"index.html"}, vueIndexHTML},
			{"bootstrap script", "src/main.js", []string{"main.js"}, vueMain},
			{"root component", "src/App.vue", []string{"app.vue"}, vueApp},
			{"stylesheet", "src/assets/main.css", []string{".css"}, globalCSS},
			{"manifest", "package.json", []string{"package.json"}, vuePackageJSON},
		}
	case FrameworkAngular:
		return []fileRole{
			{"entry page", "src/index.html", []string{"index.html"}, angularIndexHTML},
			{"bootstrap script", "src/main.ts", []string{"main.ts"}, angularMain},
			{"root component", "src/app/app.component.ts", []string{"app.component.ts"}, angularComponent},
			{"stylesheet", "src/styles.css", []string{".css"}, globalCSS},
			{"manifest", "package.json", []string{"package.json"}, angularPackageJSON},
		}
	}
	return nil
}

// --- shared template inputs ---

// siteTitle and textFor feed model-supplied text straight into markup, so
// both escape it; the analysis reply is untrusted input.

func siteTitle(an *analyzer.Analysis) string {
	for _, key := range []string{"header", "hero", "main"} {
		if t := strings.TrimSpace(an.TextContent[key]); t != "" {
			if i := strings.IndexByte(t, '\n'); i > 0 {
				t = t[:i]
			}
			if len(t) > 80 {
				cut := 80
				for cut > 0 && !utf8.RuneStart(t[cut]) {
					cut--
				}
				t = t[:cut]
			}
			return html.EscapeString(t)
		}
	}
	return "Cloned Site"
}

func textFor(an *analyzer.Analysis, component, fallback string) string {
	if t := strings.TrimSpace(an.TextContent[component]); t != "" {
		return html.EscapeString(t)
	}
	return fallback
}

func color(an *analyzer.Analysis, key, fallback string) string {
	if c, ok := an.Palette[key]; ok {
		return c
	}
	return fallback
}

func primaryFont(an *analyzer.Analysis) string {
	if f := strings.TrimSpace(an.Typography.PrimaryFont); f != "" {
		return f
	}
	return "system-ui, sans-serif"
}

// --- vanilla ---

func vanillaIndex(an *analyzer.Analysis) string {
	var sections strings.Builder
	for _, c := range an.Components {
		switch c {
		case "header", "main", "footer", "navigation":
			continue
		}
		fmt.Fprintf(&sections, "    <section class=%q>\n      <h2>%s</h2>\n    </section>\n",
			c, capitalize(c))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <link rel="stylesheet" href="css/styles.css">
</head>
<body>
  <header>
    <h1>%s</h1>
  </header>
  <main>
%s  </main>
  <footer>
    <p>%s</p>
  </footer>
  <script src="js/main.js"></script>
</body>
</html>
`, siteTitle(an), textFor(an, "header", siteTitle(an)), sections.String(), textFor(an, "footer", siteTitle(an)))
}

func vanillaScript(an *analyzer.Analysis) string {
	return fmt.Sprintf(`document.addEventListener('DOMContentLoaded', () => {
  console.log('%s loaded');
  document.querySelectorAll('a[href^="#"]').forEach((link) => {
    link.addEventListener('click', (e) => {
      const target = document.querySelector(link.getAttribute('href'));
      if (target) {
        e.preventDefault();
        target.scrollIntoView({ behavior: 'smooth' });
      }
    });
  });
});
`, siteTitle(an))
}

func globalCSS(an *analyzer.Analysis) string {
	return fmt.Sprintf(`:root {
  --color-primary: %s;
  --color-secondary: %s;
  --color-background: %s;
  --color-text: %s;
}

* { box-sizing: border-box; margin: 0; padding: 0; }

body {
  font-family: %s;
  background: var(--color-background);
  color: var(--color-text);
  line-height: 1.6;
}

header {
  background: var(--color-primary);
  color: var(--color-background);
  padding: 1.5rem 2rem;
}

main {
  max-width: 960px;
  margin: 0 auto;
  padding: 2rem;
}

section { padding: 2rem 0; }

footer {
  background: var(--color-secondary);
  color: var(--color-background);
  padding: 1rem 2rem;
  text-align: center;
}
`, color(an, "primary", "#1a1a2e"), color(an, "secondary", "#16213e"),
		color(an, "background", "#ffffff"), color(an, "text", "#1a1a1a"),
		primaryFont(an))
}

// --- react ---

func reactIndexHTML(an *analyzer.Analysis) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
</head>
<body>
  <div id="root"></div>
</body>
</html>
`, siteTitle(an))
}

func reactIndex(an *analyzer.Analysis) string {
	return `import React from 'react';
import ReactDOM from 'react-dom/client';
import App from './App';
import './index.css';

ReactDOM.createRoot(document.getElementById('root')).render(<App />);
`
}

func reactApp(an *analyzer.Analysis) string {
	return fmt.Sprintf(`export default function App() {
  return (
    <div className="app">
      <header>
        <h1>%s</h1>
      </header>
      <main>
        <p>%s</p>
      </main>
      <footer>
        <p>%s</p>
      </footer>
    </div>
  );
}
`, textFor(an, "header", siteTitle(an)),
		textFor(an, "main", "Generated clone scaffold."),
		textFor(an, "footer", siteTitle(an)))
}

func reactPackageJSON(an *analyzer.Analysis) string {
	return packageJSON(an, map[string]string{
		"react":     "^18.2.0",
		"react-dom": "^18.2.0",
	}, map[string]string{
		"dev":   "vite",
		"build": "vite build",
	})
}

// --- next ---

func nextApp(an *analyzer.Analysis) string {
	return `import '../styles/globals.css';

export default function MyApp({ Component, pageProps }) {
  return <Component {...pageProps} />;
}
`
}

func nextIndex(an *analyzer.Analysis) string {
	return fmt.Sprintf(`export default function Home() {
  return (
    <div>
      <header>
        <h1>%s</h1>
      </header>
      <main>
        <p>%s</p>
      </main>
      <footer>
        <p>%s</p>
      </footer>
    </div>
  );
}
`, textFor(an, "header", siteTitle(an)),
		textFor(an, "main", "Generated clone scaffold."),
		textFor(an, "footer", siteTitle(an)))
}

func nextPackageJSON(an *analyzer.Analysis) string {
	return packageJSON(an, map[string]string{
		"next":      "^14.0.0",
		"react":     "^18.2.0",
		"react-dom": "^18.2.0",
	}, map[string]string{
		"dev":   "next dev",
		"build": "next build",
		"start": "next start",
	})
}

// --- vue ---

func vueIndexHTML(an *analyzer.Analysis) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
</head>
<body>
  <div id="app"></div>
  <script type="module" src="/src/main.js"></script>
</body>
</html>
`, siteTitle(an))
}

func vueMain(an *analyzer.Analysis) string {
	return `import { createApp } from 'vue';
import App from './App.vue';
import './assets/main.css';

createApp(App).mount('#app');
`
}

func vueApp(an *analyzer.Analysis) string {
	return fmt.Sprintf(`<template>
  <div class="app">
    <header>
      <h1>%s</h1>
    </header>
    <main>
      <p>%s</p>
    </main>
    <footer>
      <p>%s</p>
    </footer>
  </div>
</template>

<script>
export default { name: 'App' };
</script>
`, textFor(an, "header", siteTitle(an)),
		textFor(an, "main", "Generated clone scaffold."),
		textFor(an, "footer", siteTitle(an)))
}

func vuePackageJSON(an *analyzer.Analysis) string {
	return packageJSON(an, map[string]string{
		"vue": "^3.4.0",
	}, map[string]string{
		"dev":   "vite",
		"build": "vite build",
	})
}

// --- angular ---

func angularIndexHTML(an *analyzer.Analysis) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
</head>
<body>
  <app-root></app-root>
</body>
</html>
`, siteTitle(an))
}

func angularMain(an *analyzer.Analysis) string {
	return `import { bootstrapApplication } from '@angular/platform-browser';
import { AppComponent } from './app/app.component';

bootstrapApplication(AppComponent).catch((err) => console.error(err));
`
}

func angularComponent(an *analyzer.Analysis) string {
	return fmt.Sprintf(`import { Component } from '@angular/core';

@Component({
  selector: 'app-root',
  standalone: true,
  template: `+"`"+`
    <header><h1>%s</h1></header>
    <main><p>%s</p></main>
    <footer><p>%s</p></footer>
  `+"`"+`,
})
export class AppComponent {}
`, textFor(an, "header", siteTitle(an)),
		textFor(an, "main", "Generated clone scaffold."),
		textFor(an, "footer", siteTitle(an)))
}

func angularPackageJSON(an *analyzer.Analysis) string {
	return packageJSON(an, map[string]string{
		"@angular/core":             "^17.0.0",
		"@angular/platform-browser": "^17.0.0",
	}, map[string]string{
		"start": "ng serve",
		"build": "ng build",
	})
}

// --- shared files ---

func packageJSON(an *analyzer.Analysis, deps, scripts map[string]string) string {
	manifest := map[string]any{
		"name":         slugify(siteTitle(an)),
		"version":      "0.1.0",
		"private":      true,
		"scripts":      scripts,
		"dependencies": deps,
	}
	out, _ := json.MarshalIndent(manifest, "", "  ")
	return string(out) + "\n"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	prevDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "cloned-site"
	}
	return out
}

func readmeTemplate(an *analyzer.Analysis, framework string) string {
	var run string
	switch framework {
	case FrameworkVanilla:
		run = "Open `index.html` in a browser."
	case FrameworkAngular:
		run = "```\nnpm install\nnpm start\n```"
	default:
		run = "```\nnpm install\nnpm run dev\n```"
	}
	return fmt.Sprintf(`# %s

Front-end scaffold generated from a captured website (%s).

## Running

%s
`, siteTitle(an), framework, run)
}

func gitignoreTemplate(framework string) string {
	common := `node_modules/
dist/
build/
.env
.DS_Store
`
	switch framework {
	case FrameworkNext:
		return common + ".next/\nout/\n"
	case FrameworkAngular:
		return common + ".angular/\n"
	case FrameworkVanilla:
		return ".DS_Store\n"
	}
	return common
}
