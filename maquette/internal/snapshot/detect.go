package snapshot

import (
	"regexp"
	"strings"
)

// Detection carries the framework markers found in captured HTML,
// split by what they tell the generator: JS framework, CSS framework, CMS.
type Detection struct {
	Frameworks    []string
	CSSFrameworks []string
	CMS           []string
}

// Primary returns the first detected JS framework, or "vanilla".
func (d Detection) Primary() string {
	if len(d.Frameworks) > 0 {
		return d.Frameworks[0]
	}
	return "vanilla"
}

// CSS returns the first detected CSS framework, or "vanilla".
func (d Detection) CSS() string {
	if len(d.CSSFrameworks) > 0 {
		return d.CSSFrameworks[0]
	}
	return "vanilla"
}

// Marker order matters: the first matching indicator claims the framework,
// and specific SSR frameworks (next, nuxt) are listed before their base
// framework so "_next" pages report next rather than just react.
var frameworkMarkers = []struct {
	name       string
	kind       string // "js", "css", "cms"
	indicators []string
}{
	{"next", "js", []string{"_next", "__next", "next.js"}},
	{"nuxt", "js", []string{"_nuxt", "__nuxt", "nuxt.js"}},
	{"react", "js", []string{"react", "_react", "jsx", "data-reactroot", "__react_devtools"}},
	{"vue", "js", []string{"vue", "_vue", "v-", "@click", "data-v-"}},
	{"angular", "js", []string{"ng-", "[ng", "angular", "_angular"}},
	{"svelte", "js", []string{"svelte", "_svelte"}},
	{"bootstrap", "css", []string{"bootstrap", "btn-", "col-", "container-fluid"}},
	{"tailwind", "css", []string{"tailwind", "tw-", "text-", "bg-", "flex", "grid"}},
	{"material-ui", "css", []string{"mui", "material-ui", "makestyles"}},
	{"chakra", "css", []string{"chakra-ui"}},
	{"wordpress", "cms", []string{"wp-content", "wordpress", "wp-"}},
	{"shopify", "cms", []string{"shopify", "liquid", "theme_id"}},
}

// DetectFrameworks scans raw HTML for framework markers. Substring matching
// over the lowercased document, same indicator sets the analysis prompt
// declares as hints. Cheap and deliberately permissive: the vision model
// gets the hints, it does not have to trust them.
func DetectFrameworks(rawHTML string) Detection {
	lower := strings.ToLower(rawHTML)
	var d Detection
	for _, fm := range frameworkMarkers {
		for _, ind := range fm.indicators {
			if !strings.Contains(lower, ind) {
				continue
			}
			switch fm.kind {
			case "js":
				d.Frameworks = append(d.Frameworks, fm.name)
			case "css":
				d.CSSFrameworks = append(d.CSSFrameworks, fm.name)
			case "cms":
				d.CMS = append(d.CMS, fm.name)
			}
			break
		}
	}
	return d
}

var componentIndicators = []struct {
	name     string
	patterns []*regexp.Regexp
}{
	{"header", compileAll(`<header`, `class[^>]*header`, `id[^>]*header`)},
	{"navigation", compileAll(`<nav`, `class[^>]*nav`, `navbar`, `menu`)},
	{"hero", compileAll(`class[^>]*hero`, `class[^>]*banner`, `class[^>]*jumbotron`)},
	{"main", compileAll(`<main`, `class[^>]*main`, `id[^>]*main`)},
	{"content", compileAll(`class[^>]*content`, `class[^>]*article`)},
	{"sidebar", compileAll(`class[^>]*sidebar`, `class[^>]*aside`, `<aside`)},
	{"footer", compileAll(`<footer`, `class[^>]*footer`, `id[^>]*footer`)},
	{"card", compileAll(`class[^>]*card`, `class[^>]*tile`)},
	{"form", compileAll(`<form`, `class[^>]*form`)},
	{"button", compileAll(`<button`, `class[^>]*btn`)},
	{"modal", compileAll(`class[^>]*modal`, `class[^>]*popup`)},
	{"carousel", compileAll(`class[^>]*carousel`, `class[^>]*slider`)},
	{"gallery", compileAll(`class[^>]*gallery`, `class[^>]*grid`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// DetectComponents reports the page sections recognizable from markup.
// header, main and footer are always present in the result: every scaffold
// gets at least that skeleton even when the page hides its structure.
func DetectComponents(rawHTML string) []string {
	lower := strings.ToLower(rawHTML)
	var components []string
	seen := make(map[string]bool)

	for _, ci := range componentIndicators {
		for _, re := range ci.patterns {
			if re.MatchString(lower) {
				if !seen[ci.name] {
					components = append(components, ci.name)
					seen[ci.name] = true
				}
				break
			}
		}
	}

	for _, basic := range []string{"header", "main", "footer"} {
		if !seen[basic] {
			components = append(components, basic)
			seen[basic] = true
		}
	}
	return components
}
