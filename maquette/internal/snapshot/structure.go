package snapshot

import (
	"strings"

	"golang.org/x/net/html"
)

const maxHeadings = 20

type structure struct {
	title           string
	metaDescription string
	headings        []string
	links           int
	images          int
	forms           int
}

// parseStructure walks the DOM once and collects the structural hints the
// analyzer prompt carries: title, meta description, heading outline and
// element counts.
func parseStructure(rawHTML string) (*structure, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	st := &structure{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if st.title == "" {
					st.title = CleanText(textContent(n))
				}
			case "meta":
				if attr(n, "name") == "description" && st.metaDescription == "" {
					st.metaDescription = CleanText(attr(n, "content"))
				}
			case "h1", "h2", "h3":
				if len(st.headings) < maxHeadings {
					if t := CleanText(textContent(n)); t != "" {
						st.headings = append(st.headings, n.Data+": "+t)
					}
				}
			case "a":
				st.links++
			case "img":
				st.images++
			case "form":
				st.forms++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return st, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
