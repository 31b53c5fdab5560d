package wikipedia

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripHTML flattens an extract's HTML fragment into plain text.
// Paragraphs are separated by blank lines; citation superscripts,
// styles, scripts and empty MediaWiki elements are dropped.
func StripHTML(fragment string) string {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var paragraphs []string
	var b strings.Builder
	flush := func() {
		if text := strings.TrimSpace(b.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		b.Reset()
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			flush()
			collectText(n, &b)
			flush()
			continue
		}
		collectText(n, &b)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}

	if n.Type == html.ElementNode {
		// Skip unwanted elements:
		// - <sup> for citations [1][2]
		// - <style>, <script>
		// - .mw-empty-elt
		if n.DataAtom == atom.Sup || n.DataAtom == atom.Style || n.DataAtom == atom.Script {
			return
		}
		for _, a := range n.Attr {
			if a.Key == "class" && (strings.Contains(a.Val, "mw-empty-elt") || strings.Contains(a.Val, "reference")) {
				return
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
