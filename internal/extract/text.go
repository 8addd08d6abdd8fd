package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/boardwatch/internal/sources/rules"
)

// textNodes returns every non-blank text node under sel, trimmed, in document order.
func textNodes(sel *goquery.Selection) []string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return parts
}

// paragraphText joins text nodes with blank lines so block boundaries survive.
func paragraphText(sel *goquery.Selection) string {
	return strings.Join(textNodes(sel), "\n\n")
}

// strippedLength counts the runes of the concatenated trimmed text nodes.
func strippedLength(sel *goquery.Selection) int {
	n := 0
	for _, p := range textNodes(sel) {
		n += utf8.RuneCountInString(p)
	}
	return n
}

// Clean splits text into paragraphs, drops blank ones and boilerplate lines,
// and joins the rest with blank lines.
func Clean(text string, boilerplate []string) string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	kept := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" || rules.ContainsAny(b, boilerplate) {
			continue
		}
		kept = append(kept, b)
	}
	return strings.Join(kept, "\n\n")
}

func viable(text string) bool {
	return utf8.RuneCountInString(text) > MinViableLength
}
