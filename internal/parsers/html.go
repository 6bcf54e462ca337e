package parsers

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// HTML extracts the title, visible text and link targets of an HTML document.
type HTML struct{}

func (HTML) Name() string { return "html" }

func (h HTML) Parse(_ context.Context, id, raw string) (content.Parsed, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, parseError(err, h.Name(), id, "invalid html")
	}

	var (
		title string
		words []string
		links = []string{}
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			case atom.Title:
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case atom.A:
				for _, attr := range n.Attr {
					if attr.Key == "href" && attr.Val != "" {
						links = append(links, attr.Val)
					}
				}
			}
		}
		if n.Type == html.TextNode {
			words = append(words, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return content.Parsed{
		content.KeyID:   id,
		content.KeyBody: strings.Join(words, " "),
		"title":         title,
		"links":         links,
	}, nil
}
