package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/model"
)

// Result holds the entries found in a bookmark export.
type Result struct {
	Entries []model.Entry
	Folders int // folder headings flattened away
	Skipped int // links whose target is not a valid location
}

// ParseHTMLBookmarks parses Netscape bookmark HTML into a flat list.
// Folder structure is dropped; link titles become custom names unless they
// just repeat the target or the name derived from it.
func ParseHTMLBookmarks(r io.Reader) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{Entries: []model.Entry{}}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				if getTextContent(n) != "" {
					res.Folders++
				}
				return // Don't recurse into H3

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					return
				}

				loc, err := location.Parse(href)
				if err != nil {
					res.Skipped++
					return
				}

				entry := model.Entry{URI: loc.String(), Name: loc.DisplayName()}
				if title := getTextContent(n); title != "" && title != href && title != entry.URI && title != entry.Name {
					entry.Name = title
					entry.CustomName = &title
				}
				res.Entries = append(res.Entries, entry)
				return // Don't recurse into A
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return res, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
