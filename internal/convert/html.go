package convert

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
)

// HTML normalises an arbitrary HTML document into the block markup the
// structural parser expects: only top-level headings, paragraphs, lists,
// tables, and blockquotes survive, with inline anchors and line breaks kept.
// Script, style, and navigation boilerplate are discarded.
func HTML(data []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("%w: parsing html: %v", apperrors.ErrConversion, err)
	}
	var blocks []string
	walkBlocks(doc, &blocks)
	return strings.Join(blocks, "\n"), nil
}

func walkBlocks(n *html.Node, blocks *[]string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Header:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			inner := renderInline(n)
			if strings.TrimSpace(inner) != "" {
				*blocks = append(*blocks, fmt.Sprintf("<h%d>%s</h%d>", level, inner, level))
			}
			return
		case atom.P, atom.Blockquote:
			inner := renderInline(n)
			if strings.TrimSpace(inner) != "" {
				*blocks = append(*blocks, "<"+n.Data+">"+inner+"</"+n.Data+">")
			}
			return
		case atom.Ul, atom.Ol:
			if block := renderList(n); block != "" {
				*blocks = append(*blocks, block)
			}
			return
		case atom.Table:
			if block := renderHTMLTable(n); block != "" {
				*blocks = append(*blocks, block)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkBlocks(c, blocks)
	}
}

// renderInline flattens a node's children to text plus the inline tags the
// parser understands: anchors and <br/>.
func renderInline(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderInlineNode(c, &b)
	}
	return strings.TrimSpace(b.String())
}

func renderInlineNode(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(escapeText(n.Data))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.WriteString("<br/>")
			return
		case atom.A:
			href := ""
			for _, a := range n.Attr {
				if a.Key == "href" {
					href = a.Val
				}
			}
			b.WriteString(`<a href="` + escapeAttr(href) + `">`)
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				renderInlineNode(c, b)
			}
			b.WriteString("</a>")
			return
		case atom.Script, atom.Style:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderInlineNode(c, b)
	}
}

func renderList(n *html.Node) string {
	tag := n.Data
	var items []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			inner := renderInline(c)
			if inner != "" {
				items = append(items, inner)
			}
		}
	}
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, it := range items {
		b.WriteString("<li>" + it + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func renderHTMLTable(n *html.Node) string {
	var rows [][]string
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					cells = append(cells, collectText(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(n)
	if len(rows) == 0 {
		return ""
	}
	return renderTable(rows)
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
