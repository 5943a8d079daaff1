// Package parser turns the HTML-like markup produced by the document
// converter into an ordered sequence of typed sections. Blocks are split at
// the top level (headings, paragraphs, lists, tables, blockquotes), stripped
// to a plain-text projection, scanned for inline links, and routed through
// the classifier. Tables are kept verbatim; flattening tabular layout into a
// generic text model loses structure.
package parser

import (
	"regexp"
	"strings"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
)

var (
	openTagRe = regexp.MustCompile(`(?i)<(h[1-6]|p|ul|ol|table|blockquote)(?:\s[^>]*)?>`)
	linkRe    = regexp.MustCompile(`(?is)<a[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	itemRe    = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	brRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	closePRe  = regexp.MustCompile(`(?i)</p>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
)

// Parse splits markup into top-level blocks and returns the classified
// sections in source order. Blocks that strip to empty text are dropped, and
// a block whose closing tag never appears is skipped without aborting the
// rest of the document.
func Parse(markup string) []document.Section {
	var sections []document.Section
	pos := 0
	for pos < len(markup) {
		loc := openTagRe.FindStringSubmatchIndex(markup[pos:])
		if loc == nil {
			break
		}
		openStart := pos + loc[0]
		openEnd := pos + loc[1]
		tag := strings.ToLower(markup[pos+loc[2] : pos+loc[3]])

		closeTag := "</" + tag + ">"
		rel := strings.Index(strings.ToLower(markup[openEnd:]), closeTag)
		if rel < 0 {
			// Unterminated block: skip past the opening tag and continue.
			pos = openEnd
			continue
		}
		inner := markup[openEnd : openEnd+rel]
		raw := markup[openStart : openEnd+rel+len(closeTag)]
		pos = openEnd + rel + len(closeTag)

		if sec, ok := buildSection(tag, inner, raw); ok {
			sections = append(sections, sec)
		}
	}
	return sections
}

func buildSection(tag, inner, raw string) (document.Section, bool) {
	text := StripMarkup(inner)
	if text == "" {
		return document.Section{}, false
	}

	switch {
	case len(tag) == 2 && tag[0] == 'h':
		return document.Section{
			Type:    document.SectionHeading,
			Level:   int(tag[1] - '0'),
			Content: text,
		}, true

	case tag == "p":
		return classifyParagraph(text, inner), true

	case tag == "ul" || tag == "ol":
		return buildList(raw, tag == "ol")

	case tag == "table":
		// Raw markup preserved byte-for-byte; the renderer decomposes it.
		return document.Section{
			Type:    document.SectionTable,
			Content: raw,
			HTML:    raw,
		}, true

	case tag == "blockquote":
		return document.Section{
			Type:    document.SectionBlockquote,
			Content: text,
			HTML:    inner,
		}, true
	}
	return document.Section{}, false
}

func classifyParagraph(text, inner string) document.Section {
	links := ExtractLinks(inner)
	sec := document.Section{
		Type:    ClassifySection(text),
		Content: text,
		HTML:    inner,
		Links:   links,
	}
	switch sec.Type {
	case document.SectionHighlight:
		sec.Variant = ClassifyVariant(text)
	case document.SectionDivider:
		// A divider carries no text payload.
		sec.Content = ""
		sec.HTML = ""
		sec.Links = nil
	}
	return sec
}

func buildList(raw string, ordered bool) (document.Section, bool) {
	matches := itemRe.FindAllStringSubmatch(raw, -1)
	items := make([]document.ListItem, 0, len(matches))
	for _, m := range matches {
		itemHTML := m[1]
		text := StripMarkup(itemHTML)
		if text == "" {
			continue
		}
		items = append(items, document.ListItem{
			Text:  text,
			HTML:  itemHTML,
			Links: ExtractLinks(itemHTML),
		})
	}
	if len(items) == 0 {
		return document.Section{}, false
	}
	return document.Section{
		Type:    document.SectionList,
		Items:   items,
		Ordered: ordered,
	}, true
}

// StripMarkup derives the plain-text projection of a block: line breaks and
// paragraph-closing tags become newlines, remaining tags are deleted, and
// the five standard HTML entities are decoded. The result is trimmed.
func StripMarkup(html string) string {
	s := brRe.ReplaceAllString(html, "\n")
	s = closePRe.ReplaceAllString(s, "\n\n")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	).Replace(s)
	return strings.TrimSpace(s)
}

// ExtractLinks returns the inline hyperlinks of a block in source order, or
// nil when the block has none.
func ExtractLinks(html string) []document.Link {
	matches := linkRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return nil
	}
	links := make([]document.Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, document.Link{
			URL:  m[1],
			Text: tagRe.ReplaceAllString(m[2], ""),
		})
	}
	return links
}
