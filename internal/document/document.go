// Package document defines the content model shared by the parser, the
// store, the search resolver, and the rendering layer: typed sections with
// preserved inline markup, and the canonical per-document record.
package document

import "time"

// SectionType identifies the structural kind of a content block.
type SectionType string

const (
	SectionHeading    SectionType = "heading"
	SectionParagraph  SectionType = "paragraph"
	SectionHighlight  SectionType = "highlight"
	SectionList       SectionType = "list"
	SectionTable      SectionType = "table"
	SectionCallout    SectionType = "callout"
	SectionBlockquote SectionType = "blockquote"
	SectionDivider    SectionType = "divider"
	SectionContact    SectionType = "contact"
	SectionTimeline   SectionType = "timeline"
)

// Variant is the secondary semantic tag on a highlight or callout section.
type Variant string

const (
	VariantInfo      Variant = "info"
	VariantWarning   Variant = "warning"
	VariantSuccess   Variant = "success"
	VariantError     Variant = "error"
	VariantTip       Variant = "tip"
	VariantNote      Variant = "note"
	VariantDeadline  Variant = "deadline"
	VariantImportant Variant = "important"
)

// Link is an inline hyperlink extracted from a block's raw markup,
// in block-relative order.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ListItem is one entry of an ordered or unordered list. HTML keeps the raw
// item markup so inline links stay renderable.
type ListItem struct {
	Text  string `json:"text"`
	HTML  string `json:"html,omitempty"`
	Links []Link `json:"links,omitempty"`
}

// Section is one classified block of structured content. The populated
// fields depend on Type; the JSON shape is the contract consumed by the
// rendering layer. Links is nil (absent) when a block carries no hyperlinks,
// never an empty slice.
type Section struct {
	Type    SectionType `json:"type"`
	Level   int         `json:"level,omitempty"`
	Content string      `json:"content,omitempty"`
	HTML    string      `json:"html,omitempty"`
	Links   []Link      `json:"links,omitempty"`
	Items   []ListItem  `json:"items,omitempty"`
	Ordered bool        `json:"ordered,omitempty"`
	Variant Variant     `json:"variant,omitempty"`
	Title   string      `json:"title,omitempty"`
	Author  string      `json:"author,omitempty"`
	Label   string      `json:"label,omitempty"`
}

// Color holds the presentation colors attached to a record.
type Color struct {
	Bg   string `json:"bg"`
	Text string `json:"text"`
}

// Record is the canonical per-document record persisted in the key-value
// store. ID is a pure function of Title (see Slug); two titles that
// normalise to the same slug are one logical document, last write wins.
type Record struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Keywords      string    `json:"keywords"`
	Description   string    `json:"description"`
	Content       string    `json:"content"`
	Sections      []Section `json:"sections"`
	Icon          string    `json:"icon"`
	Color         Color     `json:"color"`
	ExternalLink  string    `json:"externalLink"`
	CreatedAt     time.Time `json:"createdAt"`
	SourceLocator string    `json:"sourceLocator,omitempty"`
}

// Defaults applied at ingestion time when a record carries no explicit
// presentation hints.
const (
	DefaultIcon = "file-text"
)

// DefaultColor is the presentation color used when none is supplied.
func DefaultColor() Color {
	return Color{Bg: "blue", Text: "white"}
}
