// Package convert turns word-processor documents into the HTML-like markup
// consumed by the structural parser. Only the subset of WordprocessingML the
// parser cares about is mapped: heading styles, paragraphs, list items,
// tables, quote styles, and hyperlinks.
package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
)

// Docx converts .docx bytes into HTML-like markup. The document body is read
// from word/document.xml; hyperlink targets are resolved through the
// relationship table in word/_rels/document.xml.rels.
func Docx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: opening docx archive: %v", apperrors.ErrConversion, err)
	}

	rels, err := readRelationships(zr)
	if err != nil {
		return "", err
	}

	doc := findZipFile(zr, "word/document.xml")
	if doc == nil {
		return "", fmt.Errorf("%w: word/document.xml not found", apperrors.ErrConversion)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: opening document.xml: %v", apperrors.ErrConversion, err)
	}
	defer rc.Close()

	return convertBody(rc, rels)
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// readRelationships maps relationship ids to their external targets.
func readRelationships(zr *zip.Reader) (map[string]string, error) {
	rels := make(map[string]string)
	f := findZipFile(zr, "word/_rels/document.xml.rels")
	if f == nil {
		return rels, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening relationships: %v", apperrors.ErrConversion, err)
	}
	defer rc.Close()

	var parsed struct {
		Relationships []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.NewDecoder(rc).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing relationships: %v", apperrors.ErrConversion, err)
	}
	for _, r := range parsed.Relationships {
		rels[r.ID] = r.Target
	}
	return rels, nil
}

// paragraph accumulates one w:p worth of inline markup plus the properties
// that decide its block tag.
type paragraph struct {
	html     strings.Builder
	style    string
	listItem bool
	numID    string
}

func convertBody(r io.Reader, rels map[string]string) (string, error) {
	decoder := xml.NewDecoder(r)

	var blocks []string
	var para *paragraph
	var listOpen bool
	var listOrdered bool
	var items []string

	var tableDepth int
	var tableRows [][]string
	var cellText strings.Builder
	var rowCells []string

	closeList := func() {
		if !listOpen {
			return
		}
		tag := "ul"
		if listOrdered {
			tag = "ol"
		}
		var b strings.Builder
		b.WriteString("<" + tag + ">")
		for _, it := range items {
			b.WriteString("<li>" + it + "</li>")
		}
		b.WriteString("</" + tag + ">")
		blocks = append(blocks, b.String())
		listOpen = false
		items = nil
	}

	flushParagraph := func() {
		if para == nil {
			return
		}
		inner := strings.TrimSpace(para.html.String())
		if inner == "" {
			para = nil
			return
		}
		switch {
		case para.listItem:
			ordered := strings.Contains(strings.ToLower(para.style), "number")
			if listOpen && listOrdered != ordered {
				closeList()
			}
			if !listOpen {
				listOpen = true
				listOrdered = ordered
			}
			items = append(items, inner)
		default:
			closeList()
			if level := headingLevel(para.style); level > 0 {
				blocks = append(blocks, fmt.Sprintf("<h%d>%s</h%d>", level, inner, level))
			} else if isQuoteStyle(para.style) {
				blocks = append(blocks, "<blockquote>"+inner+"</blockquote>")
			} else {
				blocks = append(blocks, "<p>"+inner+"</p>")
			}
		}
		para = nil
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parsing document.xml: %v", apperrors.ErrConversion, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				flushParagraph()
				closeList()
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					rowCells = nil
				}
			case "tc":
				if tableDepth > 0 {
					cellText.Reset()
				}
			case "p":
				if tableDepth == 0 {
					para = &paragraph{}
				}
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "numPr":
				if para != nil {
					para.listItem = true
				}
			case "numId":
				if para != nil {
					para.numID = attr(t, "val")
				}
			case "hyperlink":
				if para != nil {
					if target, ok := rels[attr(t, "id")]; ok {
						para.html.WriteString(`<a href="` + escapeAttr(target) + `">`)
					} else {
						para.html.WriteString("<a>")
					}
				}
			case "br":
				if para != nil {
					para.html.WriteString("<br/>")
				}
			}

		case xml.CharData:
			if tableDepth > 0 {
				cellText.Write(t)
			} else if para != nil {
				para.html.WriteString(escapeText(string(t)))
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if tableDepth == 0 {
					flushParagraph()
				} else {
					// Paragraph breaks inside a cell become spaces.
					cellText.WriteString(" ")
				}
			case "hyperlink":
				if para != nil {
					para.html.WriteString("</a>")
				}
			case "tc":
				if tableDepth > 0 {
					rowCells = append(rowCells, strings.TrimSpace(cellText.String()))
				}
			case "tr":
				if tableDepth > 0 && len(rowCells) > 0 {
					tableRows = append(tableRows, rowCells)
					rowCells = nil
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(tableRows) > 0 {
					blocks = append(blocks, renderTable(tableRows))
					tableRows = nil
				}
			}
		}
	}
	flushParagraph()
	closeList()

	return strings.Join(blocks, "\n"), nil
}

// headingLevel maps Word paragraph styles to heading levels 1-6. Both the
// English style names and the Portuguese localisations are recognised.
func headingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	for _, prefix := range []string{"heading", "ttulo", "título", "titulo"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	if s == "title" {
		return 1
	}
	if s == "subtitle" {
		return 2
	}
	return 0
}

func isQuoteStyle(style string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return s == "quote" || s == "intensequote" || s == "citação" || s == "citacao"
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func escapeText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func escapeAttr(s string) string {
	return strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func renderTable(rows [][]string) string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + escapeText(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
