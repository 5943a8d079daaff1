package document

import (
	"regexp"
	"strings"

	"github.com/intranet-tools/hr-knowledge-base/internal/normalizer"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives the document id from a title: lowercase, diacritics stripped,
// non-alphanumeric runs collapsed to "-", trimmed of leading and trailing
// "-". Deterministic by construction; colliding titles overwrite each other.
func Slug(title string) string {
	s := normalizer.Normalize(title)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
