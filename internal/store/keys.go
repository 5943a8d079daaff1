package store

import "strings"

// Key scheme:
//
//	doc:<id>       hash   one document record
//	docs:all       set    ids of every live document
//	search:<term>  set    posting list: ids of documents indexed under term
const (
	recordPrefix   = "doc:"
	postingPrefix  = "search:"
	allDocsKey     = "docs:all"
	postingPattern = postingPrefix + "*"
)

func recordKey(id string) string {
	return recordPrefix + id
}

func postingKey(term string) string {
	return postingPrefix + term
}

func termFromPostingKey(key string) string {
	return strings.TrimPrefix(key, postingPrefix)
}
