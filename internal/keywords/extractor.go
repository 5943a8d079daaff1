// Package keywords derives the index terms of a document from its plain
// text. Two strategies are supported: the full distinct vocabulary
// (maximum recall, larger posting lists) or the top-N most frequent words
// (bounded index, rare terms may be missed). Title words and explicit tags
// are always merged in regardless of strategy, titles being higher-signal
// than body text.
package keywords

import (
	"sort"

	"github.com/intranet-tools/hr-knowledge-base/internal/normalizer"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
)

// Index terms shorter than this are never stored.
const minWordLength = 3

type Strategy string

const (
	StrategyFull Strategy = "full"
	StrategyTop  Strategy = "top"
)

type Extractor struct {
	strategy Strategy
	topN     int
}

// New creates an Extractor from config, defaulting to the full-vocabulary
// strategy and a top-N of 20.
func New(cfg config.KeywordsConfig) *Extractor {
	strategy := Strategy(cfg.Strategy)
	if strategy != StrategyTop {
		strategy = StrategyFull
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = 20
	}
	return &Extractor{strategy: strategy, topN: topN}
}

// Extract returns the de-duplicated keyword list for a document. Content
// words are selected per strategy; title and tag words are appended
// unconditionally.
func (e *Extractor) Extract(content, title string, tags []string) []string {
	var words []string
	switch e.strategy {
	case StrategyTop:
		words = topFrequent(normalizer.Tokenize(content, minWordLength), e.topN)
	default:
		words = normalizer.Tokenize(content, minWordLength)
	}

	words = append(words, normalizer.Tokenize(title, minWordLength)...)
	for _, tag := range tags {
		words = append(words, normalizer.Tokenize(tag, minWordLength)...)
	}

	seen := make(map[string]struct{}, len(words))
	unique := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	return unique
}

// topFrequent keeps the n most frequent tokens, ties broken alphabetically
// for determinism.
func topFrequent(tokens []string, n int) []string {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	distinct := make([]string, 0, len(freq))
	for t := range freq {
		distinct = append(distinct, t)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if freq[distinct[i]] != freq[distinct[j]] {
			return freq[distinct[i]] > freq[distinct[j]]
		}
		return distinct[i] < distinct[j]
	})
	if len(distinct) > n {
		distinct = distinct[:n]
	}
	return distinct
}
