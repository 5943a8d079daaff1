// Package search resolves free-text queries against the inverted index.
// Resolution is AND-first: documents matching every query token win, falling
// back to the OR union when the intersection is empty, with a title-substring
// pass for sparse results.
package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/normalizer"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
	"github.com/intranet-tools/hr-knowledge-base/pkg/resilience"
)

// Query tokens of this length or shorter are discarded. One shorter than the
// indexing cutoff, so three-letter words like "clt" still reach the title
// pass and ranking even though nothing indexes them.
const minQueryTokenLength = 2

// Outcome labels for the searches_total metric.
const (
	outcomeIntersection  = "intersection"
	outcomeUnion         = "union"
	outcomeTitleFallback = "title_fallback"
	outcomeZeroResult    = "zero_result"
	outcomeError         = "error"
)

// Resolver answers queries from the store. It never mutates the index.
type Resolver struct {
	store   *store.Store
	metrics *metrics.Metrics
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	cfg     config.SearchConfig
}

func NewResolver(s *store.Store, m *metrics.Metrics, cfg config.SearchConfig) *Resolver {
	if cfg.CandidateThreshold <= 0 {
		cfg.CandidateThreshold = 5
	}
	if cfg.ResolveConcurrency <= 0 {
		cfg.ResolveConcurrency = 8
	}
	return &Resolver{
		store:   s,
		metrics: m,
		breaker: resilience.NewCircuitBreaker("store-reads", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "search"),
		cfg:     cfg,
	}
}

// Search resolves a free-text query into ranked records plus the outcome
// label describing how they were found. A query with no usable tokens yields
// an empty slice. Store failures degrade to partial or empty results rather
// than erroring the whole query.
func (r *Resolver) Search(ctx context.Context, query string) ([]*document.Record, string, error) {
	tokens := normalizer.Tokenize(query, minQueryTokenLength)
	if len(tokens) == 0 {
		r.metrics.SearchesTotal.WithLabelValues(outcomeZeroResult).Inc()
		return []*document.Record{}, outcomeZeroResult, nil
	}

	postings, err := r.fetchPostings(ctx, tokens)
	if err != nil {
		r.metrics.SearchesTotal.WithLabelValues(outcomeError).Inc()
		return []*document.Record{}, outcomeError, nil
	}

	outcome := outcomeIntersection
	candidates := intersect(postings)
	if len(candidates) == 0 {
		candidates = union(postings)
		outcome = outcomeUnion
	}

	records := r.resolve(ctx, candidates)

	if len(records) < r.cfg.CandidateThreshold {
		extra := r.titleMatches(ctx, tokens, records)
		if len(extra) > 0 {
			records = append(records, extra...)
			outcome = outcomeTitleFallback
		}
	}

	if len(records) == 0 {
		outcome = outcomeZeroResult
	}

	rank(records, tokens)
	if r.cfg.MaxResults > 0 && len(records) > r.cfg.MaxResults {
		records = records[:r.cfg.MaxResults]
	}

	r.metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	r.metrics.SearchResultsCount.Observe(float64(len(records)))
	r.logger.Debug("query resolved", "tokens", len(tokens), "outcome", outcome, "results", len(records))
	return records, outcome, nil
}

// fetchPostings reads the posting list of every token concurrently. A token
// without a posting list contributes an empty set.
func (r *Resolver) fetchPostings(ctx context.Context, tokens []string) ([][]string, error) {
	postings := make([][]string, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ResolveConcurrency)
	for i, token := range tokens {
		g.Go(func() error {
			return r.breaker.Execute(func() error {
				ids, err := r.store.Postings(gctx, token)
				if err != nil {
					return err
				}
				postings[i] = ids
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("posting lookup failed", "error", err)
		return nil, err
	}
	return postings, nil
}

// resolve loads candidate records concurrently, dropping ids whose record is
// gone (orphaned postings) and records without a title.
func (r *Resolver) resolve(ctx context.Context, ids []string) []*document.Record {
	sort.Strings(ids)

	var mu sync.Mutex
	records := make([]*document.Record, 0, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ResolveConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			var rec *document.Record
			err := r.breaker.Execute(func() error {
				var err error
				rec, err = r.store.GetRecord(gctx, id)
				if err != nil && !errors.Is(err, apperrors.ErrDocumentNotFound) {
					return err
				}
				return nil
			})
			if err != nil {
				r.logger.Warn("record lookup failed, dropping candidate", "id", id, "error", err)
				return nil
			}
			if rec == nil || rec.Title == "" {
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers swallow their own errors
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// titleMatches scans the whole document set for titles containing any query
// token as a substring, excluding ids already present.
func (r *Resolver) titleMatches(ctx context.Context, tokens []string, have []*document.Record) []*document.Record {
	ids, err := r.store.ListDocuments(ctx)
	if err != nil {
		r.logger.Warn("document scan failed, skipping title pass", "error", err)
		return nil
	}
	seen := make(map[string]struct{}, len(have))
	for _, rec := range have {
		seen[rec.ID] = struct{}{}
	}
	fresh := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	all := r.resolve(ctx, fresh)
	matches := make([]*document.Record, 0, len(all))
	for _, rec := range all {
		title := normalizer.Normalize(rec.Title)
		for _, token := range tokens {
			if strings.Contains(title, token) {
				matches = append(matches, rec)
				break
			}
		}
	}
	return matches
}

// rank orders records by descending token-occurrence score. The sort is
// stable so equal scores keep id order.
func rank(records []*document.Record, tokens []string) {
	scores := make(map[*document.Record]int, len(records))
	for _, rec := range records {
		scores[rec] = score(rec, tokens)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return scores[records[i]] > scores[records[j]]
	})
}

// score counts non-overlapping occurrences of every token across the
// normalised title, keywords, and description.
func score(rec *document.Record, tokens []string) int {
	haystack := normalizer.Normalize(rec.Title + " " + rec.Keywords + " " + rec.Description)
	total := 0
	for _, token := range tokens {
		total += strings.Count(haystack, token)
	}
	return total
}

func intersect(sets [][]string) []string {
	if len(sets) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, set := range sets {
		seen := make(map[string]struct{}, len(set))
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}
	var out []string
	for id, n := range counts {
		if n == len(sets) {
			out = append(out, id)
		}
	}
	return out
}

func union(sets [][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
