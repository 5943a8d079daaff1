// Package index keeps the inverted index consistent with the record store.
// Every write path goes through the Maintainer so posting lists never point
// at stale or missing records for longer than a single in-flight update.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/normalizer"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
)

// Terms of this length or shorter never get a posting list. Matches the
// keyword extraction cutoff.
const minTermLength = 3

// Maintainer applies record writes and the matching posting-list updates.
type Maintainer struct {
	store       *store.Store
	metrics     *metrics.Metrics
	logger      *slog.Logger
	concurrency int
}

func NewMaintainer(s *store.Store, m *metrics.Metrics, concurrency int) *Maintainer {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Maintainer{
		store:       s,
		metrics:     m,
		logger:      slog.Default().With("component", "index"),
		concurrency: concurrency,
	}
}

// indexTerms derives the posting terms of a record from its keywords field.
func indexTerms(rec *document.Record) []string {
	tokens := normalizer.Tokenize(rec.Keywords, minTermLength)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

// Index writes a record, registers it in the document set, and adds it to
// the posting list of every index term. Posting writes fan out concurrently.
func (m *Maintainer) Index(ctx context.Context, rec *document.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("indexing: empty document id: %w", apperrors.ErrInvalidInput)
	}
	if err := m.store.PutRecord(ctx, rec); err != nil {
		return err
	}
	if err := m.store.AddDocument(ctx, rec.ID); err != nil {
		return fmt.Errorf("registering %s: %w", rec.ID, err)
	}

	terms := indexTerms(rec)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, term := range terms {
		g.Go(func() error {
			return m.store.AddPosting(gctx, term, rec.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("writing postings for %s: %w", rec.ID, err)
	}
	m.metrics.PostingsWritten.Add(float64(len(terms)))
	m.logger.Info("document indexed", "id", rec.ID, "terms", len(terms))
	return nil
}

// Reindex replaces a document: postings from the previous version are
// removed before the new version is indexed, so terms that disappeared do
// not keep pointing at the record.
func (m *Maintainer) Reindex(ctx context.Context, rec *document.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("reindexing: empty document id: %w", apperrors.ErrInvalidInput)
	}
	old, err := m.store.GetRecord(ctx, rec.ID)
	switch {
	case err == nil:
		if err := m.removeTerms(ctx, rec.ID, indexTerms(old)); err != nil {
			return err
		}
	case errors.Is(err, apperrors.ErrDocumentNotFound):
		// First write under this id, nothing to clean up.
	default:
		// The old record is unreadable but postings may still reference it.
		// Fall back to scanning the whole vocabulary.
		m.logger.Warn("previous record unreadable, scanning postings", "id", rec.ID, "error", err)
		if err := m.removeFromAllPostings(ctx, rec.ID); err != nil {
			return err
		}
	}
	return m.Index(ctx, rec)
}

// Delete removes a document from the index, the document set, and the store.
// Deleting an unknown id returns ErrDocumentNotFound.
func (m *Maintainer) Delete(ctx context.Context, id string) error {
	rec, err := m.store.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if err := m.removeTerms(ctx, id, indexTerms(rec)); err != nil {
		return err
	}
	if err := m.store.RemoveDocument(ctx, id); err != nil {
		return fmt.Errorf("deregistering %s: %w", id, err)
	}
	if err := m.store.DeleteRecord(ctx, id); err != nil {
		return err
	}
	m.metrics.DocumentsDeleted.Inc()
	m.logger.Info("document deleted", "id", id)
	return nil
}

func (m *Maintainer) removeTerms(ctx context.Context, id string, terms []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, term := range terms {
		g.Go(func() error {
			return m.store.RemovePosting(gctx, term, id)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("removing postings for %s: %w", id, err)
	}
	m.metrics.PostingsRemoved.Add(float64(len(terms)))
	return nil
}

// removeFromAllPostings walks every posting list and drops the id. Slow, used
// only when the previous record cannot be read.
func (m *Maintainer) removeFromAllPostings(ctx context.Context, id string) error {
	terms, err := m.store.PostingTerms(ctx)
	if err != nil {
		return fmt.Errorf("scanning postings for %s: %w", id, err)
	}
	return m.removeTerms(ctx, id, terms)
}
