package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
)

// Store exposes record, document-set, and posting-list operations over a KV
// backend.
type Store struct {
	kv     KV
	logger *slog.Logger
}

func New(kv KV) *Store {
	return &Store{
		kv:     kv,
		logger: slog.Default().With("component", "store"),
	}
}

// PutRecord writes a full record, replacing any previous version under the
// same id. Records are never partially patched.
func (s *Store) PutRecord(ctx context.Context, rec *document.Record) error {
	sections, err := json.Marshal(rec.Sections)
	if err != nil {
		return fmt.Errorf("marshaling sections for %s: %w", rec.ID, err)
	}
	color, err := json.Marshal(rec.Color)
	if err != nil {
		return fmt.Errorf("marshaling color for %s: %w", rec.ID, err)
	}
	fields := map[string]string{
		"id":            rec.ID,
		"title":         rec.Title,
		"keywords":      rec.Keywords,
		"description":   rec.Description,
		"content":       rec.Content,
		"sections":      string(sections),
		"icon":          rec.Icon,
		"color":         string(color),
		"externalLink":  rec.ExternalLink,
		"createdAt":     rec.CreatedAt.UTC().Format(time.RFC3339),
		"sourceLocator": rec.SourceLocator,
	}
	if err := s.kv.HSet(ctx, recordKey(rec.ID), fields); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	return nil
}

// GetRecord reads a record by id, returning ErrDocumentNotFound when the key
// is absent.
func (s *Store) GetRecord(ctx context.Context, id string) (*document.Record, error) {
	fields, err := s.kv.HGetAll(ctx, recordKey(id))
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("record %s: %w", id, apperrors.ErrDocumentNotFound)
	}
	rec := &document.Record{
		ID:            fields["id"],
		Title:         fields["title"],
		Keywords:      fields["keywords"],
		Description:   fields["description"],
		Content:       fields["content"],
		Icon:          fields["icon"],
		ExternalLink:  fields["externalLink"],
		SourceLocator: fields["sourceLocator"],
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if raw := fields["sections"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Sections); err != nil {
			// A corrupt sections blob degrades to an unstructured record.
			s.logger.Warn("unparseable sections field", "id", id, "error", err)
		}
	}
	if raw := fields["color"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Color); err != nil {
			s.logger.Warn("unparseable color field", "id", id, "error", err)
		}
	}
	if raw := fields["createdAt"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec, nil
}

// DeleteRecord removes a record hash.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	if err := s.kv.Del(ctx, recordKey(id)); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// AddDocument registers an id in the global document set.
func (s *Store) AddDocument(ctx context.Context, id string) error {
	return s.kv.SAdd(ctx, allDocsKey, id)
}

// RemoveDocument drops an id from the global document set.
func (s *Store) RemoveDocument(ctx context.Context, id string) error {
	return s.kv.SRem(ctx, allDocsKey, id)
}

// ListDocuments returns every live document id, unordered.
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	return s.kv.SMembers(ctx, allDocsKey)
}

// CountDocuments returns the size of the global document set.
func (s *Store) CountDocuments(ctx context.Context) (int64, error) {
	return s.kv.SCard(ctx, allDocsKey)
}

// AddPosting adds an id to the posting list of a normalised term.
func (s *Store) AddPosting(ctx context.Context, term, id string) error {
	return s.kv.SAdd(ctx, postingKey(term), id)
}

// RemovePosting drops an id from the posting list of a normalised term.
func (s *Store) RemovePosting(ctx context.Context, term, id string) error {
	return s.kv.SRem(ctx, postingKey(term), id)
}

// Postings returns the document ids indexed under a normalised term. A term
// with no posting list yields an empty slice.
func (s *Store) Postings(ctx context.Context, term string) ([]string, error) {
	return s.kv.SMembers(ctx, postingKey(term))
}

// PostingTerms lists every term that currently has a posting list. This
// walks the whole vocabulary; callers treat it as a slow path.
func (s *Store) PostingTerms(ctx context.Context) ([]string, error) {
	keys, err := s.kv.ScanKeys(ctx, postingPattern)
	if err != nil {
		return nil, err
	}
	terms := make([]string, 0, len(keys))
	for _, k := range keys {
		terms = append(terms, termFromPostingKey(k))
	}
	return terms, nil
}

// CountTerms returns the current vocabulary size.
func (s *Store) CountTerms(ctx context.Context) (int, error) {
	keys, err := s.kv.ScanKeys(ctx, postingPattern)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
