package index

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.New()

func newTestMaintainer() (*Maintainer, *store.Store) {
	s := store.New(store.NewMemoryKV())
	return NewMaintainer(s, testMetrics, 4), s
}

func record(id, title, keywords string) *document.Record {
	return &document.Record{
		ID:       id,
		Title:    title,
		Keywords: keywords,
		Icon:     document.DefaultIcon,
		Color:    document.DefaultColor(),
	}
}

func postingIDs(t *testing.T, s *store.Store, term string) []string {
	t.Helper()
	ids, err := s.Postings(context.Background(), term)
	if err != nil {
		t.Fatalf("Postings(%s): %v", term, err)
	}
	sort.Strings(ids)
	return ids
}

func TestIndexWritesRecordAndPostings(t *testing.T) {
	m, s := newTestMaintainer()
	ctx := context.Background()

	rec := record("politica-de-ferias", "Política de Férias", "politica ferias remuneradas")
	if err := m.Index(ctx, rec); err != nil {
		t.Fatalf("Index: %v", err)
	}

	if _, err := s.GetRecord(ctx, rec.ID); err != nil {
		t.Errorf("record not stored: %v", err)
	}
	ids, err := s.ListDocuments(ctx)
	if err != nil || len(ids) != 1 || ids[0] != rec.ID {
		t.Errorf("document set = %v (err %v)", ids, err)
	}
	for _, term := range []string{"politica", "ferias", "remuneradas"} {
		if got := postingIDs(t, s, term); len(got) != 1 || got[0] != rec.ID {
			t.Errorf("posting %s = %v", term, got)
		}
	}
}

func TestIndexSkipsShortTerms(t *testing.T) {
	m, s := newTestMaintainer()
	if err := m.Index(context.Background(), record("doc", "Doc", "rh sim beneficios")); err != nil {
		t.Fatal(err)
	}
	if got := postingIDs(t, s, "rh"); len(got) != 0 {
		t.Errorf("two-letter term must not be indexed, got %v", got)
	}
	if got := postingIDs(t, s, "sim"); len(got) != 0 {
		t.Errorf("three-letter term must not be indexed, got %v", got)
	}
	if got := postingIDs(t, s, "beneficios"); len(got) != 1 {
		t.Errorf("long term missing, got %v", got)
	}
}

func TestIndexEmptyID(t *testing.T) {
	m, _ := newTestMaintainer()
	err := m.Index(context.Background(), record("", "Sem ID", "palavras"))
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestReindexRemovesStalePostings(t *testing.T) {
	m, s := newTestMaintainer()
	ctx := context.Background()

	if err := m.Reindex(ctx, record("doc", "Doc", "antiga comum")); err != nil {
		t.Fatal(err)
	}
	if err := m.Reindex(ctx, record("doc", "Doc", "nova comum")); err != nil {
		t.Fatal(err)
	}

	if got := postingIDs(t, s, "antiga"); len(got) != 0 {
		t.Errorf("stale posting survived reindex: %v", got)
	}
	if got := postingIDs(t, s, "nova"); len(got) != 1 {
		t.Errorf("new posting missing: %v", got)
	}
	if got := postingIDs(t, s, "comum"); len(got) != 1 || got[0] != "doc" {
		t.Errorf("shared term = %v", got)
	}
}

func TestReindexFirstWrite(t *testing.T) {
	m, s := newTestMaintainer()
	if err := m.Reindex(context.Background(), record("novo", "Novo", "conteudo")); err != nil {
		t.Fatalf("first reindex must behave like index: %v", err)
	}
	if got := postingIDs(t, s, "conteudo"); len(got) != 1 {
		t.Errorf("posting missing after first write: %v", got)
	}
}

func TestDelete(t *testing.T) {
	m, s := newTestMaintainer()
	ctx := context.Background()

	if err := m.Index(ctx, record("doc", "Doc", "ferias beneficios")); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(ctx, "doc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.GetRecord(ctx, "doc"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("record must be gone, err = %v", err)
	}
	if ids, _ := s.ListDocuments(ctx); len(ids) != 0 {
		t.Errorf("document set not empty: %v", ids)
	}
	for _, term := range []string{"ferias", "beneficios"} {
		if got := postingIDs(t, s, term); len(got) != 0 {
			t.Errorf("posting %s survived delete: %v", term, got)
		}
	}
}

func TestDeleteUnknown(t *testing.T) {
	m, _ := newTestMaintainer()
	err := m.Delete(context.Background(), "inexistente")
	if !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestDeleteKeepsOtherDocuments(t *testing.T) {
	m, s := newTestMaintainer()
	ctx := context.Background()

	if err := m.Index(ctx, record("um", "Um", "ferias")); err != nil {
		t.Fatal(err)
	}
	if err := m.Index(ctx, record("dois", "Dois", "ferias")); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(ctx, "um"); err != nil {
		t.Fatal(err)
	}
	if got := postingIDs(t, s, "ferias"); len(got) != 1 || got[0] != "dois" {
		t.Errorf("shared posting list corrupted: %v", got)
	}
}
