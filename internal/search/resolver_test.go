package search

import (
	"context"
	"testing"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.New()

func newTestResolver(cfg config.SearchConfig) (*Resolver, *store.Store) {
	s := store.New(store.NewMemoryKV())
	return NewResolver(s, testMetrics, cfg), s
}

// seed stores a record, registers it, and writes its postings.
func seed(t *testing.T, s *store.Store, rec *document.Record, terms ...string) {
	t.Helper()
	ctx := context.Background()
	if err := s.PutRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDocument(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	for _, term := range terms {
		if err := s.AddPosting(ctx, term, rec.ID); err != nil {
			t.Fatal(err)
		}
	}
}

func ids(records []*document.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}

func TestSearchIntersection(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{ID: "ambos", Title: "Ambos os termos", Keywords: "ferias beneficios"}, "ferias", "beneficios")
	seed(t, s, &document.Record{ID: "so-ferias", Title: "Documento um", Keywords: "ferias"}, "ferias")

	got, outcome, err := r.Search(context.Background(), "ferias beneficios")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "ambos" {
		t.Errorf("results = %v, want only the document matching every token", ids(got))
	}
	if outcome != "intersection" {
		t.Errorf("outcome = %q, want intersection", outcome)
	}
}

func TestSearchUnionFallback(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{ID: "doc-a", Title: "Documento um", Keywords: "ferias"}, "ferias")
	seed(t, s, &document.Record{ID: "doc-b", Title: "Documento dois", Keywords: "reembolso"}, "reembolso")

	got, outcome, err := r.Search(context.Background(), "ferias reembolso")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("empty intersection must fall back to union, got %v", ids(got))
	}
	if outcome != "union" {
		t.Errorf("outcome = %q, want union", outcome)
	}
}

func TestSearchTitleSubstringPass(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 5})
	// No posting matches, but the title contains the query token.
	seed(t, s, &document.Record{ID: "manual", Title: "Manual de Férias", Keywords: "documento interno"})

	got, outcome, err := r.Search(context.Background(), "férias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "manual" {
		t.Errorf("title pass missed the record: %v", ids(got))
	}
	if outcome != "title_fallback" {
		t.Errorf("outcome = %q, want title_fallback", outcome)
	}
}

func TestSearchTitlePassMatchesPerToken(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 5})
	seed(t, s, &document.Record{ID: "manual", Title: "Manual de Férias", Keywords: "documento interno"})

	// Each token is a title substring even though the full query string
	// ("manual ferias") is not.
	got, _, err := r.Search(context.Background(), "manual ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "manual" {
		t.Errorf("per-token title pass missed the record, got %v", ids(got))
	}
}

func TestSearchTitlePassIgnoresQueryPunctuation(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 5})
	seed(t, s, &document.Record{ID: "manual", Title: "Manual de Férias", Keywords: "documento interno"})

	got, _, err := r.Search(context.Background(), "férias!")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "manual" {
		t.Errorf("punctuated query must still match by token, got %v", ids(got))
	}
}

func TestSearchTitlePassSkippedAboveThreshold(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{ID: "indexado", Title: "Guia indexado", Keywords: "ferias"}, "ferias")
	seed(t, s, &document.Record{ID: "so-titulo", Title: "Tudo sobre ferias", Keywords: "outro"})

	got, _, err := r.Search(context.Background(), "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "indexado" {
		t.Errorf("title pass must not run once the threshold is met: %v", ids(got))
	}
}

func TestSearchDropsOrphanedPostings(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	ctx := context.Background()
	// Posting without a record.
	if err := s.AddPosting(ctx, "ferias", "fantasma"); err != nil {
		t.Fatal(err)
	}
	seed(t, s, &document.Record{ID: "real", Title: "Documento real", Keywords: "ferias"}, "ferias")

	got, _, err := r.Search(ctx, "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "real" {
		t.Errorf("orphaned posting must be dropped: %v", ids(got))
	}
}

func TestSearchDropsUntitledRecords(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{ID: "sem-titulo", Title: "", Keywords: "ferias"}, "ferias")
	seed(t, s, &document.Record{ID: "com-titulo", Title: "Com título", Keywords: "ferias"}, "ferias")

	got, _, err := r.Search(context.Background(), "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "com-titulo" {
		t.Errorf("untitled record must be dropped: %v", ids(got))
	}
}

func TestSearchRanking(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{
		ID: "fraco", Title: "Outro assunto", Keywords: "ferias",
	}, "ferias")
	seed(t, s, &document.Record{
		ID: "forte", Title: "Férias e mais férias", Keywords: "ferias coletivas",
		Description: "Tudo sobre férias.",
	}, "ferias")

	got, _, err := r.Search(context.Background(), "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "forte" {
		t.Errorf("ranking order = %v, want forte first", ids(got))
	}
}

func TestSearchNormalizesQuery(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{ID: "doc", Title: "Política", Keywords: "ferias"}, "ferias")

	got, _, err := r.Search(context.Background(), "FÉRIAS")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("accented uppercase query must hit the plain posting: %v", ids(got))
	}
}

func TestSearchShortTokensIgnored(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	seed(t, s, &document.Record{ID: "doc", Title: "Documento", Keywords: "ferias"}, "ferias")

	got, _, err := r.Search(context.Background(), "de as ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("stop-length tokens must not affect resolution: %v", ids(got))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	r, _ := newTestResolver(config.SearchConfig{})
	got, outcome, err := r.Search(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("blank query must yield no results, got %v", ids(got))
	}
	if outcome != "zero_result" {
		t.Errorf("outcome = %q, want zero_result", outcome)
	}
}

func TestSearchMaxResults(t *testing.T) {
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1, MaxResults: 2})
	for _, id := range []string{"um", "dois", "tres"} {
		seed(t, s, &document.Record{ID: id, Title: "Documento " + id, Keywords: "ferias"}, "ferias")
	}
	got, _, err := r.Search(context.Background(), "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want MaxResults cap of 2", len(got))
	}
}
