// Package ingest runs the document pipeline: fetch the source, convert it to
// portal markup, parse it into sections, derive title, description, and
// keywords, and hand the finished record to the index maintainer.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/intranet-tools/hr-knowledge-base/internal/analytics"
	"github.com/intranet-tools/hr-knowledge-base/internal/convert"
	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/index"
	"github.com/intranet-tools/hr-knowledge-base/internal/keywords"
	"github.com/intranet-tools/hr-knowledge-base/internal/parser"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
	"github.com/intranet-tools/hr-knowledge-base/pkg/resilience"
)

const (
	untitledFallback = "Untitled document"
	maxTitleLength   = 100
	maxDescLength    = 200
)

// Request describes one document to ingest. Exactly one of SourceLocator or
// Markup must be set; Markup skips fetching and conversion.
type Request struct {
	SourceLocator string
	Markup        string
	Filename      string
	Title         string
	Tags          []string
	ExternalLink  string
}

// Invalidator is the query-cache hook called after every index write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Pipeline wires the ingest stages together.
type Pipeline struct {
	fetcher    *Fetcher
	extractor  *keywords.Extractor
	maintainer *index.Maintainer
	store      *store.Store
	cache      Invalidator
	collector  *analytics.Collector
	metrics    *metrics.Metrics
	logger     *slog.Logger
	retry      resilience.RetryConfig
}

func NewPipeline(
	fetcher *Fetcher,
	extractor *keywords.Extractor,
	maintainer *index.Maintainer,
	s *store.Store,
	cache Invalidator,
	collector *analytics.Collector,
	m *metrics.Metrics,
	cfg config.IngestConfig,
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		extractor:  extractor,
		maintainer: maintainer,
		store:      s,
		cache:      cache,
		collector:  collector,
		metrics:    m,
		logger:     slog.Default().With("component", "ingest"),
		retry: resilience.RetryConfig{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryDelay,
		},
	}
}

// Ingest runs the full pipeline for one request and returns the stored
// record.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*document.Record, error) {
	start := time.Now()

	markup, err := p.sourceMarkup(ctx, req)
	if err != nil {
		return nil, err
	}

	sections := parser.Parse(markup)
	title := deriveTitle(req, sections)
	if title == untitledFallback && len(sections) == 0 {
		return nil, fmt.Errorf("%w: document has no content and no title", apperrors.ErrInvalidInput)
	}
	for _, sec := range sections {
		p.metrics.SectionsParsed.WithLabelValues(string(sec.Type)).Inc()
	}

	content := plainText(sections)
	kws := p.extractor.Extract(content, title, req.Tags)

	rec := &document.Record{
		ID:            document.Slug(title),
		Title:         title,
		Keywords:      strings.Join(kws, " "),
		Description:   deriveDescription(firstBody(sections)),
		Content:       content,
		Sections:      sections,
		Icon:          document.DefaultIcon,
		Color:         document.DefaultColor(),
		ExternalLink:  req.ExternalLink,
		CreatedAt:     time.Now().UTC(),
		SourceLocator: req.SourceLocator,
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: title %q yields an empty identifier", apperrors.ErrInvalidInput, title)
	}

	err = resilience.Retry(ctx, "index-document", p.retry, func() error {
		return p.maintainer.Reindex(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	p.invalidate(ctx)

	p.metrics.DocumentsIngested.Inc()
	p.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	p.collector.RecordIngest(analytics.IngestEvent{
		DocumentID: rec.ID,
		Title:      rec.Title,
		Action:     analytics.ActionIngested,
		Sections:   len(sections),
		Keywords:   len(kws),
	})
	p.logger.Info("document ingested",
		"id", rec.ID,
		"sections", len(sections),
		"keywords", len(kws),
		"duration", time.Since(start),
	)
	return rec, nil
}

// Reindex re-runs the pipeline for a stored document from its original
// source. Documents ingested from inline markup cannot be re-fetched.
func (p *Pipeline) Reindex(ctx context.Context, id string) (*document.Record, error) {
	rec, err := p.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.SourceLocator == "" {
		return nil, fmt.Errorf("%w: document %s has no source locator", apperrors.ErrInvalidInput, id)
	}
	updated, err := p.Ingest(ctx, Request{
		SourceLocator: rec.SourceLocator,
		Title:         rec.Title,
		ExternalLink:  rec.ExternalLink,
	})
	if err != nil {
		return nil, err
	}
	p.collector.RecordIngest(analytics.IngestEvent{
		DocumentID: updated.ID,
		Title:      updated.Title,
		Action:     analytics.ActionReindexed,
		Sections:   len(updated.Sections),
	})
	return updated, nil
}

// Delete removes a document from the index and invalidates the query cache.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	if err := p.maintainer.Delete(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx)
	p.collector.RecordIngest(analytics.IngestEvent{
		DocumentID: id,
		Action:     analytics.ActionDeleted,
	})
	return nil
}

func (p *Pipeline) invalidate(ctx context.Context) {
	if p.cache != nil {
		p.cache.Invalidate(ctx)
	}
}

// sourceMarkup resolves the request to portal markup, fetching and
// converting when no inline markup was supplied.
func (p *Pipeline) sourceMarkup(ctx context.Context, req Request) (string, error) {
	if req.Markup != "" {
		return req.Markup, nil
	}
	if req.SourceLocator == "" {
		return "", fmt.Errorf("%w: neither markup nor source locator supplied", apperrors.ErrInvalidInput)
	}
	data, err := p.fetcher.Fetch(ctx, req.SourceLocator)
	if err != nil {
		return "", err
	}

	name := req.Filename
	if name == "" {
		name = req.SourceLocator
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return convert.Docx(data)
	case ".html", ".htm":
		return convert.HTML(data)
	default:
		// No usable extension: zip magic means a word-processor container.
		if bytes.HasPrefix(data, []byte("PK")) {
			return convert.Docx(data)
		}
		return convert.HTML(data)
	}
}

// deriveTitle picks the document title: explicit request title, first
// heading, first paragraph truncated, filename, then a fixed fallback.
func deriveTitle(req Request, sections []document.Section) string {
	if t := strings.TrimSpace(req.Title); t != "" {
		return t
	}
	for _, sec := range sections {
		if sec.Type == document.SectionHeading && sec.Content != "" {
			return sec.Content
		}
	}
	for _, sec := range sections {
		if sec.Type == document.SectionParagraph && sec.Content != "" {
			return truncate(sec.Content, maxTitleLength)
		}
	}
	if req.Filename != "" {
		base := filepath.Base(req.Filename)
		if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
			return name
		}
	}
	return untitledFallback
}

// firstBody returns the text of the first non-heading section, so headings
// never leak into the description.
func firstBody(sections []document.Section) string {
	for _, sec := range sections {
		if sec.Type == document.SectionHeading {
			continue
		}
		if sec.Content != "" {
			return sec.Content
		}
		if len(sec.Items) > 0 {
			return sec.Items[0].Text
		}
	}
	return ""
}

// deriveDescription takes the first sentence of the text, capped.
func deriveDescription(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if i := strings.IndexAny(content, ".!?"); i >= 0 {
		content = content[:i+1]
	}
	return truncate(content, maxDescLength)
}

// plainText joins the textual projection of every section.
func plainText(sections []document.Section) string {
	var b strings.Builder
	for _, sec := range sections {
		switch sec.Type {
		case document.SectionList:
			for _, item := range sec.Items {
				b.WriteString(item.Text)
				b.WriteString("\n")
			}
		case document.SectionTable:
			b.WriteString(parser.StripMarkup(sec.Content))
			b.WriteString("\n")
		case document.SectionDivider:
		default:
			if sec.Content != "" {
				b.WriteString(sec.Content)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
