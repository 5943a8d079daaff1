// Command converter batch-ingests word-processor documents from a directory,
// or re-runs the pipeline for every stored document.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/intranet-tools/hr-knowledge-base/internal/index"
	"github.com/intranet-tools/hr-knowledge-base/internal/ingest"
	"github.com/intranet-tools/hr-knowledge-base/internal/keywords"
	"github.com/intranet-tools/hr-knowledge-base/internal/search"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
	"github.com/intranet-tools/hr-knowledge-base/pkg/logger"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
	"github.com/intranet-tools/hr-knowledge-base/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dir := flag.String("dir", "", "directory of .docx/.html files to ingest")
	reindex := flag.Bool("reindex", false, "re-run the pipeline for every stored document")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *dir == "" && !*reindex {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -dir or -reindex")
		os.Exit(2)
	}

	m := metrics.New()
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	docStore := store.New(redisClient)
	maintainer := index.NewMaintainer(docStore, m, cfg.Search.ResolveConcurrency)
	extractor := keywords.New(cfg.Keywords)
	fetcher := ingest.NewFetcher(cfg.Ingest.MaxDocumentSize, cfg.Ingest.FetchTimeout)
	resolver := search.NewResolver(docStore, m, cfg.Search)
	cached := search.NewCachedResolver(resolver, redisClient, m, cfg.Redis.CacheTTL)
	pipeline := ingest.NewPipeline(fetcher, extractor, maintainer, docStore, cached, nil, m, cfg.Ingest)

	ctx := context.Background()
	failures := 0

	if *dir != "" {
		failures += ingestDir(ctx, pipeline, *dir)
	}
	if *reindex {
		failures += reindexAll(ctx, pipeline, docStore)
	}
	if failures > 0 {
		slog.Error("run finished with failures", "failures", failures)
		os.Exit(1)
	}
	slog.Info("run finished")
}

func ingestDir(ctx context.Context, pipeline *ingest.Pipeline, dir string) int {
	failures := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".docx", ".html", ".htm":
		default:
			return nil
		}
		rec, err := pipeline.Ingest(ctx, ingest.Request{
			SourceLocator: path,
			Filename:      filepath.Base(path),
		})
		if err != nil {
			slog.Error("ingest failed", "file", path, "error", err)
			failures++
			return nil
		}
		slog.Info("ingested", "file", path, "id", rec.ID, "sections", len(rec.Sections))
		return nil
	})
	if err != nil {
		slog.Error("directory walk failed", "dir", dir, "error", err)
		failures++
	}
	return failures
}

func reindexAll(ctx context.Context, pipeline *ingest.Pipeline, docStore *store.Store) int {
	ids, err := docStore.ListDocuments(ctx)
	if err != nil {
		slog.Error("listing documents failed", "error", err)
		return 1
	}
	failures := 0
	for _, id := range ids {
		if _, err := pipeline.Reindex(ctx, id); err != nil {
			slog.Error("reindex failed", "id", id, "error", err)
			failures++
			continue
		}
		slog.Info("reindexed", "id", id)
	}
	return failures
}
