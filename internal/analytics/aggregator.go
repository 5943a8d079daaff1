package analytics

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// QueryStat is one aggregated query with its hit counters.
type QueryStat struct {
	Query      string `json:"query"`
	Count      int    `json:"count"`
	ZeroResult int    `json:"zeroResult"`
}

// Stats is the snapshot served by the analytics endpoint.
type Stats struct {
	TotalSearches int         `json:"totalSearches"`
	ZeroResults   int         `json:"zeroResults"`
	TopQueries    []QueryStat `json:"topQueries"`
}

// Aggregator consumes search events and keeps in-memory query statistics.
// State is process-local and resets on restart.
type Aggregator struct {
	mu      sync.RWMutex
	total   int
	zero    int
	queries map[string]*QueryStat
	topN    int
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		queries: make(map[string]*QueryStat),
		topN:    topN,
	}
}

// HandleMessage decodes one search event from Kafka. It satisfies the
// consumer's MessageHandler signature.
func (a *Aggregator) HandleMessage(ctx context.Context, key, value []byte) error {
	var event SearchEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}
	a.Record(event)
	return nil
}

// Record folds one search event into the running statistics.
func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	stat, ok := a.queries[event.Query]
	if !ok {
		stat = &QueryStat{Query: event.Query}
		a.queries[event.Query] = stat
	}
	stat.Count++
	if event.Results == 0 {
		a.zero++
		stat.ZeroResult++
	}
}

// Snapshot returns the current statistics with the topN most frequent
// queries, ties broken alphabetically.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	top := make([]QueryStat, 0, len(a.queries))
	for _, stat := range a.queries {
		top = append(top, *stat)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Query < top[j].Query
	})
	if len(top) > a.topN {
		top = top[:a.topN]
	}
	return Stats{
		TotalSearches: a.total,
		ZeroResults:   a.zero,
		TopQueries:    top,
	}
}
