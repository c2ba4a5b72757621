package search

import (
	"sync"

	"go.uber.org/zap"
)

// Sink is the external indexing collaborator: best-effort, independently
// failable, never part of a write's transaction.
type Sink interface {
	IndexDocument(collection string, doc map[string]any) error
	DeleteDocument(collection, id string) error
	Search(collection, query string) ([]map[string]any, error)
}

// Indexer performs sink calls off the critical path. A failed call is
// logged and dropped; the owning operation never observes it.
type Indexer struct {
	sink       Sink
	collection string
	log        *zap.Logger
	wg         sync.WaitGroup
}

func NewIndexer(sink Sink, collection string, log *zap.Logger) *Indexer {
	return &Indexer{sink: sink, collection: collection, log: log}
}

func (i *Indexer) Index(id string, doc map[string]any) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if err := i.sink.IndexDocument(i.collection, doc); err != nil {
			i.log.Warn("search index failed",
				zap.String("collection", i.collection),
				zap.String("id", id),
				zap.Error(err))
		}
	}()
}

func (i *Indexer) Delete(id string) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if err := i.sink.DeleteDocument(i.collection, id); err != nil {
			i.log.Warn("search delete failed",
				zap.String("collection", i.collection),
				zap.String("id", id),
				zap.Error(err))
		}
	}()
}

// Search queries the sink synchronously (read path, caller-visible).
func (i *Indexer) Search(query string) ([]map[string]any, error) {
	return i.sink.Search(i.collection, query)
}

// Flush waits for in-flight side calls; used on shutdown and in tests.
func (i *Indexer) Flush() {
	i.wg.Wait()
}

// NopSink satisfies Sink when no search backend is configured.
type NopSink struct{}

func (NopSink) IndexDocument(string, map[string]any) error { return nil }

func (NopSink) DeleteDocument(string, string) error { return nil }

func (NopSink) Search(string, string) ([]map[string]any, error) { return nil, nil }
