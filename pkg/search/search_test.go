package search_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jobport/jobport/pkg/search"
)

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) IndexDocument(string, map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("sink unavailable")
}

func (s *failingSink) DeleteDocument(string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("sink unavailable")
}

func (s *failingSink) Search(string, string) ([]map[string]any, error) {
	return nil, errors.New("sink unavailable")
}

func TestIndexer_FailuresAreLoggedAndDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &failingSink{}
	idx := search.NewIndexer(sink, "postings", zap.New(core))

	idx.Index("p1", map[string]any{"id": "p1"})
	idx.Delete("p2")
	idx.Flush()

	assert.Equal(t, 2, sink.calls)
	assert.Equal(t, 2, logs.Len(), "every sink failure is logged")
	for _, entry := range logs.All() {
		assert.Equal(t, zap.WarnLevel, entry.Level, "sink failures are warnings, not errors")
	}
}

func TestIndexer_SearchIsSynchronous(t *testing.T) {
	idx := search.NewIndexer(&failingSink{}, "postings", zap.NewNop())
	_, err := idx.Search("golang")
	assert.Error(t, err, "read-path failures are caller-visible")
}

func TestNopSink(t *testing.T) {
	idx := search.NewIndexer(search.NopSink{}, "postings", zap.NewNop())
	idx.Index("p1", map[string]any{"id": "p1"})
	idx.Flush()
	hits, err := idx.Search("anything")
	assert.NoError(t, err)
	assert.Empty(t, hits)
}
