// Package meili implements the search sink on Meilisearch.
package meili

import (
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

type Sink struct {
	client *meilisearch.Client
}

// New connects to Meilisearch and ensures the postings index exists with
// its searchable attributes configured.
func New(host, apiKey string) (*Sink, error) {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch health: %w", err)
	}
	if _, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        "postings",
		PrimaryKey: "id",
	}); err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if _, err := client.Index("postings").UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"working_hours",
	}); err != nil {
		return nil, fmt.Errorf("update searchable attributes: %w", err)
	}
	return &Sink{client: client}, nil
}

func (s *Sink) IndexDocument(collection string, doc map[string]any) error {
	_, err := s.client.Index(collection).AddDocuments([]map[string]any{doc})
	return err
}

func (s *Sink) DeleteDocument(collection, id string) error {
	_, err := s.client.Index(collection).DeleteDocument(id)
	return err
}

func (s *Sink) Search(collection, query string) ([]map[string]any, error) {
	res, err := s.client.Index(collection).Search(query, &meilisearch.SearchRequest{})
	if err != nil {
		return nil, err
	}
	hits := make([]map[string]any, 0, len(res.Hits))
	for _, h := range res.Hits {
		if m, ok := h.(map[string]any); ok {
			hits = append(hits, m)
		}
	}
	return hits, nil
}
