// Package scheduler runs the periodic search reindex sweep. The sink is
// best-effort on the write path, so a cron-driven full pass over active
// postings converges the index after dropped side calls.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jobport/jobport/pkg/posting"
	"github.com/jobport/jobport/pkg/search"
	"github.com/jobport/jobport/pkg/softdelete"
)

const reindexBatch = 200

type Scheduler struct {
	cron     *cron.Cron
	postings posting.Repository
	indexer  *search.Indexer
	log      *zap.Logger
}

func New(postings posting.Repository, indexer *search.Indexer, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		postings: postings,
		indexer:  indexer,
		log:      log,
	}
}

// Start registers the reindex job under the given cron spec and starts
// the scheduler in its own goroutine.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.reindex); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.indexer.Flush()
}

func (s *Scheduler) reindex() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	total := 0
	for offset := 0; ; offset += reindexBatch {
		batch, err := s.postings.List(ctx, softdelete.Active, reindexBatch, offset)
		if err != nil {
			s.log.Warn("reindex aborted", zap.Int("indexed", total), zap.Error(err))
			return
		}
		if len(batch) == 0 {
			break
		}
		for _, p := range batch {
			s.indexer.Index(p.ID.String(), posting.Document(p))
		}
		total += len(batch)
		if len(batch) < reindexBatch {
			break
		}
	}
	s.indexer.Flush()
	s.log.Info("reindex complete",
		zap.Int("postings", total),
		zap.Duration("took", time.Since(start)))
}
