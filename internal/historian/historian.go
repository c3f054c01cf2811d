// internal/historian/historian.go
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/bluff/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Source yields queued action records. Pop returns redis.Nil when nothing arrived in time.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (cache.RoomActionRecord, error)
}

// Store persists a batch of records.
type Store interface {
	Flush(ctx context.Context, recs []cache.RoomActionRecord) error
}

// Service drains the action queue into the store in batches.
type Service struct {
	source     Source
	store      Store
	logger     *logrus.Logger
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration

	// retryDelay is the first pause after a failed Pop; it doubles up to maxRetryDelay.
	retryDelay    time.Duration
	maxRetryDelay time.Duration

	batchMu sync.Mutex
	batch   []cache.RoomActionRecord
}

// NewService builds a historian that flushes every batchSize records or every flushDelay.
func NewService(source Source, store Store, logger *logrus.Logger, batchSize int, flushDelay time.Duration) *Service {
	if batchSize <= 0 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	return &Service{
		source:        source,
		store:         store,
		logger:        logger,
		batchSize:     batchSize,
		flushDelay:    flushDelay,
		popTimeout:    time.Second,
		retryDelay:    250 * time.Millisecond,
		maxRetryDelay: 5 * time.Second,
		batch:         make([]cache.RoomActionRecord, 0, batchSize),
	}
}

// Run pops records until ctx is done, then flushes what is left.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("bluff-historian service started.")
	defer s.logger.Info("bluff-historian shutting down.")

	lastFlush := time.Now()
	var backoff time.Duration
	for {
		if ctx.Err() != nil {
			s.flush(context.Background())
			return
		}
		if time.Since(lastFlush) >= s.flushDelay {
			s.flush(ctx)
			lastFlush = time.Now()
		}

		rec, err := s.source.Pop(ctx, s.popTimeout)
		if errors.Is(err, redis.Nil) {
			backoff = 0
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			backoff = s.nextBackoff(backoff)
			s.logger.Errorf("Pop: %v, retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0
		if s.append(rec) {
			s.flush(ctx)
			lastFlush = time.Now()
		}
	}
}

func (s *Service) nextBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return s.retryDelay
	}
	if next := prev * 2; next < s.maxRetryDelay {
		return next
	}
	return s.maxRetryDelay
}

// append adds rec and reports whether the batch is full.
func (s *Service) append(rec cache.RoomActionRecord) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	return len(s.batch) >= s.batchSize
}

// flush writes the current batch. A failed batch is dropped and logged.
func (s *Service) flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	batchCopy := make([]cache.RoomActionRecord, len(s.batch))
	copy(batchCopy, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	if err := s.store.Flush(ctx, batchCopy); err != nil {
		s.logger.Errorf("flush of %d actions failed: %v", len(batchCopy), err)
		return
	}
	s.logger.Debugf("Flushed %d actions to DB.", len(batchCopy))
}
