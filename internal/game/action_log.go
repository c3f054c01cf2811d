// internal/game/action_log.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/jason-s-yu/bluff/internal/cache"
	"github.com/sirupsen/logrus"
)

// publishTimeout bounds a single Publish call.
const publishTimeout = 2 * time.Second

// actionLog publishes one room's records in action order on a single goroutine. push never
// blocks, so it is safe under the room lock.
type actionLog struct {
	recorder ActionRecorder
	log      *logrus.Entry

	mu     sync.Mutex
	queue  []cache.RoomActionRecord
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newActionLog(recorder ActionRecorder, log *logrus.Entry) *actionLog {
	l := &actionLog{
		recorder: recorder,
		log:      log,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *actionLog) push(rec cache.RoomActionRecord) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, rec)
	l.mu.Unlock()
	l.signal()
}

// close lets the publisher drain what is queued and exit.
func (l *actionLog) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
}

func (l *actionLog) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *actionLog) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, rec := range batch {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			if err := l.recorder.Publish(ctx, rec); err != nil {
				l.log.Warnf("Error publishing action %d (%s): %v", rec.ActionIndex, rec.ActionType, err)
			}
			cancel()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}
