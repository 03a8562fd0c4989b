package market

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kevind700/crypto-fun/internal/logging"
	"github.com/kevind700/crypto-fun/pkg/models"
)

// Snapshot is one applied refresh of the watched tickers page.
type Snapshot struct {
	Tickers   []models.Ticker `json:"tickers"`
	Total     int             `json:"total"`
	FetchedAt time.Time       `json:"fetched_at"`
	Seq       uint64          `json:"seq"`
}

// Watcher periodically refreshes the first tickers page and fans the
// result out to subscribers. Every refresh is stamped with a
// monotonically increasing sequence before its fetch starts; a fetch
// that completes after a later one has already been applied is
// discarded, so overlapping refreshes can never roll the snapshot
// back to older data.
type Watcher struct {
	src       Source
	interval  time.Duration
	pageLimit int

	nextSeq atomic.Uint64

	mu      sync.RWMutex
	applied uint64
	current Snapshot
	ready   bool
	subs    []chan Snapshot
}

// NewWatcher creates a watcher refreshing every interval.
func NewWatcher(src Source, interval time.Duration, pageLimit int) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &Watcher{src: src, interval: interval, pageLimit: pageLimit}
}

// Subscribe registers a listener for applied snapshots. The channel
// has a one-element buffer; a subscriber that falls behind skips
// intermediate snapshots instead of blocking the watcher.
func (w *Watcher) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}

// Latest returns the most recently applied snapshot. ok is false
// until the first refresh has been applied.
func (w *Watcher) Latest() (Snapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current, w.ready
}

// Refresh fetches the watched page once and applies it unless a
// younger refresh has already been applied in the meantime.
func (w *Watcher) Refresh(ctx context.Context) error {
	seq := w.nextSeq.Add(1)

	tickers, total, err := w.src.Tickers(ctx, 0, w.pageLimit)
	if err != nil {
		logging.Warnf("market: refresh %d failed: %v", seq, err)
		return err
	}

	snap := Snapshot{
		Tickers:   tickers,
		Total:     total,
		FetchedAt: time.Now(),
		Seq:       seq,
	}

	w.mu.Lock()
	if seq <= w.applied {
		w.mu.Unlock()
		logging.Infof("market: discarding stale refresh %d (applied %d)", seq, w.applied)
		return nil
	}
	w.applied = seq
	w.current = snap
	w.ready = true
	subs := make([]chan Snapshot, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// replace the pending snapshot with the newer one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return nil
}

// Run refreshes immediately, then on every interval tick until ctx is
// cancelled. Fetch failures are logged and the loop keeps going.
func (w *Watcher) Run(ctx context.Context) {
	_ = w.Refresh(ctx)

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = w.Refresh(ctx)
		}
	}
}
