package app

import (
	"context"
	"log"
	"sync"
	"time"

	"lms-client/internal/domain"
)

// Snapshot is one full aggregation pass as delivered to dashboard clients.
type Snapshot struct {
	Results []domain.EnrichedResult `json:"results"`
	Stats   Stats                   `json:"stats"`
	Errors  []string                `json:"errors,omitempty"`
	TakenAt time.Time               `json:"takenAt"`
}

// Dashboard re-runs the aggregation on an interval and fans snapshots out
// to subscribers. One dashboard serves one signed-in viewer.
type Dashboard struct {
	agg     *Aggregator
	viewer  domain.Viewer
	token   string
	refresh time.Duration
	now     func() time.Time

	mu          sync.RWMutex
	last        *Snapshot
	subscribers map[chan Snapshot]struct{}
}

func NewDashboard(agg *Aggregator, viewer domain.Viewer, token string, refresh time.Duration) *Dashboard {
	return &Dashboard{
		agg:         agg,
		viewer:      viewer,
		token:       token,
		refresh:     refresh,
		now:         time.Now,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Subscribe returns a channel of snapshots, primed with the latest one when
// a pass has already completed. The caller must invoke the returned cancel
// function to avoid leaks.
func (d *Dashboard) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	d.mu.Lock()
	d.subscribers[ch] = struct{}{}
	if d.last != nil {
		ch <- *d.last
	}
	d.mu.Unlock()

	cancel := func() {
		d.mu.Lock()
		if _, ok := d.subscribers[ch]; ok {
			delete(d.subscribers, ch)
			close(ch)
		}
		d.mu.Unlock()
	}
	return ch, cancel
}

// Refresh runs one aggregation pass and broadcasts the snapshot. A fatal
// aggregation error leaves the previous snapshot in place.
func (d *Dashboard) Refresh(ctx context.Context) (Snapshot, error) {
	courses, err := d.agg.CourseSet(ctx, d.viewer, d.token)
	if err != nil {
		return Snapshot{}, err
	}
	results, soft, err := d.agg.Aggregate(ctx, d.viewer, d.token)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Results: results,
		Stats:   Summarize(len(courses), results),
		TakenAt: d.now(),
	}
	for _, e := range soft {
		snapshot.Errors = append(snapshot.Errors, e.Error())
	}

	d.mu.Lock()
	d.last = &snapshot
	d.broadcastLocked(snapshot)
	d.mu.Unlock()
	return snapshot, nil
}

// Run refreshes immediately, then on every tick until the context ends.
// Failed passes are logged and retried on the next tick.
func (d *Dashboard) Run(ctx context.Context) {
	if _, err := d.Refresh(ctx); err != nil {
		log.Printf("dashboard refresh failed: %v", err)
	}
	ticker := time.NewTicker(d.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Refresh(ctx); err != nil {
				log.Printf("dashboard refresh failed: %v", err)
			}
		}
	}
}

func (d *Dashboard) broadcastLocked(snapshot Snapshot) {
	for ch := range d.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the oldest pending snapshot so a slow client never
			// blocks the broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
