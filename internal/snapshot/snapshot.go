package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Add1ct1ve/CalWid/internal/calendar"
	"github.com/Add1ct1ve/CalWid/internal/logger"
	"github.com/Add1ct1ve/CalWid/internal/tasks"
)

// EventsFetcher produces the calendar half of a snapshot.
type EventsFetcher interface {
	Fetch(ctx context.Context, days int) ([]calendar.Event, error)
}

// TasksFetcher produces the tasks half of a snapshot.
type TasksFetcher interface {
	Fetch(ctx context.Context) ([]tasks.Task, error)
}

// Snapshot is one consistent view of both sources. Slices are never nil
// so an empty snapshot serializes as [] rather than null.
type Snapshot struct {
	Events    []calendar.Event `json:"events"`
	Tasks     []tasks.Task     `json:"tasks"`
	FetchedAt time.Time        `json:"fetched_at"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Events: []calendar.Event{}, Tasks: []tasks.Task{}}
}

// Outcome reports how one source fared during a refresh.
type Outcome struct {
	Err error
}

// OK reports whether the source fetched successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// Report carries the per-source outcomes of a refresh. A refresh that
// fell back to cached data still yields a usable snapshot; callers can
// inspect the report to tell fresh from stale.
type Report struct {
	Events Outcome
	Tasks  Outcome
}

// Fresh reports whether both sources fetched successfully, meaning the
// returned snapshot was rebuilt wholesale rather than served from cache.
func (r Report) Fresh() bool { return r.Events.OK() && r.Tasks.OK() }

// Cache holds the latest snapshot and replaces it wholesale: a refresh
// swaps in new data only when every source succeeds, otherwise the
// previous snapshot survives untouched. The snapshot is persisted to
// disk so a restart starts from the last good state instead of empty.
type Cache struct {
	mu       sync.Mutex
	path     string
	events   EventsFetcher
	tasks    TasksFetcher
	days     int
	snapshot *Snapshot // last good snapshot; nil until first success or disk load
}

// NewCache creates a snapshot cache persisting to path. Any snapshot
// already on disk is loaded immediately; a missing or corrupt file just
// means the cache starts cold.
func NewCache(path string, events EventsFetcher, tasks TasksFetcher, days int) *Cache {
	c := &Cache{path: path, events: events, tasks: tasks, days: days}

	if snap, err := loadSnapshot(path); err != nil {
		logger.Warn("failed to load cached snapshot", "path", path, "error", err)
	} else if snap != nil {
		c.snapshot = snap
		logger.Debug("loaded cached snapshot",
			"events", len(snap.Events), "tasks", len(snap.Tasks), "fetched_at", snap.FetchedAt)
	}

	return c
}

// Refresh fetches both sources concurrently and swaps the snapshot only
// when both succeed. On partial or total failure the previous snapshot
// is returned unchanged; the error is non-nil only when nothing cached
// exists to fall back on. The Report always carries per-source outcomes.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, Report, error) {
	var (
		events  []calendar.Event
		taskLst []tasks.Task
		report  Report
	)

	// Both fetches run to completion so the report covers each source;
	// errgroup is used for the join, not for cancellation.
	g := &errgroup.Group{}
	g.Go(func() error {
		var err error
		events, err = c.events.Fetch(ctx, c.days)
		report.Events = Outcome{Err: err}
		return nil
	})
	g.Go(func() error {
		var err error
		taskLst, err = c.tasks.Fetch(ctx)
		report.Tasks = Outcome{Err: err}
		return nil
	})
	g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !report.Fresh() {
		if !report.Events.OK() {
			logger.Warn("events fetch failed, keeping cached snapshot", "error", report.Events.Err)
		}
		if !report.Tasks.OK() {
			logger.Warn("tasks fetch failed, keeping cached snapshot", "error", report.Tasks.Err)
		}
		snap, err := c.fallbackLocked(report)
		return snap, report, err
	}

	if events == nil {
		events = []calendar.Event{}
	}
	if taskLst == nil {
		taskLst = []tasks.Task{}
	}
	snap := &Snapshot{Events: events, Tasks: taskLst, FetchedAt: time.Now()}

	if err := saveSnapshot(c.path, snap); err != nil {
		// Persistence failure degrades restart behavior, not this run.
		logger.Warn("failed to persist snapshot", "path", c.path, "error", err)
	}

	c.snapshot = snap
	return snap, report, nil
}

// fallbackLocked serves the freshest data available after a failed
// refresh: memory first, then disk, then an empty snapshot with an error.
func (c *Cache) fallbackLocked(report Report) (*Snapshot, error) {
	if c.snapshot != nil {
		return c.snapshot, nil
	}

	if snap, err := loadSnapshot(c.path); err != nil {
		logger.Warn("failed to load cached snapshot", "path", c.path, "error", err)
	} else if snap != nil {
		c.snapshot = snap
		return snap, nil
	}

	err := report.Events.Err
	if err == nil {
		err = report.Tasks.Err
	}
	return emptySnapshot(), fmt.Errorf("refresh failed with no cached snapshot: %w", err)
}

// Cached returns the current snapshot without touching the network. It
// never fails: with nothing cached it returns an empty snapshot.
func (c *Cache) Cached() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil {
		return c.snapshot
	}
	return emptySnapshot()
}

// loadSnapshot reads a persisted snapshot; (nil, nil) when absent.
func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	if snap.Events == nil {
		snap.Events = []calendar.Event{}
	}
	if snap.Tasks == nil {
		snap.Tasks = []tasks.Task{}
	}
	return &snap, nil
}

// saveSnapshot writes the snapshot atomically: a temp file in the same
// directory, then rename. Readers never observe a partial file.
func saveSnapshot(path string, snap *Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
