// Package refresh runs the refresh cycle: fetch the schedule document,
// decode it, anchor its slots and publish an immutable Snapshot together
// with the roster built from it.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"ptgboard/internal/fetch"
	"ptgboard/internal/ics"
	appLog "ptgboard/internal/log"
	"ptgboard/internal/model"
	"ptgboard/internal/schedule"
)

// ErrNoSnapshot is returned before the first successful refresh.
var ErrNoSnapshot = errors.New("no schedule snapshot loaded yet")

// Fetcher retrieves the raw document.
type Fetcher interface {
	Fetch(ctx context.Context, src fetch.Source) (fetch.Result, error)
}

// Snapshot is the outcome of one successful refresh cycle. It is never
// mutated after publication.
type Snapshot struct {
	Document  *model.Document
	Roster    schedule.Roster
	Raw       []byte
	FetchedAt time.Time
	FromCache bool
	// Anchored counts slots whose realtime was derived from event_start.
	Anchored int
}

// Resolver returns a resolver over the snapshot's document and roster.
func (s *Snapshot) Resolver() *schedule.Resolver {
	return schedule.NewResolver(s.Document, s.Roster)
}

// Options configures a Refresher.
type Options struct {
	Source fetch.Source
	// Location is the event zone, used for anchoring and cron.
	Location *time.Location
	// EventStart dates the first day section. Zero disables anchoring.
	EventStart time.Time
	// Now is the clock; nil means time.Now.
	Now func() time.Time
	// OnUpdate, if set, runs after every published snapshot.
	OnUpdate func(*Snapshot)
}

// Refresher owns the current snapshot.
type Refresher struct {
	fetcher Fetcher
	opts    Options

	current atomic.Pointer[Snapshot]

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Refresher. Nothing is fetched until RefreshOnce or Start.
func New(f Fetcher, opts Options) *Refresher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Refresher{fetcher: f, opts: opts}
}

// Current returns the last published snapshot.
func (r *Refresher) Current() (*Snapshot, error) {
	s := r.current.Load()
	if s == nil {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

// RefreshOnce runs one cycle. On failure the previous snapshot stays
// current and the error is returned.
func (r *Refresher) RefreshOnce(ctx context.Context) (*Snapshot, error) {
	src := r.opts.Source
	started := r.opts.Now()
	appLog.Info("refresh start", "id", src.ID, "url", fetch.RedactURL(src.URL))

	res, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		appLog.Error("refresh fetch failed; keeping previous snapshot", err, "id", src.ID)
		return nil, fmt.Errorf("fetch: %w", err)
	}

	doc, err := model.Decode(res.Body)
	if err != nil {
		appLog.Error("refresh decode failed; keeping previous snapshot", err, "id", src.ID, "bytes", len(res.Body))
		return nil, fmt.Errorf("decode: %w", err)
	}

	anchored := 0
	if !r.opts.EventStart.IsZero() {
		anchored, err = ics.AnchorSlots(doc, r.opts.EventStart, r.opts.Location)
		if err != nil {
			// Unanchored slots are simply never highlighted.
			appLog.Warn("slot anchoring failed", "err", err)
		}
	}

	snap := &Snapshot{
		Document:  doc,
		Roster:    schedule.Aggregate(doc.LastCheckIn),
		Raw:       res.Body,
		FetchedAt: started,
		FromCache: res.FromCache,
		Anchored:  anchored,
	}
	r.current.Store(snap)

	appLog.Info("refresh done",
		"id", src.ID,
		"from_cache", res.FromCache,
		"days", len(doc.Days),
		"rooms", len(doc.Rooms),
		"tracks", len(doc.Tracks),
		"checked_in", snap.Roster.Total(),
		"anchored", anchored,
		"took", r.opts.Now().Sub(started).String(),
	)

	if r.opts.OnUpdate != nil {
		r.opts.OnUpdate(snap)
	}
	return snap, nil
}

// Start schedules RefreshOnce on spec (standard 5-field cron syntax) in the
// event zone. A cycle still running when the next one is due is skipped.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return errors.New("refresher already started")
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(r.opts.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, func() {
		// Errors are logged by RefreshOnce.
		_, _ = r.RefreshOnce(ctx)
	}); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	c.Start()
	r.cron = c
	appLog.Info("refresh scheduled", "spec", spec, "tz", r.opts.Location.String())
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish or ctx
// to expire.
func (r *Refresher) Stop(ctx context.Context) {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts cron.Logger onto the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
