package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptgboard/internal/fetch"
	"ptgboard/internal/model"
)

type stubFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, src fetch.Source) (fetch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return fetch.Result{}, s.err
	}
	return fetch.Result{Source: src, Body: []byte(s.body)}, nil
}

func (s *stubFetcher) set(body string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body, s.err = body, err
}

func (s *stubFetcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const doc1 = `{
  "eventid": "ptg2023",
  "tracks": ["nova"],
  "slots": {"Monday": [{"name": "MonA1", "desc": "09:00-10:00"}]},
  "schedule": {"bexar": {"MonA1": "nova"}},
  "last_check_in": {"jane": {"nick": "jane", "location": "#nova", "in": "2023-06-12 09:00:00", "out": null}}
}`

func fixedNow() time.Time { return time.Date(2023, 6, 12, 9, 30, 0, 0, time.UTC) }

func TestRefreshOnce_PublishesSnapshot(t *testing.T) {
	f := &stubFetcher{body: doc1}
	var updates []*Snapshot
	r := New(f, Options{
		Source:   fetch.Source{ID: "ptg", URL: "https://ptg.example.org/ptg.json"},
		Now:      fixedNow,
		OnUpdate: func(s *Snapshot) { updates = append(updates, s) },
	})

	_, err := r.Current()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap, err := r.RefreshOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ptg2023", snap.Document.EventID)
	assert.Equal(t, []string{"jane"}, snap.Roster.Track("nova"))
	assert.Equal(t, doc1, string(snap.Raw))
	assert.Equal(t, fixedNow(), snap.FetchedAt)
	assert.Zero(t, snap.Anchored)

	cur, err := r.Current()
	require.NoError(t, err)
	assert.Same(t, snap, cur)
	assert.Len(t, updates, 1)

	cell := snap.Resolver().Cell("bexar", "MonA1", 1)
	assert.Equal(t, model.TrackCode("nova"), cell.Track)
}

func TestRefreshOnce_KeepsPreviousOnFailure(t *testing.T) {
	f := &stubFetcher{body: doc1}
	r := New(f, Options{Now: fixedNow})
	first, err := r.RefreshOnce(context.Background())
	require.NoError(t, err)

	f.set("", errors.New("connection refused"))
	_, err = r.RefreshOnce(context.Background())
	assert.Error(t, err)

	f.set(`["not", "an", "object"]`, nil)
	_, err = r.RefreshOnce(context.Background())
	assert.ErrorIs(t, err, model.ErrNotObject)

	cur, err := r.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestRefreshOnce_AnchorsSlots(t *testing.T) {
	f := &stubFetcher{body: doc1}
	r := New(f, Options{
		Now:        fixedNow,
		EventStart: time.Date(2023, 6, 12, 0, 0, 0, 0, time.UTC),
	})
	snap, err := r.RefreshOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Anchored)

	slot, ok := snap.Document.Slot("MonA1")
	require.True(t, ok)
	require.NotNil(t, slot.Realtime)
	assert.True(t, slot.Realtime.Equal(time.Date(2023, 6, 12, 9, 0, 0, 0, time.UTC)))
}

func TestStart_RejectsBadSpecAndDoubleStart(t *testing.T) {
	r := New(&stubFetcher{body: doc1}, Options{})
	assert.Error(t, r.Start(context.Background(), "every now and then"))

	require.NoError(t, r.Start(context.Background(), "@every 1h"))
	assert.Error(t, r.Start(context.Background(), "@every 1h"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	r.Stop(ctx)
}

func TestStart_RunsOnSchedule(t *testing.T) {
	f := &stubFetcher{body: doc1}
	r := New(f, Options{})
	require.NoError(t, r.Start(context.Background(), "@every 1s"))
	defer r.Stop(context.Background())

	assert.Eventually(t, func() bool { return f.count() > 0 }, 5*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, err := r.Current()
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
