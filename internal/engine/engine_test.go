package engine

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/strategy"
	"github.com/roach88/devsel/internal/testutil"
	"github.com/roach88/devsel/internal/timeline"
)

var catalog = device.Default()

func dev(name string) device.Device {
	return catalog.MustLookup(name)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func setupEngine(t *testing.T, opts ...Option) (*Engine, *store.Store) {
	t.Helper()
	j := testutil.Journal(t)
	opts = append([]Option{
		WithJournal(j),
		WithIDGenerator(testutil.NewFixedSessionGenerator("session-1")),
		WithClock(testutil.NewDeterministicClock()),
		WithLogger(discardLogger()),
	}, opts...)
	return New(timeline.New(strategy.NewPriorityList()), opts...), j
}

func activeOf(s timeline.Step) string {
	return activeName(s)
}

func TestEngine_New(t *testing.T) {
	e, _ := setupEngine(t)

	assert.Equal(t, "session-1", e.SessionID())
	assert.Equal(t, 1, e.Timeline().Len())
	assert.Equal(t, int64(0), e.Clock().Current())
	assert.Equal(t, 0, e.QueueLen())
}

func TestEngine_NewGeneratesUUID(t *testing.T) {
	e := New(timeline.New(strategy.NewPriorityList()), WithLogger(discardLogger()))

	assert.Len(t, e.SessionID(), 36)
}

func TestEngine_ApplyJournalsSteps(t *testing.T) {
	ctx := context.Background()
	e, j := setupEngine(t)

	_, err := e.Apply(ctx, AtHead, timeline.Plug(dev("USB 1")))
	require.NoError(t, err)
	step, err := e.Apply(ctx, AtHead, timeline.Plug(dev("3.5mm")))
	require.NoError(t, err)
	assert.Equal(t, "3.5mm", activeOf(step))

	sess, err := j.ReadSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, strategy.KindPriorityList, sess.Strategy)
	assert.Equal(t, int64(1), sess.CreatedSeq)

	recs, err := j.ReadSteps(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(2), recs[0].Seq)
	assert.Equal(t, 1, recs[0].Index)
	assert.Equal(t, "plug", recs[0].Kind)
	assert.Equal(t, "Plug USB 1", recs[0].Label)

	assert.Equal(t, int64(3), recs[1].Seq)
	assert.Equal(t, "3.5mm", recs[1].Active)
	assert.Equal(t, []string{"USB 1", "3.5mm"}, recs[1].Connected)
	assert.Equal(t, []string{"3.5mm", "USB 1"}, recs[1].Priority)

	want, err := StepDigest(2, step)
	require.NoError(t, err)
	assert.Equal(t, want, recs[1].Digest)
}

func TestEngine_ApplyRejectedLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	e, j := setupEngine(t)
	_, err := e.Apply(ctx, AtHead, timeline.Plug(dev("USB 1")))
	require.NoError(t, err)
	seq := e.Clock().Current()

	_, err = e.Apply(ctx, AtHead, timeline.Select(dev("HDMI 1")))

	assert.True(t, strategy.IsNotConnected(err))
	assert.Equal(t, 2, e.Timeline().Len())
	assert.Equal(t, seq, e.Clock().Current())
	recs, err := j.ReadSteps(ctx, "session-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestEngine_ApplyInThePastTruncates(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)
	for _, name := range []string{"USB 1", "USB 2", "HDMI 1"} {
		_, err := e.Apply(ctx, AtHead, timeline.Plug(dev(name)))
		require.NoError(t, err)
	}

	step, err := e.Apply(ctx, 1, timeline.Plug(dev("Bluetooth 1")))

	require.NoError(t, err)
	assert.Equal(t, 3, e.Timeline().Len())
	assert.Equal(t, "Bluetooth 1", activeOf(step))
}

func TestEngine_ApplyOutOfRange(t *testing.T) {
	e, _ := setupEngine(t)

	_, err := e.Apply(context.Background(), 4, timeline.Plug(dev("USB 1")))

	assert.ErrorIs(t, err, timeline.ErrIndexOutOfRange)
}

func TestEngine_ApplyCancelledContext(t *testing.T) {
	e, _ := setupEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Apply(ctx, AtHead, timeline.Plug(dev("USB 1")))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, e.Timeline().Len())
}

func TestEngine_ApplyWithoutJournal(t *testing.T) {
	e := New(timeline.New(strategy.NewPriorityList()),
		WithSessionID("bare"),
		WithLogger(discardLogger()),
	)

	step, err := e.Apply(context.Background(), AtHead, timeline.Plug(dev("Internal")))

	require.NoError(t, err)
	assert.Equal(t, "Internal", activeOf(step))
	assert.Equal(t, int64(2), e.Clock().Current())
}

func TestEngine_JournalFailure(t *testing.T) {
	ctx := context.Background()
	e, j := setupEngine(t)
	require.NoError(t, e.Begin(ctx))
	require.NoError(t, j.Close())

	step, err := e.Apply(ctx, AtHead, timeline.Plug(dev("USB 1")))

	assert.True(t, IsJournalError(err))
	assert.Equal(t, "USB 1", activeOf(step), "the step is applied even if journaling fails")
}

func TestEngine_BeginIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, j := setupEngine(t)

	require.NoError(t, e.Begin(ctx))
	require.NoError(t, e.Begin(ctx))

	assert.Equal(t, int64(1), e.Clock().Current())
	sessions, err := j.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestEngine_RunProcessesInOrder(t *testing.T) {
	e, j := setupEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan Result, 4)
	events := []timeline.Event{
		timeline.Plug(dev("USB 1")),
		timeline.Plug(dev("HDMI 1")),
		timeline.Select(dev("Bluetooth 1")), // rejected
		timeline.Select(dev("HDMI 1")),
	}
	for _, ev := range events {
		require.True(t, e.Enqueue(Request{At: AtHead, Event: ev, Done: done}))
	}
	e.Stop()

	require.NoError(t, e.Run(ctx))

	var results []Result
	for range events {
		results = append(results, <-done)
	}
	require.NoError(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.True(t, strategy.IsNotConnected(results[2].Err))
	require.NoError(t, results[3].Err)
	assert.Equal(t, "HDMI 1", activeOf(results[3].Step))
	assert.Equal(t, 3, results[3].Index)

	recs, err := j.ReadSteps(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"Plug USB 1", "Plug HDMI 1", "Select HDMI 1"},
		[]string{recs[0].Label, recs[1].Label, recs[2].Label})
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	e, _ := setupEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	done := make(chan Result, 1)
	require.True(t, e.Enqueue(Request{At: AtHead, Event: timeline.Plug(dev("USB 1")), Done: done}))
	res := <-done
	require.NoError(t, res.Err)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, e.Enqueue(Request{}), "queue closed after Run returns")
}

func TestEngine_RunDoesNotBlockOnFullDone(t *testing.T) {
	e, _ := setupEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan Result) // unbuffered, never read
	e.Enqueue(Request{At: AtHead, Event: timeline.Plug(dev("USB 1")), Done: done})
	e.Stop()

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 2, e.Timeline().Len())
}
