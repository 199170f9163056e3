package query

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/squad-console/pkg/debounce"
	"github.com/0xmhha/squad-console/pkg/logger"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/mutation"
	"github.com/0xmhha/squad-console/pkg/stats"
)

type reply struct {
	res model.ListResult[model.Player]
	err error
}

type call struct {
	params model.ListParams
	reply  chan reply
}

// fakeLister hands every request to the test, which answers it explicitly.
type fakeLister struct {
	calls chan call
}

func newFakeLister() *fakeLister {
	return &fakeLister{calls: make(chan call, 16)}
}

func (f *fakeLister) List(ctx context.Context, p model.ListParams) (model.ListResult[model.Player], error) {
	c := call{params: p, reply: make(chan reply, 1)}
	f.calls <- c
	select {
	case r := <-c.reply:
		return r.res, r.err
	case <-ctx.Done():
		return model.ListResult[model.Player]{}, ctx.Err()
	}
}

func (f *fakeLister) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("expected a fetch")
		return call{}
	}
}

func (f *fakeLister) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch %+v", c.params)
	case <-time.After(30 * time.Millisecond):
	}
}

func page(ids ...string) model.ListResult[model.Player] {
	items := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.Player{ID: id, Cost: 100})
	}
	return model.ListResult[model.Player]{
		Items: items,
		Stats: model.Counters{
			stats.KeyTotalPlayers: int64(len(ids)),
			stats.KeyTotalCost:    int64(100 * len(ids)),
		},
		Pagination: &model.Pagination{Page: 1, Limit: 10, TotalItems: len(ids), TotalPages: 1},
	}
}

func newTestController(t *testing.T, log logger.Logger) (*Controller[model.Player], *fakeLister, *debounce.ManualClock) {
	t.Helper()
	clock := debounce.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	lister := newFakeLister()
	if log == nil {
		log = logger.Noop()
	}
	c := New[model.Player](context.Background(), Config{Name: "players", Clock: clock, Limit: 10}, lister, log)
	t.Cleanup(c.Close)
	return c, lister, clock
}

func waitIdle(t *testing.T, c *Controller[model.Player]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestController_KeystrokeBurstIssuesOneFetch(t *testing.T) {
	c, lister, clock := newTestController(t, nil)

	for _, term := range []string{"m", "me", "mes", "messi"} {
		c.SetSearchTerm(term)
		clock.Advance(100 * time.Millisecond)
	}

	s := c.State()
	assert.Equal(t, "messi", s.SearchTerm, "input reflects the keystroke immediately")
	assert.True(t, s.IsSearching)
	assert.Empty(t, s.DebouncedTerm)
	lister.none(t)

	clock.Advance(DefaultDebounce)

	got := lister.next(t)
	assert.Equal(t, "messi", got.params.Search)
	assert.Equal(t, 1, got.params.Page)
	assert.Equal(t, 10, got.params.Limit)
	assert.False(t, c.State().IsSearching)
	assert.True(t, c.State().Loading)

	got.reply <- reply{res: page("p1")}
	waitIdle(t, c)
	lister.none(t)

	s = c.State()
	assert.Equal(t, "messi", s.DebouncedTerm)
	assert.False(t, s.Loading)
	assert.Len(t, s.Items, 1)
}

func TestController_SupersededResultDiscarded(t *testing.T) {
	rec := logger.NewRecorder()
	c, lister, clock := newTestController(t, rec)

	c.SetSearchTerm("foo")
	clock.Advance(DefaultDebounce)
	a := lister.next(t)

	c.SetSearchTerm("foobar")
	clock.Advance(DefaultDebounce)
	b := lister.next(t)
	assert.Equal(t, "foobar", b.params.Search)

	b.reply <- reply{res: page("b1", "b2")}
	waitIdle(t, c)

	a.reply <- reply{res: page("a1")}
	require.Eventually(t, func() bool {
		return rec.Has(slog.LevelDebug, "discarding superseded result")
	}, time.Second, time.Millisecond)

	s := c.State()
	require.Len(t, s.Items, 2)
	assert.Equal(t, "b1", s.Items[0].ID)
}

func TestController_FailedFetchKeepsItems(t *testing.T) {
	c, lister, _ := newTestController(t, nil)

	c.Refresh()
	lister.next(t).reply <- reply{res: page("p1", "p2")}
	waitIdle(t, c)

	c.Refresh()
	lister.next(t).reply <- reply{err: errors.New("network down")}
	waitIdle(t, c)

	s := c.State()
	assert.Equal(t, "network down", s.Err)
	assert.False(t, s.Loading)
	assert.Len(t, s.Items, 2)

	// retry clears the banner
	c.Refresh()
	lister.next(t).reply <- reply{res: page("p1")}
	waitIdle(t, c)
	assert.Empty(t, c.State().Err)
}

func TestController_PatchDuringFetchIsReplayed(t *testing.T) {
	c, lister, _ := newTestController(t, nil)

	c.Refresh()
	lister.next(t).reply <- reply{res: page("p1", "p2")}
	waitIdle(t, c)

	c.Refresh()
	inflight := lister.next(t)

	created := model.Player{ID: "p3", Cost: 500}
	c.Patch(func(s mutation.ListState[model.Player]) mutation.ListState[model.Player] {
		return mutation.ApplyCreate(s, created, stats.Players, true)
	})
	assert.Equal(t, "p3", c.State().Items[0].ID, "patch shows before the fetch returns")

	// the server answered before it saw the create
	inflight.reply <- reply{res: page("p1", "p2")}
	waitIdle(t, c)

	s := c.State()
	require.Len(t, s.Items, 3)
	assert.Equal(t, "p3", s.Items[0].ID)
	assert.Equal(t, int64(3), s.Stats[stats.KeyTotalPlayers])
	assert.Equal(t, int64(700), s.Stats[stats.KeyTotalCost])
	assert.Equal(t, 3, s.Pagination.TotalItems)
}

func TestController_ReplayIsIdempotentWhenServerSawMutation(t *testing.T) {
	c, lister, _ := newTestController(t, nil)

	c.Refresh()
	inflight := lister.next(t)

	c.Patch(func(s mutation.ListState[model.Player]) mutation.ListState[model.Player] {
		return mutation.ApplyDelete(s, "p2", stats.Players)
	})

	inflight.reply <- reply{res: page("p1")}
	waitIdle(t, c)

	s := c.State()
	require.Len(t, s.Items, 1)
	assert.Equal(t, int64(1), s.Stats[stats.KeyTotalPlayers])
}

func TestController_FilterAndSearchResetPage(t *testing.T) {
	c, lister, clock := newTestController(t, nil)

	c.SetPage(3)
	clock.Advance(DefaultDebounce)
	got := lister.next(t)
	assert.Equal(t, 3, got.params.Page)
	got.reply <- reply{res: page("p1")}
	waitIdle(t, c)

	c.SetFilter("team-1")
	assert.Equal(t, 1, c.State().Page)
	assert.False(t, c.State().IsSearching, "filter changes are not keystrokes")
	clock.Advance(DefaultDebounce)
	got = lister.next(t)
	assert.Equal(t, "team-1", got.params.FilterID)
	assert.Equal(t, 1, got.params.Page)
	got.reply <- reply{res: page("p1")}
	waitIdle(t, c)

	c.SetPage(2)
	c.SetSearchTerm("x")
	clock.Advance(DefaultDebounce)
	got = lister.next(t)
	assert.Equal(t, 1, got.params.Page)
	assert.Equal(t, "team-1", got.params.FilterID)
	got.reply <- reply{res: page()}
}

func TestController_NextAndPrevPage(t *testing.T) {
	c, lister, clock := newTestController(t, nil)

	assert.False(t, c.PrevPage())

	c.Refresh()
	res := page("p1")
	res.Pagination.TotalPages = 2
	lister.next(t).reply <- reply{res: res}
	waitIdle(t, c)

	require.True(t, c.NextPage())
	clock.Advance(DefaultDebounce)
	got := lister.next(t)
	assert.Equal(t, 2, got.params.Page)
	got.reply <- reply{res: res}
	waitIdle(t, c)

	assert.False(t, c.NextPage(), "already on the last page")
	assert.True(t, c.PrevPage())
}

func TestController_RefreshCancelsPendingDebounce(t *testing.T) {
	c, lister, clock := newTestController(t, nil)

	c.SetSearchTerm("ron")
	c.Refresh()

	got := lister.next(t)
	assert.Equal(t, "ron", got.params.Search)
	assert.False(t, c.State().IsSearching)

	clock.Advance(time.Second)
	lister.none(t)
	got.reply <- reply{res: page()}
}

func TestController_CloseStopsEverything(t *testing.T) {
	c, lister, clock := newTestController(t, nil)

	c.SetSearchTerm("late")
	c.Close()
	c.Close()

	clock.Advance(time.Second)
	lister.none(t)
	assert.Zero(t, clock.Pending())

	c.Refresh()
	lister.none(t)

	err := c.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestController_CloseDropsInflightResult(t *testing.T) {
	c, lister, _ := newTestController(t, nil)

	c.Refresh()
	got := lister.next(t)
	c.Close()

	got.reply <- reply{res: page("p1")}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.State().Items)
}

func TestController_WaitHonoursContext(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	c.SetSearchTerm("pending")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
}

func TestController_ChangedCoalesces(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	c.SetSearchTerm("a")
	c.SetSearchTerm("ab")
	c.SetSearchTerm("abc")

	select {
	case <-c.Changed():
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-c.Changed():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestListerFunc(t *testing.T) {
	var seen model.ListParams
	l := ListerFunc[model.Team](func(_ context.Context, p model.ListParams) (model.ListResult[model.Team], error) {
		seen = p
		return model.ListResult[model.Team]{Items: []model.Team{{ID: "t"}}}, nil
	})

	res, err := l.List(context.Background(), model.ListParams{Search: "q"})
	require.NoError(t, err)
	assert.Equal(t, "q", seen.Search)
	assert.Len(t, res.Items, 1)
}
