package tournament

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/monopoly-server-go/internal/game"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

func newSeries(t *testing.T, games int, names ...string) *Series {
	t.Helper()
	s := NewSeries("test", games, 150, 11, zaptest.NewLogger(t))
	for _, name := range names {
		require.NoError(t, s.AddEntrant(name, nil))
	}
	return s
}

func TestEntrants(t *testing.T) {
	s := newSeries(t, 1, "alice", "bob", "carol")

	assert.True(t, errors.Is(s.AddEntrant("bob", nil), ErrEntrantExists))
	require.NoError(t, s.RemoveEntrant("bob"))
	assert.True(t, errors.Is(s.RemoveEntrant("bob"), ErrEntrantNotFound))
	assert.Equal(t, []string{"alice", "carol"}, s.Order)

	require.NoError(t, s.Start())
	assert.Equal(t, SeriesStateInProgress, s.GetState())
	assert.True(t, errors.Is(s.AddEntrant("dave", nil), ErrSeriesStarted))
	assert.True(t, errors.Is(s.Start(), ErrSeriesStarted))
}

func TestStartNeedsEntrantsAndGames(t *testing.T) {
	assert.True(t, errors.Is(newSeries(t, 1, "alice").Start(), ErrNotEnough))
	assert.Error(t, newSeries(t, 0, "alice", "bob").Start())
}

func TestSeatingRotates(t *testing.T) {
	s := newSeries(t, 3, "alice", "bob", "carol")

	names := func(seats []game.Seat) []string {
		out := make([]string, len(seats))
		for i, seat := range seats {
			out[i] = seat.Name
		}
		return out
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, names(s.seating(0)))
	assert.Equal(t, []string{"bob", "carol", "alice"}, names(s.seating(1)))
	assert.Equal(t, []string{"carol", "alice", "bob"}, names(s.seating(5)))
}

func TestRecordResult(t *testing.T) {
	s := newSeries(t, 2, "alice", "bob", "carol")
	assert.Error(t, s.RecordResult(GameResult{Winner: "alice"}, nil), "not started")
	require.NoError(t, s.Start())

	require.NoError(t, s.RecordResult(GameResult{Number: 0, Winner: "bob"}, []string{"bob"}))
	require.NoError(t, s.RecordResult(GameResult{Number: 1}, []string{"alice", "bob"}))
	assert.Equal(t, SeriesStateFinished, s.GetState())

	snap := s.Snapshot()
	require.Len(t, snap.Entrants, 3)
	assert.Equal(t, EntrantSnapshot{Name: "alice", Points: 1, Losses: 1, Draws: 1}, snap.Entrants[0])
	assert.Equal(t, EntrantSnapshot{Name: "bob", Points: 4, Wins: 1, Draws: 1}, snap.Entrants[1])
	assert.Equal(t, EntrantSnapshot{Name: "carol", Losses: 2}, snap.Entrants[2])
	assert.NotNil(t, snap.EndTime)

	standings := s.Standings()
	assert.Equal(t, "bob", standings[0].Name)
	assert.Equal(t, "carol", standings[2].Name)
}

func TestRecordResultRejectsUnknownWinner(t *testing.T) {
	s := newSeries(t, 1, "alice", "bob")
	require.NoError(t, s.Start())
	assert.True(t, errors.Is(s.RecordResult(GameResult{Winner: "zed"}, nil), ErrEntrantNotFound))
}

func TestPlay(t *testing.T) {
	s := newSeries(t, 6, "alice", "bob", "carol")
	var turns atomic.Int64

	err := s.Play(context.Background(), PlayOptions{
		Workers: 3,
		Observe: func(evt rules.Event) {
			if evt.Type == rules.EventTurnCompleted {
				turns.Add(1)
			}
		},
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, SeriesStateFinished, snap.State)
	require.Len(t, snap.Results, 6)
	assert.Positive(t, turns.Load())

	seeds := map[int64]bool{}
	played := 0
	for _, entrant := range snap.Entrants {
		played += entrant.Wins
	}
	for _, result := range snap.Results {
		seeds[result.Seed] = true
		assert.Equal(t, int64(11)+int64(result.Number), result.Seed)
		assert.Len(t, result.Checksum, 64)
		if result.Winner != "" {
			played--
		}
	}
	assert.Len(t, seeds, 6)
	assert.Zero(t, played, "every winner is credited exactly once")
}

func TestPlayIsReproducible(t *testing.T) {
	checksums := func() map[int]string {
		s := newSeries(t, 4, "alice", "bob")
		require.NoError(t, s.Play(context.Background(), PlayOptions{Workers: 2}))
		out := map[int]string{}
		for _, result := range s.Snapshot().Results {
			out[result.Number] = result.Checksum
		}
		return out
	}
	assert.Equal(t, checksums(), checksums())
}

func TestPlayStopsOnCancel(t *testing.T) {
	s := newSeries(t, 4, "alice", "bob")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Play(ctx, PlayOptions{Workers: 2})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotEqual(t, SeriesStateFinished, s.GetState())
}

func TestManager(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	s := m.CreateSeries("weekly", 1, 10, 3)

	got, ok := m.GetSeries(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.ActiveCount())

	m.RemoveSeries(s.ID)
	_, ok = m.GetSeries(s.ID)
	assert.False(t, ok)
	assert.Zero(t, m.ActiveCount())
}
