package tournament

import (
	"context"
	"errors"
	"testing"

	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/jason-s-yu/ginrummy/internal/bot"
	"github.com/jason-s-yu/ginrummy/internal/game"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boomeranger takes the discard top and throws it straight back.
type boomeranger struct{}

func (boomeranger) Name() string { return "Boomeranger" }
func (boomeranger) DrawDecision(context.Context, engine.PlayerView) (engine.DrawSource, error) {
	return engine.DrawFromDiscard, nil
}
func (boomeranger) DiscardDecision(_ context.Context, v engine.PlayerView) (engine.Card, error) {
	return v.DrawnFromDiscard, nil
}
func (boomeranger) KnockDecision(context.Context, engine.PlayerView) (bool, error) { return true, nil }

// passer draws from the deck, throws the card it drew and never knocks.
type passer struct{}

func (passer) Name() string { return "Passer" }
func (passer) DrawDecision(context.Context, engine.PlayerView) (engine.DrawSource, error) {
	return engine.DrawFromDeck, nil
}
func (passer) DiscardDecision(_ context.Context, v engine.PlayerView) (engine.Card, error) {
	return v.Hand[len(v.Hand)-1], nil
}
func (passer) KnockDecision(context.Context, engine.PlayerView) (bool, error) { return false, nil }

func defaultEntrants(t *testing.T) []Entrant {
	t.Helper()
	r := bot.Default()
	var out []Entrant
	for _, name := range r.Names() {
		f, err := r.Lookup(name)
		require.NoError(t, err)
		out = append(out, Entrant{Name: name, New: f})
	}
	return out
}

func testConfig(games int, seed uint64, workers int) Config {
	logger, _ := test.NewNullLogger()
	return Config{GamesPerMatch: games, Seed: seed, Workers: workers, Logger: logger}
}

func TestPairings(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, Pairings(4))
	assert.Empty(t, Pairings(1))
}

func TestSeating(t *testing.T) {
	want := [][2]uint8{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 0}}
	for g, w := range want {
		seat, dealer := Seating(g)
		assert.Equal(t, w, [2]uint8{seat, dealer}, "game %d", g)
	}
}

func TestHandSeed(t *testing.T) {
	seen := make(map[uint64]bool)
	for p := 0; p < 6; p++ {
		for g := 0; g < 100; g++ {
			s := HandSeed(42, p, g)
			assert.False(t, seen[s], "pairing %d game %d repeats a seed", p, g)
			seen[s] = true
			assert.Equal(t, s, HandSeed(42, p, g))
		}
	}
	assert.NotEqual(t, HandSeed(1, 0, 0), HandSeed(2, 0, 0))
}

func TestRoundRobinCounts(t *testing.T) {
	entrants := defaultEntrants(t)
	res, err := RunRoundRobin(context.Background(), entrants, testConfig(6, 7, 4))
	require.NoError(t, err)

	require.Len(t, res.Matches, 6)
	require.Len(t, res.Rankings, 4)
	totalWins, totalLosses := 0, 0
	for _, s := range res.Rankings {
		assert.Equal(t, 6*3, s.GamesPlayed, s.Name)
		assert.Equal(t, s.GamesPlayed, s.Wins+s.Losses+s.Draws, s.Name)
		assert.Len(t, s.HeadToHead, 3)
		assert.Zero(t, s.Errors, "sample bots never fault")
		totalWins += s.Wins
		totalLosses += s.Losses
	}
	assert.Equal(t, totalWins, totalLosses)

	for i := 1; i < len(res.Rankings); i++ {
		assert.GreaterOrEqual(t, res.Rankings[i-1].WinRate(), res.Rankings[i].WinRate())
	}
	assert.Len(t, res.Elo.Table(), 4)
}

// TestRoundRobinIsDeterministic checks that worker count does not change results.
func TestRoundRobinIsDeterministic(t *testing.T) {
	entrants := defaultEntrants(t)
	serial, err := RunRoundRobin(context.Background(), entrants, testConfig(4, 99, 1))
	require.NoError(t, err)
	parallel, err := RunRoundRobin(context.Background(), entrants, testConfig(4, 99, 8))
	require.NoError(t, err)

	assert.Equal(t, serial.Matches, parallel.Matches)
	assert.Equal(t, serial.Elo.Table(), parallel.Elo.Table())
	for p := range serial.Hands {
		for g := range serial.Hands[p] {
			a, b := serial.Hands[p][g], parallel.Hands[p][g]
			assert.Equal(t, a.Seed, b.Seed)
			assert.Equal(t, a.Result.Reason, b.Result.Reason)
			assert.Equal(t, a.Result.Deadwood, b.Result.Deadwood)
		}
	}
}

func TestRoundRobinRejectsBadEntrants(t *testing.T) {
	entrants := defaultEntrants(t)
	_, err := RunRoundRobin(context.Background(), entrants[:1], testConfig(1, 1, 1))
	assert.ErrorIs(t, err, ErrTooFewEntrants)

	dup := append(entrants[:2:2], entrants[0])
	_, err = RunRoundRobin(context.Background(), dup, testConfig(1, 1, 1))
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = RunRoundRobin(context.Background(), []Entrant{entrants[0], {Name: "none"}}, testConfig(1, 1, 1))
	assert.Error(t, err)
}

func TestForfeitsAreRecorded(t *testing.T) {
	cheat := Entrant{Name: "Boomeranger", New: func(uint64) game.Player { return boomeranger{} }}
	pass := Entrant{Name: "Passer", New: func(uint64) game.Player { return passer{} }}

	m, err := RunMatch(context.Background(), cheat, pass, testConfig(4, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, 4, m.GamesPlayed)
	assert.Equal(t, [2]int{0, 4}, m.Wins)
	assert.Equal(t, [2]int{4, 0}, m.Forfeits)
	assert.Equal(t, [2]int{0, 0}, m.Points, "forfeits score no points")
	require.Len(t, m.Errors, 4)
	assert.Contains(t, m.Errors[0], "Boomeranger forfeited")
}

func TestFactoryPanicIsRecorded(t *testing.T) {
	broken := Entrant{Name: "Broken", New: func(uint64) game.Player { panic("no brain") }}
	basic := Entrant{Name: bot.BasicName, New: func(uint64) game.Player { return bot.NewBasic() }}

	m, err := RunMatch(context.Background(), basic, broken, testConfig(3, 3, 1))
	require.NoError(t, err)
	assert.Zero(t, m.GamesPlayed)
	require.Len(t, m.Errors, 3)
	assert.Contains(t, m.Errors[0], "no brain")
}

func TestCanceledTournament(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunRoundRobin(ctx, defaultEntrants(t), testConfig(2, 1, 2))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOnHandCallback(t *testing.T) {
	entrants := defaultEntrants(t)[:2]
	cfg := testConfig(5, 11, 1)
	var got []HandResult
	cfg.OnHand = func(hr HandResult) { got = append(got, hr) }

	_, err := RunRoundRobin(context.Background(), entrants, cfg)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, hr := range got {
		assert.NotEqual(t, engine.ReasonNone, hr.Result.Reason)
		seat, dealer := Seating(hr.Game)
		assert.Equal(t, seat, hr.Bot0Seat)
		assert.Equal(t, dealer, hr.Dealer)
	}
}

func TestMatchResultRecordHand(t *testing.T) {
	m := newMatchResult("A", "B")
	// A in seat 1 wins a gin.
	m.RecordHand(0, engine.GameResult{Winner: 1, Reason: engine.ReasonGin, Points: 39}, 1)
	// A in seat 0 is undercut by B.
	m.RecordHand(1, engine.GameResult{Winner: 1, Reason: engine.ReasonUndercut, Points: 25}, 0)
	m.RecordHand(2, engine.GameResult{Winner: engine.NoPlayer, Reason: engine.ReasonStalemate}, 0)
	m.RecordHand(3, engine.GameResult{Winner: 0, Reason: engine.ReasonForfeit, Offender: 1, Fault: errors.New("late")}, 0)

	assert.Equal(t, 4, m.GamesPlayed)
	assert.Equal(t, [2]int{2, 1}, m.Wins)
	assert.Equal(t, 1, m.Draws)
	assert.Equal(t, [2]int{39, 25}, m.Points)
	assert.Equal(t, [2]int{1, 0}, m.Gins)
	assert.Equal(t, [2]int{0, 1}, m.Undercuts)
	assert.Equal(t, [2]int{0, 1}, m.Forfeits)
	assert.InDelta(t, 2.0/3.0, m.WinRate(0), 1e-9)
	assert.Equal(t, "A vs B: 2-1-1", m.String())
}

func TestRank(t *testing.T) {
	a := &BotStats{Name: "a", Wins: 5, Losses: 5, TotalPoints: 10}
	b := &BotStats{Name: "b", Wins: 5, Losses: 5, TotalPoints: 20}
	c := &BotStats{Name: "c", Wins: 9, Losses: 1}
	d := &BotStats{Name: "d"}
	stats := []*BotStats{a, d, b, c}
	Rank(stats)
	assert.Equal(t, []*BotStats{c, b, a, d}, stats)
}

func TestElo(t *testing.T) {
	e := NewElo(DefaultEloStart, DefaultEloK)
	dA, dB := e.UpdateHand("a", "b", 1, 0)
	assert.InDelta(t, DefaultEloK/2, dA, 1e-9)
	assert.InDelta(t, -dA, dB, 1e-9)

	e.UpdateHand("a", "b", 0.5, 0)
	assert.Greater(t, e.Rating("a"), e.Rating("b"))
	assert.Equal(t, DefaultEloStart, e.Rating("unknown"))

	big := NewElo(DefaultEloStart, DefaultEloK)
	gain, _ := big.UpdateHand("a", "b", 1, 50)
	assert.Greater(t, gain, dA, "bigger wins move ratings further")

	table := e.Table()
	require.Len(t, table, 2)
	assert.Equal(t, "a", table[0].Name)
	assert.Equal(t, 2, table[0].Hands)
}

func TestReports(t *testing.T) {
	a := newBotStats("Alpha")
	b := newBotStats("Beta")
	m := newMatchResult("Alpha", "Beta")
	m.RecordHand(0, engine.GameResult{Winner: 0, Reason: engine.ReasonKnock, Points: 7}, 0)
	m.RecordHand(1, engine.GameResult{Winner: 0, Reason: engine.ReasonGin, Points: 30}, 1)
	m.RecordError("game 2: boom")
	a.recordMatch(m, 0)
	b.recordMatch(m, 1)
	rankings := []*BotStats{a, b}
	Rank(rankings)

	table := FormatRankings(rankings)
	assert.Contains(t, table, "TOURNAMENT RESULTS")
	assert.Contains(t, table, "Alpha")
	assert.Contains(t, table, " 50.0%")

	h2h := FormatHeadToHead(rankings)
	assert.Contains(t, h2h, "Alpha vs Beta: 1-1")
	assert.Contains(t, h2h, "Beta vs Alpha: 1-1")

	assert.Contains(t, FormatErrors([]*MatchResult{m}), "game 2: boom")
	assert.Empty(t, FormatErrors([]*MatchResult{newMatchResult("x", "y")}))

	e := NewElo(DefaultEloStart, DefaultEloK)
	e.UpdateHand("Alpha", "Beta", 1, 7)
	assert.Contains(t, FormatElo(e), "Alpha")
}
