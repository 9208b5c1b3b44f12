// Package tournament plays matches and round-robin tournaments between bots
// and aggregates the results.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/jason-s-yu/ginrummy/internal/bot"
	"github.com/jason-s-yu/ginrummy/internal/game"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultGamesPerMatch is used when Config.GamesPerMatch is not positive.
const DefaultGamesPerMatch = 100

var (
	// ErrTooFewEntrants is returned for a tournament of fewer than two bots.
	ErrTooFewEntrants = errors.New("a tournament needs at least 2 bots")
	// ErrDuplicateName is returned when two entrants share a name.
	ErrDuplicateName = errors.New("duplicate bot name")
)

// Entrant is a named bot factory. Every hand gets fresh players.
type Entrant struct {
	Name string
	New  bot.Factory
}

// Config controls how hands are played.
type Config struct {
	GamesPerMatch   int
	Seed            uint64
	Workers         int // <=0 uses GOMAXPROCS
	DecisionTimeout time.Duration
	Rules           engine.HouseRules
	Logger          logrus.FieldLogger
	// OnHand is called from worker goroutines as each hand finishes.
	OnHand func(HandResult)
}

func (c Config) withDefaults() Config {
	if c.GamesPerMatch <= 0 {
		c.GamesPerMatch = DefaultGamesPerMatch
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// HandResult is one played hand of a pairing.
type HandResult struct {
	Pairing  int
	Game     int
	Seed     uint64
	Dealer   uint8
	Bot0Seat uint8 // seat of the pairing's first bot
	HandID   uuid.UUID
	Result   engine.GameResult
	Err      error // set when the hand could not be played at all
}

// Result is the outcome of a tournament.
type Result struct {
	ID       uuid.UUID
	Seed     uint64
	Rankings []*BotStats
	Matches  []*MatchResult
	Hands    [][]HandResult // by pairing, then game
	Elo      *Elo
}

// Pairings returns every unordered pair of n entrants in (i, j) order, i < j.
func Pairings(n int) [][2]int {
	var out [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}

// Seating returns Bot0's seat and the dealer for game g of a match. Seats
// swap every game and the dealer every two games, so each bot deals and acts
// first equally often from each seat.
func Seating(g int) (bot0Seat, dealer uint8) {
	return uint8(g % 2), uint8((g / 2) % 2)
}

// HandSeed derives the shuffle seed of one hand from the tournament seed.
// Seeds are fixed before any hand runs, so results do not depend on worker
// scheduling.
func HandSeed(base uint64, pairing, g int) uint64 {
	return splitmix64(splitmix64(base^splitmix64(uint64(pairing)+1)) + uint64(g))
}

// botSeed derives the randomness seed of the bot in seat from a hand seed.
func botSeed(hand uint64, seat uint8) uint64 {
	return splitmix64(hand ^ (0xA24BAED4963EE407 * (uint64(seat) + 1)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// RunMatch plays cfg.GamesPerMatch hands between a and b.
func RunMatch(ctx context.Context, a, b Entrant, cfg Config) (*MatchResult, error) {
	res, err := run(ctx, []Entrant{a, b}, [][2]int{{0, 1}}, cfg)
	if err != nil {
		return nil, err
	}
	return res.Matches[0], nil
}

// RunRoundRobin plays every entrant against every other one.
func RunRoundRobin(ctx context.Context, entrants []Entrant, cfg Config) (*Result, error) {
	if len(entrants) < 2 {
		return nil, ErrTooFewEntrants
	}
	return run(ctx, entrants, Pairings(len(entrants)), cfg)
}

func validate(entrants []Entrant) error {
	seen := make(map[string]bool, len(entrants))
	for _, e := range entrants {
		if e.New == nil {
			return fmt.Errorf("entrant %q has no factory", e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

func run(ctx context.Context, entrants []Entrant, pairs [][2]int, cfg Config) (*Result, error) {
	if err := validate(entrants); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("tournament id: %w", err)
	}
	log := cfg.Logger.WithField("tournament", id.String())
	log.WithFields(logrus.Fields{
		"bots":    len(entrants),
		"matches": len(pairs),
		"games":   cfg.GamesPerMatch,
		"workers": cfg.Workers,
		"seed":    cfg.Seed,
	}).Info("tournament starting")
	started := time.Now()

	hands := make([][]HandResult, len(pairs))
	for p := range hands {
		hands[p] = make([]HandResult, cfg.GamesPerMatch)
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(cfg.Workers)
	for p, pair := range pairs {
		for g := 0; g < cfg.GamesPerMatch; g++ {
			grp.Go(func() error {
				hr, err := playHand(gctx, entrants[pair[0]], entrants[pair[1]], p, g, cfg, log)
				if err != nil {
					return err
				}
				hands[p][g] = hr
				if cfg.OnHand != nil {
					cfg.OnHand(hr)
				}
				return nil
			})
		}
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	res := aggregate(entrants, pairs, hands)
	res.ID = id
	res.Seed = cfg.Seed
	for _, m := range res.Matches {
		log.WithFields(logrus.Fields{
			"bot0":   m.Bot0,
			"bot1":   m.Bot1,
			"wins0":  m.Wins[0],
			"wins1":  m.Wins[1],
			"draws":  m.Draws,
			"errors": len(m.Errors),
		}).Info("match finished")
	}
	log.WithField("elapsed", time.Since(started).Round(time.Millisecond).String()).Info("tournament finished")
	return res, nil
}

// playHand plays game g of pairing p. Only a done ctx is returned as an
// error; anything the bots do wrong ends up in the HandResult.
func playHand(ctx context.Context, a, b Entrant, p, g int, cfg Config, log logrus.FieldLogger) (hr HandResult, err error) {
	bot0Seat, dealer := Seating(g)
	seed := HandSeed(cfg.Seed, p, g)
	hr = HandResult{Pairing: p, Game: g, Seed: seed, Dealer: dealer, Bot0Seat: bot0Seat}

	var seats [engine.NumPlayers]game.Player
	seats[bot0Seat], hr.Err = build(a, botSeed(seed, bot0Seat))
	if hr.Err == nil {
		seats[1-bot0Seat], hr.Err = build(b, botSeed(seed, 1-bot0Seat))
	}
	if hr.Err != nil {
		return hr, nil
	}

	h, err := game.NewHand(seats, seed, dealer, game.Options{
		Rules:           cfg.Rules,
		DecisionTimeout: cfg.DecisionTimeout,
		Logger:          log.WithFields(logrus.Fields{"pairing": p, "game": g}),
	})
	if err != nil {
		hr.Err = err
		return hr, nil
	}
	hr.HandID = h.ID
	hr.Result, err = h.Play(ctx)
	if err != nil {
		return hr, err
	}
	return hr, nil
}

// build runs a factory, turning a panic or nil player into an error.
func build(e Entrant, seed uint64) (p game.Player, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build %s: panic: %v", e.Name, r)
		}
	}()
	p = e.New(seed)
	if p == nil {
		return nil, fmt.Errorf("build %s: factory returned nil", e.Name)
	}
	return p, nil
}

// aggregate folds hands into match results, per-bot stats and Elo ratings in
// pairing and game order.
func aggregate(entrants []Entrant, pairs [][2]int, hands [][]HandResult) *Result {
	stats := make([]*BotStats, len(entrants))
	for i, e := range entrants {
		stats[i] = newBotStats(e.Name)
	}
	elo := NewElo(DefaultEloStart, DefaultEloK)
	matches := make([]*MatchResult, len(pairs))

	for p, pair := range pairs {
		a, b := entrants[pair[0]].Name, entrants[pair[1]].Name
		m := newMatchResult(a, b)
		for _, hr := range hands[p] {
			if hr.Err != nil {
				m.RecordError(fmt.Sprintf("game %d: %v", hr.Game, hr.Err))
				continue
			}
			m.RecordHand(hr.Game, hr.Result, hr.Bot0Seat)

			score := 0.5
			if !hr.Result.IsDraw() {
				score = 0
				if uint8(hr.Result.Winner) == hr.Bot0Seat {
					score = 1
				}
			}
			elo.UpdateHand(a, b, score, hr.Result.Points)
		}
		matches[p] = m
		stats[pair[0]].recordMatch(m, 0)
		stats[pair[1]].recordMatch(m, 1)
	}

	Rank(stats)
	return &Result{Rankings: stats, Matches: matches, Hands: hands, Elo: elo}
}
