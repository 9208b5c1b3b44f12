// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/sirupsen/logrus"
)

// DefaultDecisionTimeout bounds a single decision when Options leaves it unset.
const DefaultDecisionTimeout = 2 * time.Second

// ErrHandPlayed is returned when Play is called on a hand that already ran.
var ErrHandPlayed = errors.New("hand has already been played")

// Player is a Gin Rummy decision-maker. Each call receives a fresh copy of
// the seat's view and must return before ctx is done.
type Player interface {
	Name() string
	DrawDecision(ctx context.Context, view engine.PlayerView) (engine.DrawSource, error)
	DiscardDecision(ctx context.Context, view engine.PlayerView) (engine.Card, error)
	KnockDecision(ctx context.Context, view engine.PlayerView) (bool, error)
}

// Observer is implemented by players that want lifecycle notifications.
// OnGameStart runs once after the deal; OnTurnEnd runs for both seats after
// every completed turn, including the one that ends the hand.
type Observer interface {
	OnGameStart(seat uint8, view engine.PlayerView)
	OnTurnEnd(view engine.PlayerView)
}

// OnHandEndFunc is called once when a hand reaches a terminal state.
type OnHandEndFunc func(handID uuid.UUID, result engine.GameResult)

// MoveEvent describes one applied move. It is built from the full table, so
// Card is the drawn card even for deck draws; do not hand it to players.
type MoveEvent struct {
	HandID   uuid.UUID
	Turn     uint16
	Seat     uint8
	Player   string
	Decision string
	Source   engine.DrawSource // draws
	Card     engine.Card       // card drawn or discarded, EmptyCard for knock decisions
	Knock    bool              // knock decisions
	Deadwood int               // actor's deadwood after the move
}

// Options configure a Hand. The zero value uses the default rules, a
// DefaultDecisionTimeout per decision and the standard logrus logger.
type Options struct {
	Rules           engine.HouseRules
	DecisionTimeout time.Duration // <0 disables the timeout
	Logger          logrus.FieldLogger
	OnHandEnd       OnHandEndFunc
	OnMove          func(MoveEvent)
}

// Hand runs one hand of Gin Rummy between two players.
type Hand struct {
	ID      uuid.UUID
	Players [engine.NumPlayers]Player
	Seed    uint64

	DecisionTimeout time.Duration
	OnHandEnd       OnHandEndFunc
	OnMove          func(MoveEvent)

	mu     sync.Mutex
	engine engine.GameState
	log    logrus.FieldLogger
	played bool
}

// NewHand shuffles with seed and deals with dealer. players[0] sits in seat 0.
func NewHand(players [engine.NumPlayers]Player, seed uint64, dealer uint8, opts Options) (*Hand, error) {
	for seat, p := range players {
		if p == nil {
			return nil, fmt.Errorf("new hand: player in seat %d is nil", seat)
		}
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("new hand: generate id: %w", err)
	}
	rules := opts.Rules
	if rules == (engine.HouseRules{}) {
		rules = engine.DefaultHouseRules()
	}
	g, err := engine.NewDealtGame(seed, rules, dealer)
	if err != nil {
		return nil, fmt.Errorf("new hand: %w", err)
	}

	timeout := opts.DecisionTimeout
	if timeout == 0 {
		timeout = DefaultDecisionTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hand{
		ID:              id,
		Players:         players,
		Seed:            seed,
		DecisionTimeout: timeout,
		OnHandEnd:       opts.OnHandEnd,
		OnMove:          opts.OnMove,
		engine:          g,
		log:             logger.WithField("hand", id.String()),
	}, nil
}

// PlayHand builds a hand and plays it to the end.
func PlayHand(ctx context.Context, players [engine.NumPlayers]Player, seed uint64, dealer uint8, opts Options) (engine.GameResult, error) {
	h, err := NewHand(players, seed, dealer, opts)
	if err != nil {
		return engine.GameResult{}, err
	}
	return h.Play(ctx)
}

// State returns a copy of the current game state.
func (h *Hand) State() engine.GameState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine
}

// Result returns the hand's result, meaningful once the hand has ended.
func (h *Hand) Result() engine.GameResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.Result
}

// Play drives the hand until it ends. A decision failure or illegal move
// forfeits the offending seat and still returns a nil error; only a done ctx
// stops the hand early, leaving it unfinished.
func (h *Hand) Play(ctx context.Context) (engine.GameResult, error) {
	h.mu.Lock()
	if h.played {
		h.mu.Unlock()
		return h.Result(), ErrHandPlayed
	}
	h.played = true
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{
		"seat0": h.Players[0].Name(),
		"seat1": h.Players[1].Name(),
		"seed":  h.Seed,
	}).Debug("hand dealt")

	if err := h.notifyStart(ctx); err != nil {
		return h.Result(), err
	}

	for !h.terminal() {
		if err := ctx.Err(); err != nil {
			h.log.WithError(err).Warn("hand stopped before the end")
			return h.Result(), err
		}
		turn := h.State().TurnNumber
		if err := h.step(ctx); err != nil {
			return h.Result(), err
		}
		st := h.State()
		if st.TurnNumber != turn || st.IsTerminal() {
			if err := h.notifyTurnEnd(ctx); err != nil {
				return h.Result(), err
			}
		}
	}

	res := h.Result()
	h.log.WithFields(logrus.Fields{
		"winner": res.Winner,
		"reason": res.Reason.String(),
		"points": res.Points,
		"turn":   h.State().TurnNumber,
	}).Debug("hand ended")
	if h.OnHandEnd != nil {
		h.OnHandEnd(h.ID, res)
	}
	return res, nil
}

func (h *Hand) terminal() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.IsTerminal()
}

// step asks the acting seat for one decision and applies it.
func (h *Hand) step(ctx context.Context) error {
	h.mu.Lock()
	seat := h.engine.CurrentPlayer
	kind := h.engine.DecisionCtx()
	turn := h.engine.TurnNumber
	view := h.engine.View(seat)
	h.mu.Unlock()

	p := h.Players[seat]
	var (
		apply func(g *engine.GameState) error
		what  string
		err   error
	)
	switch kind {
	case engine.CtxDraw:
		what = DecisionDraw
		var src engine.DrawSource
		src, err = Decide(ctx, h.DecisionTimeout, func(ctx context.Context) (engine.DrawSource, error) {
			return p.DrawDecision(ctx, view)
		})
		apply = func(g *engine.GameState) error { return g.Draw(seat, src) }
	case engine.CtxDiscard:
		what = DecisionDiscard
		var card engine.Card
		card, err = Decide(ctx, h.DecisionTimeout, func(ctx context.Context) (engine.Card, error) {
			return p.DiscardDecision(ctx, view)
		})
		apply = func(g *engine.GameState) error { return g.Discard(seat, card) }
	case engine.CtxKnock:
		what = DecisionKnock
		var knock bool
		knock, err = Decide(ctx, h.DecisionTimeout, func(ctx context.Context) (bool, error) {
			return p.KnockDecision(ctx, view)
		})
		apply = func(g *engine.GameState) error { return g.Knock(seat, knock) }
	default:
		return nil
	}

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.forfeit(seat, &DecisionError{Seat: seat, Player: p.Name(), Decision: what, Kind: classify(err), Err: err})
		return nil
	}

	h.mu.Lock()
	err = apply(&h.engine)
	last := h.engine.LastAction
	ev := MoveEvent{HandID: h.ID, Turn: turn, Seat: seat, Player: p.Name(), Decision: what, Card: last.Card}
	if err == nil && h.OnMove != nil {
		hand := h.engine.HandOf(seat)
		ev.Deadwood = engine.Deadwood(hand)
		switch what {
		case DecisionDraw:
			ev.Source = last.DrawnFrom
			ev.Card = hand[len(hand)-1]
		case DecisionKnock:
			ev.Knock = last.Kind == engine.ActionKnock
			ev.Card = engine.EmptyCard
		}
	}
	h.mu.Unlock()
	if err != nil {
		h.forfeit(seat, err)
		return nil
	}
	if h.OnMove != nil {
		h.OnMove(ev)
	}
	entry := h.seatLog(seat).WithField("action", what)
	if last.Card != engine.EmptyCard {
		entry = entry.WithField("card", last.Card.String())
	}
	if what == DecisionDraw {
		entry = entry.WithField("source", last.DrawnFrom.String())
	}
	entry.Debug("move applied")
	return nil
}

// notifyStart calls OnGameStart on every observing seat.
func (h *Hand) notifyStart(ctx context.Context) error {
	for seat := uint8(0); seat < engine.NumPlayers; seat++ {
		obs, ok := h.Players[seat].(Observer)
		if !ok || h.terminal() {
			continue
		}
		st := h.State()
		view := st.View(seat)
		if err := h.observe(ctx, seat, DecisionGameStart, func() { obs.OnGameStart(seat, view) }); err != nil {
			return err
		}
	}
	return nil
}

// notifyTurnEnd calls OnTurnEnd on every observing seat.
func (h *Hand) notifyTurnEnd(ctx context.Context) error {
	for seat := uint8(0); seat < engine.NumPlayers; seat++ {
		obs, ok := h.Players[seat].(Observer)
		if !ok {
			continue
		}
		st := h.State()
		view := st.View(seat)
		if err := h.observe(ctx, seat, DecisionTurnEnd, func() { obs.OnTurnEnd(view) }); err != nil {
			return err
		}
	}
	return nil
}

// observe runs a hook under the same timeout and crash containment as a
// decision. A failing hook forfeits the seat unless the hand already ended.
func (h *Hand) observe(ctx context.Context, seat uint8, what string, hook func()) error {
	_, err := Decide(ctx, h.DecisionTimeout, func(context.Context) (struct{}, error) {
		hook()
		return struct{}{}, nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	derr := &DecisionError{Seat: seat, Player: h.Players[seat].Name(), Decision: what, Kind: classify(err), Err: err}
	if h.terminal() {
		h.seatLog(seat).WithError(derr).Warn("hook failed after the hand ended")
		return nil
	}
	h.forfeit(seat, derr)
	return nil
}

// forfeit ends the hand against seat.
func (h *Hand) forfeit(seat uint8, cause error) {
	h.mu.Lock()
	err := h.engine.Forfeit(seat, cause)
	h.mu.Unlock()
	entry := h.seatLog(seat).WithError(cause)
	if err != nil {
		entry.WithField("forfeit_error", err.Error()).Error("could not record forfeit")
		return
	}
	entry.Warn("player forfeits the hand")
}

func (h *Hand) seatLog(seat uint8) logrus.FieldLogger {
	return h.log.WithFields(logrus.Fields{
		"seat":   seat,
		"player": h.Players[seat].Name(),
		"turn":   h.State().TurnNumber,
	})
}
