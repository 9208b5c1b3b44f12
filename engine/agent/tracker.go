package agent

import engine "github.com/jason-s-yu/ginrummy/engine"

// Tracker accumulates what one player has observed during a hand: every card
// seen, the cards the opponent took from the discard pile and the ones they
// threw. It is a flat value type, so it can be copied with =.
//
// Update must be called once after every completed turn (both players'),
// because opponent picks are inferred from how the discard pile changed.
type Tracker struct {
	Seat uint8

	Seen      engine.CardSet // own cards ever held plus every discard seen
	OppPicked engine.CardSet // taken by the opponent from the discard pile
	OppHeld   engine.CardSet // picked cards the opponent has not thrown back

	picks     [engine.DeckSize]engine.Card
	picksLen  uint8
	throws    [engine.DeckSize]engine.Card
	throwsLen uint8

	Stock StockEstimate
	Phase GamePhase
	Turn  uint16

	prevPileLen int
	prevTop     engine.Card
}

// NewTracker returns an empty tracker for seat.
func NewTracker(seat uint8) Tracker {
	return Tracker{Seat: seat, prevTop: engine.EmptyCard}
}

// Initialize resets the tracker from the first view of a hand.
func (t *Tracker) Initialize(v engine.PlayerView) {
	*t = NewTracker(v.Seat)
	t.Seen = engine.SetOf(v.Hand...) | engine.SetOf(v.DiscardPile...)
	t.refresh(v)
}

// Update folds a post-turn view into the tracker.
func (t *Tracker) Update(v engine.PlayerView) {
	t.Seen |= engine.SetOf(v.Hand...) | engine.SetOf(v.DiscardPile...)

	act := v.LastAction
	turnEnded := act.Kind == engine.ActionDiscard || act.Kind == engine.ActionPass || act.Kind == engine.ActionKnock
	if turnEnded && act.ActingPlayer != t.Seat {
		n := len(v.DiscardPile)
		// A pile that did not grow means the opponent drew the old top.
		if n <= t.prevPileLen && t.prevTop.Valid() {
			t.recordPick(t.prevTop)
		}
		if n > 0 {
			t.recordThrow(v.DiscardPile[n-1])
		}
	}
	t.refresh(v)
}

func (t *Tracker) refresh(v engine.PlayerView) {
	t.prevPileLen = len(v.DiscardPile)
	t.prevTop = v.DiscardTop
	t.Stock = StockEstimateFromSize(v.DeckSize)
	t.Phase = GamePhaseFromView(v)
	t.Turn = v.TurnNumber
}

func (t *Tracker) recordPick(c engine.Card) {
	t.picks[t.picksLen] = c
	t.picksLen++
	t.OppPicked = t.OppPicked.Add(c)
	t.OppHeld = t.OppHeld.Add(c)
}

func (t *Tracker) recordThrow(c engine.Card) {
	t.throws[t.throwsLen] = c
	t.throwsLen++
	t.OppHeld = t.OppHeld.Remove(c)
	t.Seen = t.Seen.Add(c)
}

// OpponentPicks returns the cards the opponent took from the discard pile, in order.
func (t *Tracker) OpponentPicks() []engine.Card {
	return append([]engine.Card(nil), t.picks[:t.picksLen]...)
}

// OpponentDiscards returns the cards the opponent threw, in order.
func (t *Tracker) OpponentDiscards() []engine.Card {
	return append([]engine.Card(nil), t.throws[:t.throwsLen]...)
}

// Unseen returns the cards this player has never seen. The opponent's hand
// and the deck are both drawn from this set.
func (t *Tracker) Unseen() engine.CardSet { return engine.FullDeckSet &^ t.Seen }

// Clone returns a copy of the tracker. Tracker is a flat value, so this is
// equivalent to *t.
func (t *Tracker) Clone() Tracker { return *t }
