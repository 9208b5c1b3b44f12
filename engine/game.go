// Package engine implements the two-player Gin Rummy rules.
//
// It provides the card and deck model, the optimal meld search, knock
// scoring, and the per-hand state machine. The package is pure: it holds no
// goroutines, performs no I/O and never calls into decision-makers, so a
// GameState can be copied, snapshotted and driven by any caller.
package engine

import "fmt"

const (
	NumPlayers  = 2
	MaxHandSize = 11 // 10 during play, 11 between draw and discard
)

// PlayerState holds one player's hand.
type PlayerState struct {
	Hand    [MaxHandSize]Card
	HandLen uint8
}

// Cards returns a copy of the hand.
func (p *PlayerState) Cards() []Card {
	out := make([]Card, p.HandLen)
	copy(out, p.Hand[:p.HandLen])
	return out
}

func (p *PlayerState) indexOf(c Card) int {
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i] == c {
			return int(i)
		}
	}
	return -1
}

func (p *PlayerState) add(c Card) {
	p.Hand[p.HandLen] = c
	p.HandLen++
}

// removeAt drops the card at idx, keeping the order of the others.
func (p *PlayerState) removeAt(idx int) Card {
	c := p.Hand[idx]
	copy(p.Hand[idx:p.HandLen-1], p.Hand[idx+1:p.HandLen])
	p.HandLen--
	p.Hand[p.HandLen] = EmptyCard
	return c
}

// GameState holds the complete, self-contained state of one hand. It is a
// flat value type (no pointers in the live state) so copies never alias.
type GameState struct {
	Deck             Deck
	DiscardPile      [DeckSize]Card // top of the pile is DiscardPile[DiscardLen-1]
	DiscardLen       uint8
	Players          [NumPlayers]PlayerState
	CurrentPlayer    uint8
	Dealer           uint8
	Phase            Phase
	DrawnFromDiscard Card // card taken from the discard pile this turn, EmptyCard otherwise
	TurnNumber       uint16
	LastAction       LastActionInfo
	Seed             uint64
	Rules            HouseRules
	Result           GameResult
	started          bool
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a GameState whose deck is shuffled from seed.
// Cards are not dealt until Deal is called.
func NewGame(seed uint64, rules HouseRules) GameState {
	var g GameState
	g.Seed = seed
	g.Rules = rules.normalized()
	g.Deck = NewShuffledDeck(seed)
	g.DrawnFromDiscard = EmptyCard
	g.Result = GameResult{Winner: NoPlayer, Knocker: NoPlayer, Offender: NoPlayer}
	return g
}

// Deal gives HandSize cards to the non-dealer, then to the dealer, and flips
// the next card to start the discard pile. The non-dealer acts first.
func (g *GameState) Deal(dealer uint8) error {
	if g.started {
		return fmt.Errorf("deal: hand already dealt")
	}
	if dealer > 1 {
		return fmt.Errorf("deal: invalid dealer %d", dealer)
	}
	g.Dealer = dealer
	nonDealer := g.OpponentOf(dealer)
	for _, p := range [2]uint8{nonDealer, dealer} {
		cards, err := g.Deck.Deal(int(g.Rules.HandSize))
		if err != nil {
			return fmt.Errorf("deal: %w", err)
		}
		for _, c := range cards {
			g.Players[p].add(c)
		}
	}
	up, err := g.Deck.DrawOne()
	if err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	g.DiscardPile[0] = up
	g.DiscardLen = 1

	g.CurrentPlayer = nonDealer
	g.started = true
	g.beginDrawPhase()
	return nil
}

// NewDealtGame is NewGame followed by Deal.
func NewDealtGame(seed uint64, rules HouseRules, dealer uint8) (GameState, error) {
	g := NewGame(seed, rules)
	if err := g.Deal(dealer); err != nil {
		return g, err
	}
	return g, nil
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsTerminal returns true when the hand is over.
func (g *GameState) IsTerminal() bool { return g.Phase == PhaseEnded }

// Started reports whether Deal has been called.
func (g *GameState) Started() bool { return g.started }

// OpponentOf returns the other seat.
func (g *GameState) OpponentOf(player uint8) uint8 { return 1 - player }

// HandOf returns a copy of the player's hand.
func (g *GameState) HandOf(player uint8) []Card { return g.Players[player].Cards() }

// HandLen returns the number of cards in the given player's hand.
func (g *GameState) HandLen(player uint8) uint8 { return g.Players[player].HandLen }

// DiscardTop returns the top card of the discard pile, or EmptyCard if empty.
func (g *GameState) DiscardTop() Card {
	if g.DiscardLen == 0 {
		return EmptyCard
	}
	return g.DiscardPile[g.DiscardLen-1]
}

// Discards returns a copy of the discard pile, oldest first.
func (g *GameState) Discards() []Card {
	out := make([]Card, g.DiscardLen)
	copy(out, g.DiscardPile[:g.DiscardLen])
	return out
}

// DeckRemaining returns the number of undrawn cards.
func (g *GameState) DeckRemaining() int { return g.Deck.Remaining() }

// CurrentDeadwood returns the player's best deadwood for their current hand.
func (g *GameState) CurrentDeadwood(player uint8) int { return Deadwood(g.HandOf(player)) }

// CheckInvariants verifies that deck, discard pile and both hands partition
// the 52-card universe.
func (g *GameState) CheckInvariants() error {
	var seen CardSet
	count := 0
	add := func(where string, cards []Card) error {
		for _, c := range cards {
			if !c.Valid() {
				return fmt.Errorf("invalid card %#x in %s", uint8(c), where)
			}
			if seen.Has(c) {
				return fmt.Errorf("duplicate card %s in %s", c, where)
			}
			seen = seen.Add(c)
			count++
		}
		return nil
	}
	if err := add("deck", g.Deck.Cards[:g.Deck.Len]); err != nil {
		return err
	}
	if err := add("discard pile", g.DiscardPile[:g.DiscardLen]); err != nil {
		return err
	}
	for p := uint8(0); p < NumPlayers; p++ {
		if err := add(fmt.Sprintf("hand %d", p), g.Players[p].Hand[:g.Players[p].HandLen]); err != nil {
			return err
		}
	}
	if count != DeckSize || seen != FullDeckSet {
		return fmt.Errorf("card universe has %d cards, want %d", count, DeckSize)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a value-copy of GameState for undo support. The Result's
// Layoffs slice is shared, which is safe because results are never mutated.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }
