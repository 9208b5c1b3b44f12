// Package agent provides hand analysis and card tracking for Gin Rummy
// decision-makers. Nothing here changes game state; every helper works on
// plain card slices and CardSets so it can be fed from a PlayerView.
package agent

import (
	"errors"
	"fmt"

	engine "github.com/jason-s-yu/ginrummy/engine"
)

// ErrCardNotInHand is returned when a helper is asked about a card the hand
// does not hold.
var ErrCardNotInHand = errors.New("card is not in the hand")

// ---------------------------------------------------------------------------
// Hand analysis
// ---------------------------------------------------------------------------

// Melds returns every possible meld in hand, overlapping ones included.
func Melds(hand []engine.Card) []engine.Meld { return engine.CandidateMelds(hand) }

// BestMelds returns the deadwood-minimizing arrangement and the leftovers.
func BestMelds(hand []engine.Card) ([]engine.Meld, []engine.Card) { return engine.BestMelds(hand) }

// UnmeldedCards returns the cards that count as deadwood under BestMelds.
func UnmeldedCards(hand []engine.Card) []engine.Card { return engine.Unmelded(hand) }

// without returns hand minus the first occurrence of c.
func without(hand []engine.Card, c engine.Card) ([]engine.Card, error) {
	for i, h := range hand {
		if h == c {
			out := make([]engine.Card, 0, len(hand)-1)
			out = append(out, hand[:i]...)
			return append(out, hand[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", c, ErrCardNotInHand)
}

// ---------------------------------------------------------------------------
// Strategy helpers
// ---------------------------------------------------------------------------

// DeadwoodAfterDiscard returns the deadwood of hand once card is thrown.
func DeadwoodAfterDiscard(hand []engine.Card, card engine.Card) (int, error) {
	rest, err := without(hand, card)
	if err != nil {
		return 0, err
	}
	return engine.Deadwood(rest), nil
}

// DeadwoodAfterDraw returns the re-optimized deadwood of hand plus card.
func DeadwoodAfterDraw(hand []engine.Card, card engine.Card) int {
	return engine.Deadwood(append(append(make([]engine.Card, 0, len(hand)+1), hand...), card))
}

// BestDiscard returns the card whose discard leaves the lowest deadwood.
// exclude (usually the card just taken from the discard pile) is never
// chosen; pass engine.EmptyCard for no exclusion. Ties keep the earlier card.
// Returns EmptyCard when no card is eligible.
func BestDiscard(hand []engine.Card, exclude engine.Card) engine.Card {
	best, bestDW := engine.EmptyCard, 0
	for _, c := range hand {
		if c == exclude {
			continue
		}
		dw, _ := DeadwoodAfterDiscard(hand, c)
		if best == engine.EmptyCard || dw < bestDW {
			best, bestDW = c, dw
		}
	}
	return best
}

// EvaluateDiscardDraw returns the best deadwood reachable by taking card
// from the discard pile and then throwing one of the original cards.
func EvaluateDiscardDraw(hand []engine.Card, card engine.Card) int {
	if len(hand) == 0 {
		return 0
	}
	grown := append(append(make([]engine.Card, 0, len(hand)+1), hand...), card)
	best := -1
	for _, c := range hand {
		dw, _ := DeadwoodAfterDiscard(grown, c)
		if best < 0 || dw < best {
			best = dw
		}
	}
	return best
}

// CardContribution returns how much card adds to the hand's deadwood:
// deadwood with it minus deadwood without it.
func CardContribution(hand []engine.Card, card engine.Card) (int, error) {
	after, err := DeadwoodAfterDiscard(hand, card)
	if err != nil {
		return 0, err
	}
	return engine.Deadwood(hand) - after, nil
}

// ---------------------------------------------------------------------------
// Card counting
// ---------------------------------------------------------------------------

// IsProvablySafeDiscard reports whether the opponent cannot use card in any
// meld because the cards it would need are out of their reach.
//
// seen is everything known (own hand plus discards). When myHand is non-zero
// its cards, other than card itself, are not treated as blocking: the
// opponent may still get them later.
//
// Set-safe: at least two of the other three cards of the rank are blocked.
// Run-safe: every 3-card run through card needs a blocked card.
func IsProvablySafeDiscard(card engine.Card, seen, myHand engine.CardSet) bool {
	blocked := seen
	if myHand != 0 {
		blocked = (seen &^ myHand).Add(card)
	}

	others := 0
	for suit := uint8(0); suit < engine.NumSuits; suit++ {
		c := engine.NewCard(suit, card.Rank())
		if c != card && blocked.Has(c) {
			others++
		}
	}
	if others < 2 {
		return false
	}

	r := int(card.Rank())
	for start := r - 2; start <= r; start++ {
		if start < 0 || start+2 >= engine.NumRanks {
			continue
		}
		reachable := true
		for v := start; v <= start+2; v++ {
			if v != r && blocked.Has(engine.NewCard(card.Suit(), uint8(v))) {
				reachable = false
				break
			}
		}
		if reachable {
			return false
		}
	}
	return true
}

// CountMeldOuts counts unseen cards that would complete a meld with card,
// given the rest of hand.
func CountMeldOuts(card engine.Card, hand []engine.Card, seen engine.CardSet) int {
	unseen := engine.FullDeckSet &^ seen
	var outs engine.CardSet

	sameRank := 0
	var suitRanks uint16
	for _, c := range hand {
		if c == card {
			continue
		}
		if c.Rank() == card.Rank() {
			sameRank++
		}
		if c.Suit() == card.Suit() {
			suitRanks |= 1 << c.Rank()
		}
	}
	if sameRank >= 1 {
		for suit := uint8(0); suit < engine.NumSuits; suit++ {
			if c := engine.NewCard(suit, card.Rank()); unseen.Has(c) {
				outs = outs.Add(c)
			}
		}
	}

	r := int(card.Rank())
	has := func(v int) bool { return v >= 0 && v < engine.NumRanks && suitRanks&(1<<v) != 0 }
	addRank := func(v int) {
		if v < 0 || v >= engine.NumRanks {
			return
		}
		if c := engine.NewCard(card.Suit(), uint8(v)); unseen.Has(c) {
			outs = outs.Add(c)
		}
	}
	if has(r - 1) {
		addRank(r - 2)
		addRank(r + 1)
	}
	if has(r + 1) {
		addRank(r - 1)
		addRank(r + 2)
	}
	if has(r-2) && !has(r-1) {
		addRank(r - 1)
	}
	if has(r+2) && !has(r+1) {
		addRank(r + 1)
	}
	return outs.Len()
}

// ScoreDiscardSafety rates how safe card is to throw, higher is safer.
// Cards near what the opponent has been discarding are rewarded, as are
// ranks whose other cards are already out of play.
func ScoreDiscardSafety(card engine.Card, opponentDiscards []engine.Card, seen engine.CardSet) float64 {
	safety := 0.0
	for _, d := range opponentDiscards {
		if d.Rank() == card.Rank() {
			safety += SafetySameRankDiscarded
		}
		if d.Suit() == card.Suit() && absDiff(d.Rank(), card.Rank()) <= 2 {
			safety += SafetyNearSuitDiscarded
		}
	}
	for suit := uint8(0); suit < engine.NumSuits; suit++ {
		if c := engine.NewCard(suit, card.Rank()); c != card && seen.Has(c) {
			safety += SafetySeenSameRank
		}
	}
	return safety
}

// CountNearMelds counts pairs of equal rank (exactly two held) and adjacent
// same-suit pairs, each one card away from a meld.
func CountNearMelds(hand []engine.Card) int {
	held := engine.SetOf(hand...)
	var rankCount [engine.NumRanks]int
	for _, c := range held.Cards() {
		rankCount[c.Rank()]++
	}
	near := 0
	for _, n := range rankCount {
		if n == 2 {
			near++
		}
	}
	for _, c := range held.Cards() {
		if c.Rank() < engine.RankKing && held.Has(engine.NewCard(c.Suit(), c.Rank()+1)) {
			near++
		}
	}
	return near
}

// HandStrength scores hand from 0 (weak) to 1 (gin). Deadwood sets the base
// (100 points of deadwood scores 0), each meld adds 0.1 and each near-meld
// adds 0.05.
func HandStrength(hand []engine.Card) float64 {
	if len(hand) == 0 {
		return 0
	}
	melds, rest := engine.BestMelds(hand)
	dw := engine.DeadwoodValue(rest)
	if dw == 0 {
		return 1
	}
	s := max(0, 1-float64(dw)/100) + 0.1*float64(len(melds)) + 0.05*float64(CountNearMelds(hand))
	return min(1, max(0, s))
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
