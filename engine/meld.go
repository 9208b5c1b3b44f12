package engine

import "strings"

// MeldKind distinguishes sets from runs.
type MeldKind uint8

const (
	MeldSet MeldKind = iota // 3-4 cards of one rank
	MeldRun                 // 3+ consecutive ranks of one suit
)

func (k MeldKind) String() string {
	if k == MeldSet {
		return "set"
	}
	return "run"
}

// Meld is a set or a run. Cards are kept sorted by (rank, suit).
type Meld struct {
	Kind  MeldKind
	Cards []Card
}

// Set returns the meld's cards as a CardSet.
func (m Meld) Set() CardSet { return SetOf(m.Cards...) }

// Clone returns a copy that shares no memory with m.
func (m Meld) Clone() Meld {
	return Meld{Kind: m.Kind, Cards: append([]Card(nil), m.Cards...)}
}

func (m Meld) String() string {
	parts := make([]string, len(m.Cards))
	for i, c := range m.Cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// IsValidSet reports whether cards are 3 or 4 cards of one rank in distinct suits.
func IsValidSet(cards []Card) bool {
	if len(cards) != 3 && len(cards) != 4 {
		return false
	}
	var suits uint8
	for _, c := range cards {
		if !c.Valid() || c.Rank() != cards[0].Rank() {
			return false
		}
		bit := uint8(1) << c.Suit()
		if suits&bit != 0 {
			return false
		}
		suits |= bit
	}
	return true
}

// IsValidRun reports whether cards are 3 or more consecutive ranks of one suit.
// Order of the input does not matter; aces are low and runs do not wrap.
func IsValidRun(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}
	var ranks uint16
	lo, hi := uint8(RankKing), uint8(RankAce)
	for _, c := range cards {
		if !c.Valid() || c.Suit() != cards[0].Suit() {
			return false
		}
		bit := uint16(1) << c.Rank()
		if ranks&bit != 0 {
			return false
		}
		ranks |= bit
		lo = min(lo, c.Rank())
		hi = max(hi, c.Rank())
	}
	return int(hi-lo)+1 == len(cards)
}

// IsValidMeld reports whether cards form a set or a run.
func IsValidMeld(cards []Card) bool { return IsValidSet(cards) || IsValidRun(cards) }

// CandidateMelds lists every meld that can be formed from hand: each 3-card
// subset and the 4-card set of every rank, and every window of 3 or more
// consecutive cards within a suit. Candidates may overlap.
func CandidateMelds(hand []Card) []Meld {
	held := SetOf(hand...)
	var out []Meld

	for rank := uint8(0); rank < NumRanks; rank++ {
		var same []Card
		for suit := uint8(0); suit < NumSuits; suit++ {
			if c := NewCard(suit, rank); held.Has(c) {
				same = append(same, c)
			}
		}
		if len(same) < 3 {
			continue
		}
		for i := 0; i < len(same); i++ {
			for j := i + 1; j < len(same); j++ {
				for k := j + 1; k < len(same); k++ {
					out = append(out, Meld{Kind: MeldSet, Cards: []Card{same[i], same[j], same[k]}})
				}
			}
		}
		if len(same) == 4 {
			out = append(out, Meld{Kind: MeldSet, Cards: same})
		}
	}

	for suit := uint8(0); suit < NumSuits; suit++ {
		for start := uint8(0); start+2 < NumRanks; start++ {
			if !held.Has(NewCard(suit, start)) {
				continue
			}
			end := start
			for end+1 < NumRanks && held.Has(NewCard(suit, end+1)) {
				end++
				if end-start >= 2 {
					run := make([]Card, 0, end-start+1)
					for r := start; r <= end; r++ {
						run = append(run, NewCard(suit, r))
					}
					out = append(out, Meld{Kind: MeldRun, Cards: run})
				}
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Optimal partition search
// ---------------------------------------------------------------------------

type searchEntry struct {
	deadwood int
	choice   int // candidate index covering the lowest card, -1 = left unmelded
}

// meldSearch finds the disjoint selection of candidates that minimizes the
// deadwood of the uncovered cards. Memoized on the remaining CardSet.
type meldSearch struct {
	candidates []CardSet
	byCard     [DeckSize][]int
	memo       map[CardSet]searchEntry
}

func newMeldSearch(candidates []CardSet) *meldSearch {
	s := &meldSearch{candidates: candidates, memo: make(map[CardSet]searchEntry)}
	for i, c := range candidates {
		for _, card := range c.Cards() {
			s.byCard[card.Index()] = append(s.byCard[card.Index()], i)
		}
	}
	return s
}

// solve returns the minimum deadwood of rem. The lowest card of rem is either
// unmelded or covered by exactly one candidate containing it, which makes the
// recursion exhaustive without visiting the same selection in two orders.
func (s *meldSearch) solve(rem CardSet) int {
	if rem == 0 {
		return 0
	}
	if e, ok := s.memo[rem]; ok {
		return e.deadwood
	}
	low := rem.Lowest()
	best := searchEntry{deadwood: low.Value() + s.solve(rem.Remove(low)), choice: -1}
	for _, i := range s.byCard[low.Index()] {
		c := s.candidates[i]
		if c&rem != c {
			continue
		}
		if d := s.solve(rem &^ c); d < best.deadwood {
			best = searchEntry{deadwood: d, choice: i}
		}
	}
	s.memo[rem] = best
	return best.deadwood
}

// chosen replays the memo from rem and returns the selected candidate indices.
func (s *meldSearch) chosen(rem CardSet) []int {
	var out []int
	for rem != 0 {
		e, ok := s.memo[rem]
		if !ok {
			s.solve(rem)
			e = s.memo[rem]
		}
		if e.choice < 0 {
			rem = rem.Remove(rem.Lowest())
			continue
		}
		out = append(out, e.choice)
		rem &^= s.candidates[e.choice]
	}
	return out
}

// partition returns the minimum deadwood of hand over disjoint selections of
// candidates, and the indices of one minimizing selection.
func partition(hand CardSet, candidates []CardSet) (int, []int) {
	s := newMeldSearch(candidates)
	d := s.solve(hand)
	return d, s.chosen(hand)
}

// BestMelds returns a deadwood-minimizing arrangement of hand into disjoint
// melds plus the leftover cards, in their original hand order. When several
// arrangements tie, which one is returned is unspecified.
func BestMelds(hand []Card) ([]Meld, []Card) {
	if len(hand) == 0 {
		return nil, nil
	}
	held := SetOf(hand...)
	candidates := CandidateMelds(hand)
	masks := make([]CardSet, len(candidates))
	for i, m := range candidates {
		masks[i] = m.Set()
	}
	_, picks := partition(held, masks)

	melds := make([]Meld, 0, len(picks))
	var melded CardSet
	for _, i := range picks {
		melds = append(melds, candidates[i])
		melded |= masks[i]
	}
	unmelded := make([]Card, 0, len(hand))
	for _, c := range hand {
		if !melded.Has(c) {
			unmelded = append(unmelded, c)
		}
	}
	return melds, unmelded
}

// Deadwood returns the minimum deadwood of hand over all meld arrangements.
func Deadwood(hand []Card) int {
	if len(hand) == 0 {
		return 0
	}
	d, _ := partition(SetOf(hand...), candidateMasks(hand))
	return d
}

// Unmelded returns the cards left outside melds by BestMelds.
func Unmelded(hand []Card) []Card {
	_, rest := BestMelds(hand)
	return rest
}

// IsGin reports whether every card of hand can be enclosed in melds.
func IsGin(hand []Card) bool { return Deadwood(hand) == 0 }

// CanKnock reports whether the deadwood of hand is within limit.
func CanKnock(hand []Card, limit int) bool { return Deadwood(hand) <= limit }

func candidateMasks(hand []Card) []CardSet {
	candidates := CandidateMelds(hand)
	masks := make([]CardSet, len(candidates))
	for i, m := range candidates {
		masks[i] = m.Set()
	}
	return masks
}
