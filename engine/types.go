package engine

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Suit constants, packed into upper 4 bits of Card.
const (
	SuitClubs    uint8 = 0
	SuitDiamonds uint8 = 1
	SuitHearts   uint8 = 2
	SuitSpades   uint8 = 3
)

// Rank constants, packed into lower 4 bits of Card. Aces are low only.
const (
	RankAce   uint8 = 0
	RankTwo   uint8 = 1
	RankThree uint8 = 2
	RankFour  uint8 = 3
	RankFive  uint8 = 4
	RankSix   uint8 = 5
	RankSeven uint8 = 6
	RankEight uint8 = 7
	RankNine  uint8 = 8
	RankTen   uint8 = 9
	RankJack  uint8 = 10
	RankQueen uint8 = 11
	RankKing  uint8 = 12
)

const (
	NumSuits = 4
	NumRanks = 13
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Valid reports whether c names one of the 52 cards.
func (c Card) Valid() bool {
	return c != EmptyCard && c.Suit() < NumSuits && c.Rank() < NumRanks
}

// Value returns the deadwood value of the card.
//   - Ace → 1
//   - Two–Ten → face value
//   - Jack, Queen, King → 10
func (c Card) Value() int {
	r := c.Rank()
	if r >= RankTen {
		return 10
	}
	return int(r) + 1
}

// Index returns the position of the card in the 52-card universe (suit*13 + rank).
func (c Card) Index() int { return int(c.Suit())*NumRanks + int(c.Rank()) }

// CardFromIndex is the inverse of Card.Index.
func CardFromIndex(i int) Card {
	return NewCard(uint8(i/NumRanks), uint8(i%NumRanks))
}

var rankNames = [NumRanks]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suitNames = [NumSuits]string{"C", "D", "H", "S"}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return rankNames[c.Rank()] + suitNames[c.Suit()]
}

// ParseCard parses strings such as "AC", "10h", "TH" or "Q♠".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for glyph, letter := range map[string]string{"♣": "C", "♦": "D", "♥": "H", "♠": "S"} {
		s = strings.ReplaceAll(s, glyph, letter)
	}
	if len(s) < 2 {
		return EmptyCard, fmt.Errorf("parse card %q: too short", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]
	if rankPart == "T" {
		rankPart = "10"
	}
	rank := -1
	for i, n := range rankNames {
		if n == rankPart {
			rank = i
			break
		}
	}
	suit := -1
	for i, n := range suitNames {
		if n == suitPart {
			suit = i
			break
		}
	}
	if rank < 0 || suit < 0 {
		return EmptyCard, fmt.Errorf("parse card %q: unknown rank or suit", s)
	}
	return NewCard(uint8(suit), uint8(rank)), nil
}

// MustParseCards parses a space separated card list and panics on error.
// Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// Less orders cards by (rank, suit).
func Less(a, b Card) bool {
	if a.Rank() != b.Rank() {
		return a.Rank() < b.Rank()
	}
	return a.Suit() < b.Suit()
}

// SortCards sorts cards in place by (rank, suit).
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return Less(cards[i], cards[j]) })
}

// DeadwoodValue sums Card.Value over cards.
func DeadwoodValue(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total
}

// ---------------------------------------------------------------------------
// CardSet
// ---------------------------------------------------------------------------

// CardSet is a bitmask over the 52-card universe; bit i is Card.Index() == i.
type CardSet uint64

// FullDeckSet contains all 52 cards.
const FullDeckSet CardSet = (1 << 52) - 1

// SetOf builds a CardSet from cards. Invalid cards are ignored.
func SetOf(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s = s.Add(c)
	}
	return s
}

func (s CardSet) Add(c Card) CardSet {
	if !c.Valid() {
		return s
	}
	return s | 1<<uint(c.Index())
}

func (s CardSet) Remove(c Card) CardSet {
	if !c.Valid() {
		return s
	}
	return s &^ (1 << uint(c.Index()))
}

func (s CardSet) Has(c Card) bool {
	return c.Valid() && s&(1<<uint(c.Index())) != 0
}

func (s CardSet) Len() int { return bits.OnesCount64(uint64(s)) }

// Lowest returns the card with the smallest index in s, or EmptyCard when s is empty.
func (s CardSet) Lowest() Card {
	if s == 0 {
		return EmptyCard
	}
	return CardFromIndex(bits.TrailingZeros64(uint64(s)))
}

// Cards returns the members of s in index order (suit, then rank).
func (s CardSet) Cards() []Card {
	out := make([]Card, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		out = append(out, CardFromIndex(bits.TrailingZeros64(rest)))
	}
	return out
}

// Value sums the deadwood value of the members of s.
func (s CardSet) Value() int {
	total := 0
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		total += CardFromIndex(bits.TrailingZeros64(rest)).Value()
	}
	return total
}

// ---------------------------------------------------------------------------
// Turn protocol enums
// ---------------------------------------------------------------------------

// Phase is the state of the per-hand state machine.
type Phase uint8

const (
	PhaseAwaitingDraw    Phase = iota // 0
	PhaseAwaitingDiscard              // 1
	PhaseAwaitingKnock                // 2
	PhaseEnded                        // 3
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingDraw:
		return "awaiting_draw"
	case PhaseAwaitingDiscard:
		return "awaiting_discard"
	case PhaseAwaitingKnock:
		return "awaiting_knock"
	case PhaseEnded:
		return "ended"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// DrawSource is where a player takes their card from.
type DrawSource uint8

const (
	DrawFromDeck    DrawSource = iota // 0
	DrawFromDiscard                   // 1
)

func (d DrawSource) String() string {
	switch d {
	case DrawFromDeck:
		return "deck"
	case DrawFromDiscard:
		return "discard"
	}
	return fmt.Sprintf("source(%d)", uint8(d))
}

// ParseDrawSource accepts "deck" or "discard" in any case.
func ParseDrawSource(s string) (DrawSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deck", "stock", "stockpile":
		return DrawFromDeck, nil
	case "discard":
		return DrawFromDiscard, nil
	}
	return 0, illegal(MoveDrawSource, -1, "invalid draw choice %q, use \"deck\" or \"discard\"", s)
}

// DecisionContext describes what kind of decision the acting player must make.
type DecisionContext uint8

const (
	CtxDraw     DecisionContext = iota // 0
	CtxDiscard                         // 1
	CtxKnock                           // 2
	CtxTerminal                        // 3
)

// ---------------------------------------------------------------------------
// LastActionInfo is the public record of the most recent action.
// ---------------------------------------------------------------------------

// ActionKind identifies the kind of the last applied action.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionDraw
	ActionDiscard
	ActionKnock
	ActionPass
)

// LastActionInfo is a summary of the most recent action. Card is only set for
// publicly visible cards (discard draws and discards).
type LastActionInfo struct {
	Kind         ActionKind
	ActingPlayer uint8
	DrawnFrom    DrawSource
	Card         Card
}
