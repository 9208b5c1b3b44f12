package engine

import "fmt"

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck is a fixed-size draw pile. Cards are consumed from the end of the array.
type Deck struct {
	Cards [DeckSize]Card
	Len   uint8
}

// NewShuffledDeck builds the 52 cards and shuffles them with a xorshift64
// stream seeded by seed. The same seed always yields the same order.
func NewShuffledDeck(seed uint64) Deck {
	var d Deck
	idx := 0
	for suit := uint8(0); suit < NumSuits; suit++ {
		for rank := uint8(0); rank <= RankKing; rank++ {
			d.Cards[idx] = NewCard(suit, rank)
			idx++
		}
	}
	d.Len = DeckSize

	rng := newXorshift(seed)
	// Fisher-Yates shuffle.
	for i := DeckSize - 1; i > 0; i-- {
		j := int(rng.intn(uint64(i + 1)))
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
	return d
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int { return int(d.Len) }

// Deal removes and returns n cards from the draw end. It fails without
// removing anything when fewer than n cards remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > int(d.Len) {
		return nil, fmt.Errorf("deal %d cards, %d remain: %w", n, d.Len, ErrDeckExhausted)
	}
	out := make([]Card, n)
	for i := 0; i < n; i++ {
		d.Len--
		out[i] = d.Cards[d.Len]
	}
	return out, nil
}

// DrawOne is Deal(1).
func (d *Deck) DrawOne() (Card, error) {
	if d.Len == 0 {
		return EmptyCard, fmt.Errorf("draw from empty deck: %w", ErrDeckExhausted)
	}
	d.Len--
	return d.Cards[d.Len], nil
}

// Order returns a copy of the undrawn cards, next card to be drawn last.
func (d *Deck) Order() []Card {
	out := make([]Card, d.Len)
	copy(out, d.Cards[:d.Len])
	return out
}

// Set returns the undrawn cards as a CardSet.
func (d *Deck) Set() CardSet { return SetOf(d.Cards[:d.Len]...) }

// ---------------------------------------------------------------------------
// xorshift64 generator used by the shuffle.
// ---------------------------------------------------------------------------

type xorshift struct{ state uint64 }

// newXorshift scrambles seed through the splitmix64 finalizer first so that
// nearby seeds (0, 1, 2...) start from unrelated states.
func newXorshift(seed uint64) xorshift {
	z := seed + 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	if z == 0 {
		z = 1 // xorshift can't start at 0
	}
	return xorshift{state: z}
}

func (x *xorshift) next() uint64 {
	s := x.state
	s ^= s << 13
	s ^= s >> 7
	s ^= s << 17
	x.state = s
	return s
}

// intn returns a random number in [0, n).
func (x *xorshift) intn(n uint64) uint64 { return x.next() % n }
