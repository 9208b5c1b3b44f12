package bot

import (
	"context"
	"math/rand/v2"

	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/jason-s-yu/ginrummy/engine/agent"
)

// Registered names of the sample bots.
const (
	RandomName       = "RandomBot"
	BasicName        = "BasicBot"
	IntermediateName = "IntermediateBot"
	AdvancedName     = "AdvancedBot"
)

// Random makes uniformly random legal moves. It is the baseline every other
// strategy should beat.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random bot whose choices are fixed by seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (b *Random) Name() string { return RandomName }

func (b *Random) DrawDecision(_ context.Context, v engine.PlayerView) (engine.DrawSource, error) {
	if v.DiscardTop.Valid() && b.rng.IntN(2) == 1 {
		return engine.DrawFromDiscard, nil
	}
	return engine.DrawFromDeck, nil
}

func (b *Random) DiscardDecision(_ context.Context, v engine.PlayerView) (engine.Card, error) {
	choices := make([]engine.Card, 0, len(v.Hand))
	for _, c := range v.Hand {
		if c != v.DrawnFromDiscard {
			choices = append(choices, c)
		}
	}
	return choices[b.rng.IntN(len(choices))], nil
}

func (b *Random) KnockDecision(context.Context, engine.PlayerView) (bool, error) {
	return b.rng.IntN(2) == 1, nil
}

// Basic always draws from the deck, throws the card that leaves the least
// deadwood and knocks whenever it may.
type Basic struct{}

func NewBasic() *Basic { return &Basic{} }

func (*Basic) Name() string { return BasicName }

func (*Basic) DrawDecision(context.Context, engine.PlayerView) (engine.DrawSource, error) {
	return engine.DrawFromDeck, nil
}

func (*Basic) DiscardDecision(_ context.Context, v engine.PlayerView) (engine.Card, error) {
	return agent.BestDiscard(v.Hand, v.DrawnFromDiscard), nil
}

func (*Basic) KnockDecision(context.Context, engine.PlayerView) (bool, error) { return true, nil }

// drawIfImproves takes the discard top when doing so lowers the best reachable
// deadwood by more than margin.
func drawIfImproves(v engine.PlayerView, margin int) engine.DrawSource {
	if !v.DiscardTop.Valid() {
		return engine.DrawFromDeck
	}
	if agent.EvaluateDiscardDraw(v.Hand, v.DiscardTop) < engine.Deadwood(v.Hand)-margin {
		return engine.DrawFromDiscard
	}
	return engine.DrawFromDeck
}

// excluding returns cards minus c, or nil when nothing remains.
func excluding(cards []engine.Card, c engine.Card) []engine.Card {
	out := make([]engine.Card, 0, len(cards))
	for _, x := range cards {
		if x != c {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
