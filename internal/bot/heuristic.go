package bot

import (
	"context"
	"math"

	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/jason-s-yu/ginrummy/engine/agent"
)

// IntermediateKnockLimit is the deadwood at or below which Intermediate knocks.
const IntermediateKnockLimit = 5

// discardDrawMargin is how much a discard-pile card must improve the hand
// before the heuristic bots take it.
const discardDrawMargin = 2

// Intermediate takes the discard top only when it clearly helps, throws high
// unmelded cards whose rank has already been discarded and knocks only at
// low deadwood to limit undercuts.
type Intermediate struct {
	discarded engine.CardSet
}

func NewIntermediate() *Intermediate { return &Intermediate{} }

func (*Intermediate) Name() string { return IntermediateName }

func (b *Intermediate) OnGameStart(_ uint8, v engine.PlayerView) {
	b.discarded = engine.SetOf(v.DiscardPile...)
}

func (b *Intermediate) OnTurnEnd(v engine.PlayerView) {
	b.discarded |= engine.SetOf(v.DiscardPile...)
}

func (b *Intermediate) DrawDecision(_ context.Context, v engine.PlayerView) (engine.DrawSource, error) {
	return drawIfImproves(v, discardDrawMargin), nil
}

func (b *Intermediate) DiscardDecision(_ context.Context, v engine.PlayerView) (engine.Card, error) {
	b.discarded |= engine.SetOf(v.DiscardPile...)
	excluded := v.DrawnFromDiscard

	unmelded := agent.UnmeldedCards(v.Hand)
	if len(unmelded) == 0 {
		choices := excluding(v.Hand, excluded)
		if choices == nil {
			return v.Hand[0], nil
		}
		return agent.BestDiscard(choices, engine.EmptyCard), nil
	}

	candidates := excluding(unmelded, excluded)
	if candidates == nil {
		candidates = excluding(v.Hand, excluded)
	}
	best, bestScore := candidates[0], math.MinInt
	for _, c := range candidates {
		score := c.Value() + 2*b.rankSeen(c.Rank())
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, nil
}

func (b *Intermediate) rankSeen(rank uint8) int {
	n := 0
	for suit := uint8(0); suit < engine.NumSuits; suit++ {
		if b.discarded.Has(engine.NewCard(suit, rank)) {
			n++
		}
	}
	return n
}

func (*Intermediate) KnockDecision(_ context.Context, v engine.PlayerView) (bool, error) {
	return v.Deadwood() <= IntermediateKnockLimit, nil
}

// Weights of the Advanced discard score. Higher scores are thrown first.
const (
	advDeadwoodWeight = 10.0 // per point of deadwood shed
	advMeldPenalty    = 50.0 // card is part of the best arrangement
	advOutWeight      = 8.0  // per live card that would complete a meld with it
	advSafeBonus      = 20.0 // opponent provably cannot use it
	advSafetyWeight   = 4.0  // times ScoreDiscardSafety against opponent picks
	advValueWeight    = 0.3  // tiebreak toward high cards
)

// Advanced counts cards: it tracks everything seen and the opponent's
// discard-pile picks, keeps cards with live outs, prefers provably dead
// discards and always knocks when allowed.
type Advanced struct {
	tracker agent.Tracker
	started bool
}

func NewAdvanced() *Advanced { return &Advanced{} }

func (*Advanced) Name() string { return AdvancedName }

func (b *Advanced) OnGameStart(_ uint8, v engine.PlayerView) {
	b.tracker.Initialize(v)
	b.started = true
}

func (b *Advanced) OnTurnEnd(v engine.PlayerView) {
	b.sync(v)
	b.tracker.Update(v)
}

// sync initializes the tracker when the runner never called OnGameStart.
func (b *Advanced) sync(v engine.PlayerView) {
	if !b.started {
		b.tracker.Initialize(v)
		b.started = true
	}
}

func (b *Advanced) DrawDecision(_ context.Context, v engine.PlayerView) (engine.DrawSource, error) {
	b.sync(v)
	return drawIfImproves(v, discardDrawMargin), nil
}

func (b *Advanced) DiscardDecision(_ context.Context, v engine.PlayerView) (engine.Card, error) {
	b.sync(v)
	hand := v.Hand
	seen := b.tracker.Seen | engine.SetOf(hand...) | engine.SetOf(v.DiscardPile...)
	picks := b.tracker.OpponentPicks()

	melds, _ := agent.BestMelds(hand)
	var melded engine.CardSet
	for _, m := range melds {
		melded |= m.Set()
	}

	candidates := excluding(hand, v.DrawnFromDiscard)
	if candidates == nil {
		candidates = hand
	}
	current := engine.Deadwood(hand)
	best, bestScore := candidates[0], math.Inf(-1)
	for _, c := range candidates {
		after, _ := agent.DeadwoodAfterDiscard(hand, c)
		score := float64(current-after) * advDeadwoodWeight
		if melded.Has(c) {
			score -= advMeldPenalty
		} else {
			score -= float64(agent.CountMeldOuts(c, hand, seen)) * advOutWeight
			if agent.IsProvablySafeDiscard(c, seen, 0) {
				score += advSafeBonus
			}
		}
		score += agent.ScoreDiscardSafety(c, picks, seen) * advSafetyWeight
		score += float64(c.Value()) * advValueWeight
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, nil
}

func (*Advanced) KnockDecision(context.Context, engine.PlayerView) (bool, error) { return true, nil }
