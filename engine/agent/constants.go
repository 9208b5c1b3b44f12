package agent

import engine "github.com/jason-s-yu/ginrummy/engine"

// StockEstimate is a coarse bucket of the remaining deck size.
type StockEstimate uint8

const (
	StockHigh   StockEstimate = iota // 0: 21+ cards, early in the hand
	StockMedium                      // 1: 10-20 cards
	StockLow                         // 2: 1-9 cards
	StockEmpty                       // 3: 0 cards
)

// GamePhase is the coarse stage of a hand from one player's perspective.
type GamePhase uint8

const (
	PhaseStart    GamePhase = iota // 0: no turn has completed
	PhaseEarly                     // 1: StockHigh
	PhaseMid                       // 2: StockMedium
	PhaseLate                      // 3: StockLow or StockEmpty
	PhaseTerminal                  // 4: hand is over
)

func (p GamePhase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseEarly:
		return "early"
	case PhaseMid:
		return "mid"
	case PhaseLate:
		return "late"
	case PhaseTerminal:
		return "terminal"
	}
	return "unknown"
}

// StockEstimateFromSize converts a deck count to a StockEstimate. After the
// deal a two-player deck holds 31 cards.
//
// >=21 → StockHigh, >=10 → StockMedium, >0 → StockLow, 0 → StockEmpty.
func StockEstimateFromSize(deckSize int) StockEstimate {
	switch {
	case deckSize >= 21:
		return StockHigh
	case deckSize >= 10:
		return StockMedium
	case deckSize > 0:
		return StockLow
	default:
		return StockEmpty
	}
}

// GamePhaseFromView derives the GamePhase from a view. Priority:
// ended > first turn > deck-size thresholds.
func GamePhaseFromView(v engine.PlayerView) GamePhase {
	switch {
	case v.Phase == engine.PhaseEnded:
		return PhaseTerminal
	case v.TurnNumber == 0:
		return PhaseStart
	}
	switch StockEstimateFromSize(v.DeckSize) {
	case StockHigh:
		return PhaseEarly
	case StockMedium:
		return PhaseMid
	default:
		return PhaseLate
	}
}

// Weights used by ScoreDiscardSafety.
const (
	SafetySameRankDiscarded = 5.0 // opponent threw a card of this rank
	SafetyNearSuitDiscarded = 3.0 // opponent threw a same-suit card within 2 ranks
	SafetySeenSameRank      = 1.5 // per other card of this rank already out of play
)
