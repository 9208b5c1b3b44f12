package engine

import "fmt"

// Reason is why a hand ended.
type Reason uint8

const (
	ReasonNone      Reason = iota // hand still in progress
	ReasonKnock                   // knocker had the lower deadwood
	ReasonGin                     // knocker had zero deadwood
	ReasonUndercut                // defender matched or beat the knocker
	ReasonStalemate               // deck could not supply another draw
	ReasonForfeit                 // a player faulted (illegal move or decision failure)
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonKnock:
		return "knock"
	case ReasonGin:
		return "gin"
	case ReasonUndercut:
		return "undercut"
	case ReasonStalemate:
		return "stalemate_draw"
	case ReasonForfeit:
		return "forfeit"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// NoPlayer marks the absence of a winner or knocker.
const NoPlayer int8 = -1

// GameResult is the immutable outcome of one hand.
type GameResult struct {
	Winner   int8 // NoPlayer on a stalemate draw
	Reason   Reason
	Knocker  int8 // NoPlayer unless the hand ended by knock, gin or undercut
	Deadwood [2]int
	Points   int // awarded to Winner
	Layoffs  []Layoff
	Fault    error // set for ReasonForfeit
	Offender int8  // seat that faulted, NoPlayer otherwise
}

// IsDraw reports whether the hand ended without a winner.
func (r GameResult) IsDraw() bool { return r.Winner == NoPlayer }

// PointsFor returns the points awarded to player (0 for the loser or on a draw).
func (r GameResult) PointsFor(player uint8) int {
	if r.Winner == int8(player) {
		return r.Points
	}
	return 0
}

func (r GameResult) String() string {
	if r.IsDraw() {
		return fmt.Sprintf("draw (%s)", r.Reason)
	}
	if r.Reason == ReasonForfeit {
		return fmt.Sprintf("player %d wins by forfeit of player %d: %v", r.Winner, r.Offender, r.Fault)
	}
	return fmt.Sprintf("player %d wins %d points (%s, deadwood %d/%d)", r.Winner, r.Points, r.Reason, r.Deadwood[0], r.Deadwood[1])
}

// endStalemate terminates the hand as a draw.
func (g *GameState) endStalemate() {
	g.Result = GameResult{
		Winner:   NoPlayer,
		Reason:   ReasonStalemate,
		Knocker:  NoPlayer,
		Offender: NoPlayer,
		Deadwood: [2]int{Deadwood(g.HandOf(0)), Deadwood(g.HandOf(1))},
	}
	g.Phase = PhaseEnded
}

// endKnock scores a knock by player and terminates the hand.
func (g *GameState) endKnock(player uint8) {
	opp := g.OpponentOf(player)
	out := ScoreKnock(g.HandOf(player), g.HandOf(opp), g.Rules)

	res := GameResult{
		Reason:   out.Reason,
		Knocker:  int8(player),
		Points:   out.Points,
		Layoffs:  out.Layoffs,
		Offender: NoPlayer,
	}
	res.Deadwood[player] = out.KnockerDeadwood
	res.Deadwood[opp] = out.DefenderDeadwood
	if out.KnockerWins {
		res.Winner = int8(player)
	} else {
		res.Winner = int8(opp)
	}
	g.Result = res
	g.Phase = PhaseEnded
}

// Forfeit ends the hand because player faulted. The opponent is recorded as
// winner with no points; cause is kept on the result. Forfeiting an ended hand
// returns ErrGameOver.
func (g *GameState) Forfeit(player uint8, cause error) error {
	if g.IsTerminal() {
		return ErrGameOver
	}
	if player > 1 {
		return fmt.Errorf("forfeit: invalid player %d", player)
	}
	g.Result = GameResult{
		Winner:   int8(g.OpponentOf(player)),
		Reason:   ReasonForfeit,
		Knocker:  NoPlayer,
		Offender: int8(player),
		Fault:    cause,
		Deadwood: [2]int{Deadwood(g.HandOf(0)), Deadwood(g.HandOf(1))},
	}
	g.Phase = PhaseEnded
	return nil
}
