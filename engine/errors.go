package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDeckExhausted is returned when more cards are requested than the deck holds.
	ErrDeckExhausted = errors.New("deck exhausted")
	// ErrIllegalMove is matched by every *MoveError.
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned by actions applied to an ended hand.
	ErrGameOver = errors.New("game is already over")
)

// MoveCategory classifies an illegal move.
type MoveCategory uint8

const (
	MovePhase           MoveCategory = iota // action not valid in the current phase
	MoveTurn                                // acting out of turn
	MoveDrawSource                          // unknown source, or discard pile empty
	MoveDiscardNotOwned                     // discarded card is not in hand
	MoveAntiBoomerang                       // discarding the card just taken from the discard pile
	MoveKnock                               // knocking with deadwood above the limit
)

func (c MoveCategory) String() string {
	switch c {
	case MovePhase:
		return "phase"
	case MoveTurn:
		return "turn"
	case MoveDrawSource:
		return "draw_source"
	case MoveDiscardNotOwned:
		return "discard_not_owned"
	case MoveAntiBoomerang:
		return "anti_boomerang"
	case MoveKnock:
		return "knock"
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// MoveError describes a rejected move. State is never mutated when one is returned.
type MoveError struct {
	Category MoveCategory
	Player   int8 // -1 when not attributable
	Msg      string
}

func (e *MoveError) Error() string {
	if e.Player < 0 {
		return fmt.Sprintf("illegal move (%s): %s", e.Category, e.Msg)
	}
	return fmt.Sprintf("illegal move by player %d (%s): %s", e.Player, e.Category, e.Msg)
}

func (e *MoveError) Is(target error) bool { return target == ErrIllegalMove }

func illegal(cat MoveCategory, player int8, format string, args ...any) *MoveError {
	return &MoveError{Category: cat, Player: player, Msg: fmt.Sprintf(format, args...)}
}

// IllegalCategory extracts the category of an illegal move error.
func IllegalCategory(err error) (MoveCategory, bool) {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Category, true
	}
	return 0, false
}
