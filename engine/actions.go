package engine

import "errors"

// ---------------------------------------------------------------------------
// Turn actions
// ---------------------------------------------------------------------------

// Draw takes the top card of the deck or the discard pile into player's hand.
func (g *GameState) Draw(player uint8, src DrawSource) error {
	if err := g.checkActor(player, PhaseAwaitingDraw); err != nil {
		return err
	}
	var card Card
	switch src {
	case DrawFromDeck:
		if g.Deck.Len == 0 {
			return illegal(MoveDrawSource, int8(player), "deck is empty")
		}
		card, _ = g.Deck.DrawOne()
		g.DrawnFromDiscard = EmptyCard
		g.LastAction = LastActionInfo{Kind: ActionDraw, ActingPlayer: player, DrawnFrom: src, Card: EmptyCard}
	case DrawFromDiscard:
		if g.DiscardLen == 0 {
			return illegal(MoveDrawSource, int8(player), "discard pile is empty")
		}
		g.DiscardLen--
		card = g.DiscardPile[g.DiscardLen]
		g.DiscardPile[g.DiscardLen] = EmptyCard
		g.DrawnFromDiscard = card
		g.LastAction = LastActionInfo{Kind: ActionDraw, ActingPlayer: player, DrawnFrom: src, Card: card}
	default:
		return illegal(MoveDrawSource, int8(player), "unknown draw source %d", uint8(src))
	}
	g.Players[player].add(card)
	g.Phase = PhaseAwaitingDiscard
	return nil
}

// Discard moves card from player's hand to the top of the discard pile. The
// card just taken from the discard pile may not be thrown back the same turn.
// When the remaining hand is within the knock limit the player must then
// decide whether to knock; otherwise the turn passes.
func (g *GameState) Discard(player uint8, card Card) error {
	if err := g.checkActor(player, PhaseAwaitingDiscard); err != nil {
		return err
	}
	ps := &g.Players[player]
	idx := ps.indexOf(card)
	if idx < 0 {
		return illegal(MoveDiscardNotOwned, int8(player), "card %s is not in hand", card)
	}
	if card == g.DrawnFromDiscard {
		return illegal(MoveAntiBoomerang, int8(player), "cannot discard %s, it was just taken from the discard pile", card)
	}
	ps.removeAt(idx)
	g.DiscardPile[g.DiscardLen] = card
	g.DiscardLen++
	g.DrawnFromDiscard = EmptyCard
	g.LastAction = LastActionInfo{Kind: ActionDiscard, ActingPlayer: player, Card: card}

	if CanKnock(ps.Cards(), g.Rules.MaxKnockDeadwood()) {
		g.Phase = PhaseAwaitingKnock
		return nil
	}
	g.advanceTurn()
	return nil
}

// Knock records player's knock decision. Knocking scores and ends the hand;
// declining passes the turn.
func (g *GameState) Knock(player uint8, knock bool) error {
	if err := g.checkActor(player, PhaseAwaitingKnock); err != nil {
		return err
	}
	if !knock {
		g.LastAction = LastActionInfo{Kind: ActionPass, ActingPlayer: player, Card: EmptyCard}
		g.advanceTurn()
		return nil
	}
	if err := CheckKnock(g.HandOf(player), g.Rules); err != nil {
		var me *MoveError
		if errors.As(err, &me) {
			me.Player = int8(player)
		}
		return err
	}
	g.LastAction = LastActionInfo{Kind: ActionKnock, ActingPlayer: player, Card: EmptyCard}
	g.endKnock(player)
	return nil
}

// checkActor validates that player may act in the wanted phase.
func (g *GameState) checkActor(player uint8, want Phase) error {
	if !g.started {
		return illegal(MovePhase, int8(player), "hand has not been dealt")
	}
	if g.IsTerminal() {
		return ErrGameOver
	}
	if player >= NumPlayers {
		return illegal(MoveTurn, -1, "invalid player %d", player)
	}
	if player != g.CurrentPlayer {
		return illegal(MoveTurn, int8(player), "not your turn, player %d to act", g.CurrentPlayer)
	}
	if g.Phase != want {
		return illegal(MovePhase, int8(player), "cannot act in phase %s, expected %s", g.Phase, want)
	}
	return nil
}

// advanceTurn passes play to the opponent and enters the draw phase.
func (g *GameState) advanceTurn() {
	g.CurrentPlayer = g.OpponentOf(g.CurrentPlayer)
	g.TurnNumber++
	g.beginDrawPhase()
}

// beginDrawPhase enters the draw phase, ending the hand as a stalemate when
// the deck is down to fewer than StalemateStock cards.
func (g *GameState) beginDrawPhase() {
	g.DrawnFromDiscard = EmptyCard
	if g.Deck.Remaining() < int(g.Rules.StalemateStock) {
		g.endStalemate()
		return
	}
	g.Phase = PhaseAwaitingDraw
}

// ---------------------------------------------------------------------------
// Indexed actions
// ---------------------------------------------------------------------------

// Action indices give every move a dense uint16 encoding so callers can work
// over a legal-action bitmask.
const (
	ActionDrawDeck    uint16 = 0
	ActionDrawDiscard uint16 = 1
	ActionDiscardBase uint16 = 2 // + card index (0-51)
	ActionKnockYes    uint16 = ActionDiscardBase + DeckSize
	ActionKnockNo     uint16 = ActionKnockYes + 1
	NumActions               = ActionKnockNo + 1
)

// DiscardAction returns the index for discarding c.
func DiscardAction(c Card) uint16 { return ActionDiscardBase + uint16(c.Index()) }

// ActionIsDiscard decodes a discard index.
func ActionIsDiscard(idx uint16) (Card, bool) {
	if idx >= ActionDiscardBase && idx < ActionKnockYes {
		return CardFromIndex(int(idx - ActionDiscardBase)), true
	}
	return EmptyCard, false
}

// ApplyAction applies an indexed action for the current player.
func (g *GameState) ApplyAction(idx uint16) error {
	p := g.CurrentPlayer
	switch idx {
	case ActionDrawDeck:
		return g.Draw(p, DrawFromDeck)
	case ActionDrawDiscard:
		return g.Draw(p, DrawFromDiscard)
	case ActionKnockYes:
		return g.Knock(p, true)
	case ActionKnockNo:
		return g.Knock(p, false)
	}
	if c, ok := ActionIsDiscard(idx); ok {
		return g.Discard(p, c)
	}
	return illegal(MovePhase, int8(p), "unknown action index %d", idx)
}
