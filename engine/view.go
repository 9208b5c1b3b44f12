package engine

// PlayerView is a player's read-only projection of a GameState. It omits the
// opponent's cards and the order of the deck. Every slice is a fresh copy, so
// a decision-maker cannot reach engine-owned memory through it.
type PlayerView struct {
	Seat             uint8
	Hand             []Card
	DiscardPile      []Card // oldest first, top last
	DiscardTop       Card   // EmptyCard when the pile is empty
	DeckSize         int
	OpponentHandSize int
	Phase            Phase
	IsMyTurn         bool
	DrawnFromDiscard Card // card taken from the discard pile this turn, EmptyCard otherwise
	TurnNumber       uint16
	Dealer           uint8
	LastAction       LastActionInfo
	Rules            HouseRules
}

// View builds the PlayerView for player.
func (g *GameState) View(player uint8) PlayerView {
	v := PlayerView{
		Seat:             player,
		Hand:             g.HandOf(player),
		DiscardPile:      g.Discards(),
		DiscardTop:       g.DiscardTop(),
		DeckSize:         g.Deck.Remaining(),
		OpponentHandSize: int(g.Players[g.OpponentOf(player)].HandLen),
		Phase:            g.Phase,
		IsMyTurn:         !g.IsTerminal() && g.CurrentPlayer == player,
		DrawnFromDiscard: EmptyCard,
		TurnNumber:       g.TurnNumber,
		Dealer:           g.Dealer,
		LastAction:       g.LastAction,
		Rules:            g.Rules,
	}
	if v.IsMyTurn {
		v.DrawnFromDiscard = g.DrawnFromDiscard
	}
	return v
}

// Deadwood returns the best deadwood of the viewer's hand.
func (v PlayerView) Deadwood() int { return Deadwood(v.Hand) }

// HasCard reports whether c is in the viewer's hand.
func (v PlayerView) HasCard(c Card) bool {
	for _, h := range v.Hand {
		if h == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of v.
func (v PlayerView) Clone() PlayerView {
	v.Hand = append([]Card(nil), v.Hand...)
	v.DiscardPile = append([]Card(nil), v.DiscardPile...)
	return v
}
