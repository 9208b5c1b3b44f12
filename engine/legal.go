package engine

// DecisionCtx returns the kind of decision the acting player must make.
func (g *GameState) DecisionCtx() DecisionContext {
	switch {
	case g.IsTerminal() || !g.started:
		return CtxTerminal
	case g.Phase == PhaseAwaitingDiscard:
		return CtxDiscard
	case g.Phase == PhaseAwaitingKnock:
		return CtxKnock
	}
	return CtxDraw
}

// LegalDrawSources returns the draw sources available to the current player,
// or nil outside the draw phase.
func (g *GameState) LegalDrawSources() []DrawSource {
	if g.DecisionCtx() != CtxDraw {
		return nil
	}
	out := []DrawSource{DrawFromDeck}
	if g.DiscardLen > 0 {
		out = append(out, DrawFromDiscard)
	}
	return out
}

// LegalDiscards returns the cards the current player may discard, in hand
// order, or nil outside the discard phase.
func (g *GameState) LegalDiscards() []Card {
	if g.DecisionCtx() != CtxDiscard {
		return nil
	}
	ps := &g.Players[g.CurrentPlayer]
	out := make([]Card, 0, ps.HandLen)
	for _, c := range ps.Hand[:ps.HandLen] {
		if c != g.DrawnFromDiscard {
			out = append(out, c)
		}
	}
	return out
}

// LegalActions returns a bitmask of legal action indices: bit i is set when
// ApplyAction(i) would succeed. Zero heap allocation.
func (g *GameState) LegalActions() uint64 {
	var mask uint64
	switch g.DecisionCtx() {
	case CtxDraw:
		if g.Deck.Len > 0 {
			mask |= 1 << ActionDrawDeck
		}
		if g.DiscardLen > 0 {
			mask |= 1 << ActionDrawDiscard
		}
	case CtxDiscard:
		ps := &g.Players[g.CurrentPlayer]
		for _, c := range ps.Hand[:ps.HandLen] {
			if c != g.DrawnFromDiscard {
				mask |= 1 << DiscardAction(c)
			}
		}
	case CtxKnock:
		// Reaching the knock phase already guarantees the limit is met.
		mask |= 1<<ActionKnockYes | 1<<ActionKnockNo
	}
	return mask
}

// LegalActionsList returns legal actions as a slice (for testing; allocates).
func (g *GameState) LegalActionsList() []uint16 {
	mask := g.LegalActions()
	var actions []uint16
	for i := uint16(0); i < NumActions; i++ {
		if mask&(1<<i) != 0 {
			actions = append(actions, i)
		}
	}
	return actions
}
