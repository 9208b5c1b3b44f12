package engine

// Layoff is a defender card attached to one of the knocker's melds.
type Layoff struct {
	Card   Card
	Target int // index into the knocker's melds
}

// LayoffResult is the defender's best arrangement after a non-gin knock.
type LayoffResult struct {
	Melds     []Meld   // defender's own melds
	Layoffs   []Layoff // cards attached to the knocker's melds
	Remaining []Card   // cards still counted as deadwood
	Deadwood  int
}

// Outcome is the scored result of a knock.
type Outcome struct {
	Reason           Reason // ReasonKnock, ReasonGin or ReasonUndercut
	KnockerWins      bool
	KnockerDeadwood  int
	DefenderDeadwood int // after layoffs, when allowed
	Points           int // awarded to the winner
	KnockerMelds     []Meld
	DefenderMelds    []Meld
	Layoffs          []Layoff
}

// CheckKnock returns an illegal-move error when hand may not knock under rules.
func CheckKnock(hand []Card, rules HouseRules) error {
	if d, limit := Deadwood(hand), rules.MaxKnockDeadwood(); d > limit {
		return illegal(MoveKnock, -1, "deadwood %d exceeds knock limit %d", d, limit)
	}
	return nil
}

// CanLayOff reports whether appending card to meld keeps it a valid set or run.
func CanLayOff(card Card, meld Meld) bool {
	if meld.Set().Has(card) {
		return false
	}
	extended := append(append(make([]Card, 0, len(meld.Cards)+1), meld.Cards...), card)
	if meld.Kind == MeldSet {
		return IsValidSet(extended)
	}
	return IsValidRun(extended)
}

// LayoffOptions returns every card outside knockerMelds that can be laid off
// directly onto one of them, sorted by (rank, suit).
func LayoffOptions(knockerMelds []Meld) []Card {
	var used CardSet
	for _, m := range knockerMelds {
		used |= m.Set()
	}
	var out []Card
	for _, c := range (FullDeckSet &^ used).Cards() {
		for _, m := range knockerMelds {
			if CanLayOff(c, m) {
				out = append(out, c)
				break
			}
		}
	}
	SortCards(out)
	return out
}

type layoffGroup struct {
	cards  CardSet
	target int
}

// layoffGroups lists every group of defender cards that can be attached to a
// single knocker meld: the missing suit of a 3-card set, and every contiguous
// extension below or above a run. Extensions on the two ends of a run never
// share cards, so any disjoint selection is attachable in some order.
func layoffGroups(knockerMelds []Meld, defender CardSet) []layoffGroup {
	var out []layoffGroup
	for t, m := range knockerMelds {
		if len(m.Cards) == 0 {
			continue
		}
		switch m.Kind {
		case MeldSet:
			if len(m.Cards) >= 4 {
				continue
			}
			rank := m.Cards[0].Rank()
			have := m.Set()
			for suit := uint8(0); suit < NumSuits; suit++ {
				c := NewCard(suit, rank)
				if !have.Has(c) && defender.Has(c) {
					out = append(out, layoffGroup{cards: SetOf(c), target: t})
				}
			}
		case MeldRun:
			suit := m.Cards[0].Suit()
			lo, hi := m.Cards[0].Rank(), m.Cards[0].Rank()
			for _, c := range m.Cards {
				lo = min(lo, c.Rank())
				hi = max(hi, c.Rank())
			}
			var ext CardSet
			for r := int(lo) - 1; r >= int(RankAce); r-- {
				c := NewCard(suit, uint8(r))
				if !defender.Has(c) {
					break
				}
				ext = ext.Add(c)
				out = append(out, layoffGroup{cards: ext, target: t})
			}
			ext = 0
			for r := int(hi) + 1; r <= int(RankKing); r++ {
				c := NewCard(suit, uint8(r))
				if !defender.Has(c) {
					break
				}
				ext = ext.Add(c)
				out = append(out, layoffGroup{cards: ext, target: t})
			}
		}
	}
	return out
}

// ApplyLayoffs melds defenderHand with BestMelds, then lays off the leftover
// cards onto knockerMelds, choosing the layoffs (chained run extensions
// included) that leave the least deadwood. Cards in the defender's own melds
// are never laid off. The knocker's melds are not modified.
func ApplyLayoffs(knockerMelds []Meld, defenderHand []Card) LayoffResult {
	own, rest := BestMelds(defenderHand)
	res := LayoffResult{Melds: own}
	if len(rest) == 0 {
		return res
	}

	loose := SetOf(rest...)
	groups := layoffGroups(knockerMelds, loose)
	masks := make([]CardSet, len(groups))
	for i, g := range groups {
		masks[i] = g.cards
	}
	deadwood, picks := partition(loose, masks)
	res.Deadwood = deadwood

	var laid CardSet
	for _, i := range picks {
		laid |= masks[i]
		for _, c := range groups[i].cards.Cards() {
			res.Layoffs = append(res.Layoffs, Layoff{Card: c, Target: groups[i].target})
		}
	}
	for _, c := range rest {
		if !laid.Has(c) {
			res.Remaining = append(res.Remaining, c)
		}
	}
	return res
}

// ScoreKnock scores a knock by the holder of knocker against defender. Gin is
// checked first and forecloses layoffs; otherwise the defender lays off and
// the hand is either won by the knocker or undercut.
func ScoreKnock(knocker, defender []Card, rules HouseRules) Outcome {
	kMelds, kRest := BestMelds(knocker)
	out := Outcome{KnockerDeadwood: DeadwoodValue(kRest), KnockerMelds: kMelds}

	if out.KnockerDeadwood == 0 {
		dMelds, dRest := BestMelds(defender)
		out.DefenderMelds = dMelds
		out.DefenderDeadwood = DeadwoodValue(dRest)
	} else {
		lay := ApplyLayoffs(kMelds, defender)
		out.DefenderMelds = lay.Melds
		out.Layoffs = lay.Layoffs
		out.DefenderDeadwood = lay.Deadwood
	}
	out.Reason, out.KnockerWins, out.Points = ScoreDeadwood(out.KnockerDeadwood, out.DefenderDeadwood, rules)
	return out
}

// ScoreDeadwood applies the terminal scoring rules to already-computed
// deadwood totals: gin when knocker is 0, undercut when the defender is at or
// below the knocker, a plain knock win otherwise.
func ScoreDeadwood(knockerDeadwood, defenderDeadwood int, rules HouseRules) (Reason, bool, int) {
	switch {
	case knockerDeadwood == 0:
		return ReasonGin, true, defenderDeadwood + rules.GinBonus
	case defenderDeadwood <= knockerDeadwood:
		return ReasonUndercut, false, knockerDeadwood - defenderDeadwood + rules.UndercutBonus
	default:
		return ReasonKnock, true, defenderDeadwood - knockerDeadwood
	}
}
