package engine

import (
	"errors"
	"reflect"
	"testing"
)

// Knocker fixture: drawing 5H and throwing QS leaves deadwood 5, against a
// defender with deadwood 12 and no layoffs.
const (
	knockHand    = "AC 2C 3C 4D 4H 4S 8S 9S 10S QS"
	defenderHand = "KC KD KH 10D JD QD AH 2D 3H 6H"
)

func wantCategory(t *testing.T, err error, want MoveCategory) {
	t.Helper()
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("want ErrIllegalMove (%v), got %v", want, err)
	}
	if cat, _ := IllegalCategory(err); cat != want {
		t.Fatalf("category: want %v, got %v (%v)", want, cat, err)
	}
}

// TestDrawFromDeck verifies a deck draw moves one card into the hand.
func TestDrawFromDeck(t *testing.T) {
	g := newDealtGame(t)
	p := g.CurrentPlayer
	top := g.Deck.Cards[g.Deck.Len-1]
	if err := g.Draw(p, DrawFromDeck); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if g.HandLen(p) != 11 || g.Players[p].Hand[10] != top {
		t.Errorf("hand after draw: %v, want %s appended", g.HandOf(p), top)
	}
	if g.DrawnFromDiscard != EmptyCard {
		t.Errorf("DrawnFromDiscard: want EmptyCard, got %s", g.DrawnFromDiscard)
	}
	if g.Phase != PhaseAwaitingDiscard || g.DecisionCtx() != CtxDiscard {
		t.Errorf("Phase: want %v, got %v", PhaseAwaitingDiscard, g.Phase)
	}
	if len(g.LegalDiscards()) != 11 {
		t.Errorf("LegalDiscards: want 11, got %d", len(g.LegalDiscards()))
	}
}

// TestDrawFromDiscard verifies a discard draw records the taken card.
func TestDrawFromDiscard(t *testing.T) {
	g := newDealtGame(t)
	p := g.CurrentPlayer
	top := g.DiscardTop()
	if err := g.Draw(p, DrawFromDiscard); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if g.DrawnFromDiscard != top || g.DiscardLen != 0 {
		t.Errorf("DrawnFromDiscard %s DiscardLen %d, want %s and 0", g.DrawnFromDiscard, g.DiscardLen, top)
	}
	for _, c := range g.LegalDiscards() {
		if c == top {
			t.Errorf("LegalDiscards must exclude %s", top)
		}
	}
	if len(g.LegalDiscards()) != 10 {
		t.Errorf("LegalDiscards: want 10, got %d", len(g.LegalDiscards()))
	}
}

// TestDrawRejections verifies turn, phase and source checks leave state untouched.
func TestDrawRejections(t *testing.T) {
	g := fixedGame(t, knockHand, defenderHand, "", 0)
	before := *g

	wantCategory(t, g.Draw(1, DrawFromDeck), MoveTurn)
	wantCategory(t, g.Draw(0, DrawFromDiscard), MoveDrawSource)
	wantCategory(t, g.Draw(0, DrawSource(9)), MoveDrawSource)
	wantCategory(t, g.Discard(0, card("AC")), MovePhase)
	wantCategory(t, g.Knock(0, true), MovePhase)
	wantCategory(t, g.Draw(5, DrawFromDeck), MoveTurn)
	if !reflect.DeepEqual(*g, before) {
		t.Error("rejected moves mutated state")
	}
	if got := g.LegalDrawSources(); len(got) != 1 || got[0] != DrawFromDeck {
		t.Errorf("LegalDrawSources with empty pile: got %v", got)
	}
}

// TestDiscardNotOwned verifies a card outside the hand cannot be discarded.
func TestDiscardNotOwned(t *testing.T) {
	g := fixedGame(t, knockHand, defenderHand, "5H", 0)
	if err := g.Draw(0, DrawFromDeck); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	before := *g
	wantCategory(t, g.Discard(0, card("KC")), MoveDiscardNotOwned)
	wantCategory(t, g.Discard(0, EmptyCard), MoveDiscardNotOwned)
	if !reflect.DeepEqual(*g, before) {
		t.Error("rejected discard mutated state")
	}
}

// TestAntiBoomerang verifies the card taken from the discard pile cannot be
// thrown back the same turn, but can be on a later turn.
func TestAntiBoomerang(t *testing.T) {
	g := fixedGame(t, knockHand, defenderHand, "7D", 0)
	if err := g.Draw(0, DrawFromDiscard); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	before := *g
	wantCategory(t, g.Discard(0, card("7D")), MoveAntiBoomerang)
	if !reflect.DeepEqual(*g, before) {
		t.Error("rejected discard mutated state")
	}
	if g.LegalActions()&(1<<DiscardAction(card("7D"))) != 0 {
		t.Error("LegalActions must not offer the boomerang discard")
	}
	// QS leaves 7D as the only deadwood (7), so player 0 may knock.
	if err := g.Discard(0, card("QS")); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if err := g.Knock(0, false); err != nil {
		t.Fatalf("Knock(false): %v", err)
	}
	// Player 1 takes QS and throws AH; player 0 may now discard 7D.
	if err := g.Draw(1, DrawFromDiscard); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := g.Discard(1, card("AH")); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if err := g.Draw(0, DrawFromDeck); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := g.Discard(0, card("7D")); err != nil {
		t.Errorf("7D should be discardable on a later turn: %v", err)
	}
}

// TestKnockFlow verifies draw, discard, knock and scoring end to end.
func TestKnockFlow(t *testing.T) {
	g := fixedGame(t, knockHand, defenderHand, "5H", 0)
	if err := g.Draw(0, DrawFromDiscard); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := g.Discard(0, card("QS")); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if g.Phase != PhaseAwaitingKnock || g.CurrentPlayer != 0 {
		t.Fatalf("want knock decision for player 0, got %v player %d", g.Phase, g.CurrentPlayer)
	}
	if got := g.LegalActionsList(); len(got) != 2 {
		t.Errorf("knock phase LegalActionsList: got %v", got)
	}
	if err := g.Knock(0, true); err != nil {
		t.Fatalf("Knock: %v", err)
	}
	r := g.Result
	if !g.IsTerminal() || r.Reason != ReasonKnock || r.Winner != 0 || r.Knocker != 0 {
		t.Fatalf("result: %+v", r)
	}
	if r.Points != 7 || r.Deadwood != [2]int{5, 12} {
		t.Errorf("points %d deadwood %v, want 7 and [5 12]", r.Points, r.Deadwood)
	}
	if r.PointsFor(0) != 7 || r.PointsFor(1) != 0 {
		t.Errorf("PointsFor: %d/%d", r.PointsFor(0), r.PointsFor(1))
	}
	if err := g.Draw(1, DrawFromDeck); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after end: want ErrGameOver, got %v", err)
	}
	if err := g.CheckInvariants(); err != nil {
		t.Error(err)
	}
}

// TestKnockDeclinePassesTurn verifies declining a knock hands play over.
func TestKnockDeclinePassesTurn(t *testing.T) {
	g := fixedGame(t, knockHand, defenderHand, "5H", 0)
	_ = g.Draw(0, DrawFromDiscard)
	_ = g.Discard(0, card("QS"))
	if err := g.Knock(0, false); err != nil {
		t.Fatalf("Knock(false): %v", err)
	}
	if g.CurrentPlayer != 1 || g.Phase != PhaseAwaitingDraw || g.TurnNumber != 1 {
		t.Errorf("after pass: player %d phase %v turn %d", g.CurrentPlayer, g.Phase, g.TurnNumber)
	}
	if g.LastAction.Kind != ActionPass {
		t.Errorf("LastAction: want pass, got %v", g.LastAction.Kind)
	}
}

// TestHighDeadwoodSkipsKnock verifies a discard above the limit passes the turn.
func TestHighDeadwoodSkipsKnock(t *testing.T) {
	g := fixedGame(t, defenderHand, knockHand, "5C", 0)
	_ = g.Draw(0, DrawFromDiscard)
	if err := g.Discard(0, card("6H")); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if g.CurrentPlayer != 1 || g.Phase != PhaseAwaitingDraw {
		t.Errorf("want player 1 to draw, got player %d phase %v", g.CurrentPlayer, g.Phase)
	}
}

// TestKnockAboveLimitRejected verifies the knock re-check in the knock phase.
func TestKnockAboveLimitRejected(t *testing.T) {
	g := fixedGame(t, defenderHand, knockHand, "", 0)
	g.Phase = PhaseAwaitingKnock // deadwood 12
	before := *g
	err := g.Knock(0, true)
	wantCategory(t, err, MoveKnock)
	var me *MoveError
	if !errors.As(err, &me) || me.Player != 0 {
		t.Errorf("MoveError.Player: want 0, got %+v", me)
	}
	if !reflect.DeepEqual(*g, before) {
		t.Error("rejected knock mutated state")
	}
}

// TestStalemate verifies the hand ends as a draw when the deck drops below
// two cards at the start of a draw phase.
func TestStalemate(t *testing.T) {
	g := newDealtGame(t)
	for !g.IsTerminal() {
		p := g.CurrentPlayer
		if err := g.Draw(p, DrawFromDeck); err != nil {
			t.Fatalf("Draw: %v", err)
		}
		drawn := g.Players[p].Hand[g.Players[p].HandLen-1]
		if err := g.Discard(p, drawn); err != nil {
			t.Fatalf("Discard: %v", err)
		}
		if g.Phase == PhaseAwaitingKnock {
			if err := g.Knock(p, false); err != nil {
				t.Fatalf("Knock(false): %v", err)
			}
		}
	}
	r := g.Result
	if r.Reason != ReasonStalemate || !r.IsDraw() || r.Points != 0 || r.Knocker != NoPlayer {
		t.Fatalf("result: %+v", r)
	}
	if g.DeckRemaining() != 1 || g.TurnNumber != 30 {
		t.Errorf("deck %d turn %d, want 1 and 30", g.DeckRemaining(), g.TurnNumber)
	}
	if r.PointsFor(0) != 0 || r.PointsFor(1) != 0 {
		t.Error("stalemate awards no points")
	}
}

// TestForfeit verifies a fault ends the hand for the opponent.
func TestForfeit(t *testing.T) {
	g := newDealtGame(t)
	cause := errors.New("bot crashed")
	if err := g.Forfeit(1, cause); err != nil {
		t.Fatalf("Forfeit: %v", err)
	}
	r := g.Result
	if r.Reason != ReasonForfeit || r.Winner != 0 || r.Offender != 1 || r.Points != 0 {
		t.Errorf("result: %+v", r)
	}
	if !errors.Is(r.Fault, cause) {
		t.Errorf("Fault: want %v, got %v", cause, r.Fault)
	}
	if err := g.Forfeit(0, cause); !errors.Is(err, ErrGameOver) {
		t.Errorf("second Forfeit: want ErrGameOver, got %v", err)
	}
}

// TestApplyActionRoundTrip verifies the discard index encoding.
func TestApplyActionRoundTrip(t *testing.T) {
	for i := 0; i < DeckSize; i++ {
		c := CardFromIndex(i)
		got, ok := ActionIsDiscard(DiscardAction(c))
		if !ok || got != c {
			t.Errorf("ActionIsDiscard(DiscardAction(%s)): got %s %v", c, got, ok)
		}
	}
	if _, ok := ActionIsDiscard(ActionKnockYes); ok {
		t.Error("ActionKnockYes is not a discard")
	}
	if NumActions > 64 {
		t.Fatalf("NumActions %d does not fit the uint64 mask", NumActions)
	}
	g := newDealtGame(t)
	wantCategory(t, g.ApplyAction(NumActions), MovePhase)
}
