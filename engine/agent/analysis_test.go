package agent

import (
	"errors"
	"math"
	"testing"

	engine "github.com/jason-s-yu/ginrummy/engine"
)

func cards(s string) []engine.Card { return engine.MustParseCards(s) }

func one(s string) engine.Card { return engine.MustParseCards(s)[0] }

// TestDeadwoodAfterDiscard verifies hypothetical discards and the missing-card error.
func TestDeadwoodAfterDiscard(t *testing.T) {
	hand := cards("AC 2C 3C 4D 4H 4S 8S 9S 10S 5H KD")
	tests := []struct {
		card string
		want int
	}{
		{"KD", 5},
		{"5H", 10},
		{"AC", 2 + 3 + 5 + 10},
	}
	for _, tt := range tests {
		got, err := DeadwoodAfterDiscard(hand, one(tt.card))
		if err != nil || got != tt.want {
			t.Errorf("DeadwoodAfterDiscard(%s): want %d, got %d (%v)", tt.card, tt.want, got, err)
		}
	}
	if _, err := DeadwoodAfterDiscard(hand, one("QS")); !errors.Is(err, ErrCardNotInHand) {
		t.Errorf("missing card: want ErrCardNotInHand, got %v", err)
	}
}

// TestBestDiscard verifies the minimizing discard and the exclusion.
func TestBestDiscard(t *testing.T) {
	hand := cards("AC 2C 3C 4D 4H 4S 8S 9S 10S 5H KD")
	if got := BestDiscard(hand, engine.EmptyCard); got != one("KD") {
		t.Errorf("BestDiscard: want KD, got %s", got)
	}
	if got := BestDiscard(hand, one("KD")); got != one("5H") {
		t.Errorf("BestDiscard excluding KD: want 5H, got %s", got)
	}
	if got := BestDiscard(nil, engine.EmptyCard); got != engine.EmptyCard {
		t.Errorf("BestDiscard(empty): want EmptyCard, got %s", got)
	}
}

// TestEvaluateDiscardDraw verifies taking a card that completes a run.
func TestEvaluateDiscardDraw(t *testing.T) {
	hand := cards("AC 2C 3C 4D 4H 4S 8S 9S KD QH")
	if dw := engine.Deadwood(hand); dw != 37 {
		t.Fatalf("fixture deadwood: want 37, got %d", dw)
	}
	if got := EvaluateDiscardDraw(hand, one("10S")); got != 10 {
		t.Errorf("EvaluateDiscardDraw(10S): want 10, got %d", got)
	}
	if got := DeadwoodAfterDraw(hand, one("10S")); got != 20 {
		t.Errorf("DeadwoodAfterDraw(10S): want 20, got %d", got)
	}
	// A useless card can at best be kept instead of the worst card.
	if got := EvaluateDiscardDraw(hand, one("2H")); got != 29 {
		t.Errorf("EvaluateDiscardDraw(2H): want 29, got %d", got)
	}
}

// TestCardContribution verifies contributions can be negative for meld anchors.
func TestCardContribution(t *testing.T) {
	hand := cards("AC 2C 3C KD")
	if got, _ := CardContribution(hand, one("KD")); got != 10 {
		t.Errorf("KD contribution: want 10, got %d", got)
	}
	if got, _ := CardContribution(hand, one("AC")); got != -5 {
		t.Errorf("AC contribution: want -5, got %d", got)
	}
	if _, err := CardContribution(hand, one("QS")); !errors.Is(err, ErrCardNotInHand) {
		t.Errorf("missing card: want ErrCardNotInHand, got %v", err)
	}
}

// TestIsProvablySafeDiscard verifies set and run blocking.
func TestIsProvablySafeDiscard(t *testing.T) {
	seven := one("7H")
	blocked := engine.SetOf(cards("7C 7D 6H 8H 7H")...)
	if !IsProvablySafeDiscard(seven, blocked, 0) {
		t.Error("7H with 7C 7D 6H 8H out of play should be safe")
	}
	if IsProvablySafeDiscard(seven, blocked.Remove(one("8H")), 0) {
		t.Error("7H 8H 9H is still reachable")
	}
	if IsProvablySafeDiscard(seven, blocked.Remove(one("7D")), 0) {
		t.Error("a set of sevens is still reachable")
	}
	// 6H and 8H still in our hand can reach the opponent later.
	mine := engine.SetOf(cards("6H 8H 7H")...)
	if IsProvablySafeDiscard(seven, blocked, mine) {
		t.Error("cards still held should not count as blocking")
	}
	// King: only J-Q-K runs through it.
	king := one("KS")
	if !IsProvablySafeDiscard(king, engine.SetOf(cards("KC KD QS")...), 0) {
		t.Error("KS with KC KD QS out of play should be safe")
	}
}

// TestCountMeldOuts verifies outs for a pair plus a connector.
func TestCountMeldOuts(t *testing.T) {
	hand := cards("5H 6H 5D KS")
	seen := engine.SetOf(hand...)
	// Sets: 5C 5S. Runs: 4H 7H.
	if got := CountMeldOuts(one("5H"), hand, seen); got != 4 {
		t.Errorf("CountMeldOuts(5H): want 4, got %d", got)
	}
	if got := CountMeldOuts(one("KS"), hand, seen); got != 0 {
		t.Errorf("CountMeldOuts(KS): want 0, got %d", got)
	}
	// A gap: 5H with 7H needs 6H.
	gap := cards("5H 7H")
	if got := CountMeldOuts(one("5H"), gap, engine.SetOf(gap...)); got != 1 {
		t.Errorf("CountMeldOuts gap: want 1, got %d", got)
	}
}

// TestScoreDiscardSafety verifies the weighting of opponent discards and seen cards.
func TestScoreDiscardSafety(t *testing.T) {
	got := ScoreDiscardSafety(one("7H"), cards("7C 9H 2S"), engine.SetOf(cards("7C 7D")...))
	want := SafetySameRankDiscarded + SafetyNearSuitDiscarded + 2*SafetySeenSameRank
	if got != want {
		t.Errorf("ScoreDiscardSafety: want %v, got %v", want, got)
	}
	if got := ScoreDiscardSafety(one("KS"), nil, 0); got != 0 {
		t.Errorf("ScoreDiscardSafety with no information: want 0, got %v", got)
	}
}

// TestCountNearMelds verifies pairs and connectors are counted once each.
func TestCountNearMelds(t *testing.T) {
	if got := CountNearMelds(cards("5H 5D 6H KS")); got != 2 {
		t.Errorf("CountNearMelds: want 2, got %d", got)
	}
	if got := CountNearMelds(cards("5H 5D 5C")); got != 0 {
		t.Errorf("three of a kind is not a near meld: got %d", got)
	}
}

// TestHandStrength verifies the bounds and the deadwood baseline.
func TestHandStrength(t *testing.T) {
	if got := HandStrength(cards("AC 2C 3C 4D 4H 4S 8S 9S 10S JS")); got != 1 {
		t.Errorf("gin strength: want 1, got %v", got)
	}
	if got := HandStrength(nil); got != 0 {
		t.Errorf("empty strength: want 0, got %v", got)
	}
	weak := HandStrength(cards("KH QD JC 9S 7D 5C 3H AS 2D 4S"))
	if math.Abs(weak-0.39) > 1e-9 {
		t.Errorf("weak strength: want 0.39, got %v", weak)
	}
	better := HandStrength(cards("KH QD JC 9S 7D 5C 3H AS 2S 4S"))
	if better <= weak {
		t.Errorf("a connector should raise strength: %v <= %v", better, weak)
	}
}
