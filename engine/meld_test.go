package engine

import (
	"math/rand"
	"testing"
)

// TestIsValidSet verifies set rules.
func TestIsValidSet(t *testing.T) {
	tests := []struct {
		hand string
		want bool
	}{
		{"7C 7D 7H", true},
		{"7C 7D 7H 7S", true},
		{"7C 7D", false},
		{"7C 7D 8H", false},
		{"7C 7C 7H", false},
	}
	for _, tt := range tests {
		if got := IsValidSet(MustParseCards(tt.hand)); got != tt.want {
			t.Errorf("IsValidSet(%s): want %v, got %v", tt.hand, tt.want, got)
		}
	}
}

// TestIsValidRun verifies run rules, including low aces and no wrapping.
func TestIsValidRun(t *testing.T) {
	tests := []struct {
		hand string
		want bool
	}{
		{"AS 2S 3S", true},
		{"9H JH 10H", true},
		{"5D 6D 7D 8D 9D", true},
		{"QC KC AC", false},
		{"5D 6D", false},
		{"5D 6D 8D", false},
		{"5D 6H 7D", false},
		{"5D 5D 6D", false},
	}
	for _, tt := range tests {
		if got := IsValidRun(MustParseCards(tt.hand)); got != tt.want {
			t.Errorf("IsValidRun(%s): want %v, got %v", tt.hand, tt.want, got)
		}
	}
}

// TestCandidateMelds verifies enumeration counts for overlapping sets and runs.
func TestCandidateMelds(t *testing.T) {
	// Four sevens: four 3-subsets and one 4-set. Hearts 6-9: three windows of
	// length 3 or 4 ({6,7,8}, {7,8,9}, {6,7,8,9}).
	hand := MustParseCards("7C 7D 7H 7S 6H 8H 9H")
	got := CandidateMelds(hand)
	var sets, runs int
	for _, m := range got {
		if !IsValidMeld(m.Cards) {
			t.Errorf("candidate %v is not a valid meld", m)
		}
		if m.Kind == MeldSet {
			sets++
		} else {
			runs++
		}
	}
	if sets != 5 || runs != 3 {
		t.Errorf("CandidateMelds: want 5 sets and 3 runs, got %d and %d", sets, runs)
	}
}

// TestBestMelds verifies minimum deadwood on hand-picked hands.
func TestBestMelds(t *testing.T) {
	tests := []struct {
		name string
		hand string
		want int
	}{
		{"gin sets and runs", "AC 2C 3C 4D 4H 4S 8S 9S 10S JS", 0},
		{"no melds", "AC 3D 5H 7S 9C JD KH 2S 4C 6D", 57},
		{"overlap prefers run", "7C 7D 7H 8H 9H KS QD", 34},
		{"greedy set trap", "7C 7D 7H 7S 8H 9H 2C 3D 4H 5S", 14},
		{"eleven card gin", "AC 2C 3C 4C 5D 5H 5S 9H 10H JH QH", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := MustParseCards(tt.hand)
			melds, rest := BestMelds(hand)
			if got := DeadwoodValue(rest); got != tt.want {
				t.Errorf("BestMelds deadwood: want %d, got %d (melds %v rest %v)", tt.want, got, melds, rest)
			}
			if got := Deadwood(hand); got != tt.want {
				t.Errorf("Deadwood: want %d, got %d", tt.want, got)
			}
			var covered CardSet
			for _, m := range melds {
				if !IsValidMeld(m.Cards) {
					t.Errorf("returned invalid meld %v", m)
				}
				if covered&m.Set() != 0 {
					t.Errorf("meld %v overlaps another meld", m)
				}
				covered |= m.Set()
			}
			if covered|SetOf(rest...) != SetOf(hand...) || covered&SetOf(rest...) != 0 {
				t.Errorf("melds and leftovers do not partition the hand")
			}
		})
	}
}

// TestBestMeldsGreedyTrap verifies the exact search beats the obvious greedy choice:
// taking the four sevens strands 8H 9H, splitting them melds everything.
func TestBestMeldsGreedyTrap(t *testing.T) {
	hand := MustParseCards("7C 7D 7H 7S 8H 9H")
	if d := Deadwood(hand); d != 0 {
		t.Fatalf("Deadwood: want 0, got %d", d)
	}
	melds, _ := BestMelds(hand)
	if len(melds) != 2 {
		t.Fatalf("want a set and a run, got %v", melds)
	}
}

// TestUnmeldedKeepsHandOrder verifies leftovers come back in the caller's order.
func TestUnmeldedKeepsHandOrder(t *testing.T) {
	hand := MustParseCards("KS AC 2C 3C 5D QH")
	got := Unmelded(hand)
	want := MustParseCards("KS 5D QH")
	if len(got) != len(want) {
		t.Fatalf("Unmelded: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Unmelded: want %v, got %v", want, got)
		}
	}
}

// TestDeadwoodProperties verifies deadwood bounds and the gin equivalence on random hands.
func TestDeadwoodProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 500; i++ {
		d := NewShuffledDeck(uint64(rng.Int63()))
		n := 10 + rng.Intn(2)
		hand, _ := d.Deal(n)
		dw := Deadwood(hand)
		if dw < 0 || dw > DeadwoodValue(hand) {
			t.Fatalf("hand %v: deadwood %d out of range", hand, dw)
		}
		if IsGin(hand) != (dw == 0) {
			t.Fatalf("hand %v: IsGin disagrees with deadwood %d", hand, dw)
		}
		if CanKnock(hand, 10) != (dw <= 10) {
			t.Fatalf("hand %v: CanKnock disagrees with deadwood %d", hand, dw)
		}
		_, rest := BestMelds(hand)
		if DeadwoodValue(rest) != dw {
			t.Fatalf("hand %v: BestMelds leftovers %d != Deadwood %d", hand, DeadwoodValue(rest), dw)
		}
	}
}

// BenchmarkDeadwood measures the meld search on random 11-card hands.
func BenchmarkDeadwood(b *testing.B) {
	hands := make([][]Card, 64)
	for i := range hands {
		d := NewShuffledDeck(uint64(i))
		hands[i], _ = d.Deal(11)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Deadwood(hands[i%len(hands)])
	}
}
