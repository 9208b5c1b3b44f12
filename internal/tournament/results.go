package tournament

import (
	"fmt"
	"sort"

	engine "github.com/jason-s-yu/ginrummy/engine"
)

// MatchResult aggregates the hands played between two bots. Index 0 of every
// per-bot array is Bot0 (the first bot of the pairing), whatever seat it sat in.
type MatchResult struct {
	Bot0, Bot1  string
	GamesPlayed int
	Wins        [2]int
	Draws       int
	Points      [2]int
	Gins        [2]int
	Undercuts   [2]int // times the bot undercut a knocker
	Forfeits    [2]int // hands the bot lost by faulting
	Errors      []string
}

func newMatchResult(bot0, bot1 string) *MatchResult {
	return &MatchResult{Bot0: bot0, Bot1: bot1}
}

// RecordHand folds one finished hand into the match. bot0Seat is the seat
// Bot0 occupied in that hand.
func (m *MatchResult) RecordHand(game int, res engine.GameResult, bot0Seat uint8) {
	m.GamesPlayed++
	if res.IsDraw() {
		m.Draws++
		return
	}
	winner := 0
	if uint8(res.Winner) != bot0Seat {
		winner = 1
	}
	m.Wins[winner]++
	m.Points[winner] += res.Points

	switch res.Reason {
	case engine.ReasonGin:
		m.Gins[winner]++
	case engine.ReasonUndercut:
		m.Undercuts[winner]++
	case engine.ReasonForfeit:
		loser := 1 - winner
		m.Forfeits[loser]++
		m.RecordError(fmt.Sprintf("game %d: %s forfeited: %v", game, m.name(loser), res.Fault))
	}
}

// RecordError notes a problem that is not part of the score.
func (m *MatchResult) RecordError(msg string) { m.Errors = append(m.Errors, msg) }

// WinRate is wins over decided hands for bot i (0 or 1).
func (m *MatchResult) WinRate(i int) float64 {
	decided := m.Wins[0] + m.Wins[1]
	if decided == 0 {
		return 0
	}
	return float64(m.Wins[i]) / float64(decided)
}

func (m *MatchResult) name(i int) string {
	if i == 0 {
		return m.Bot0
	}
	return m.Bot1
}

func (m *MatchResult) String() string {
	return fmt.Sprintf("%s vs %s: %d-%d-%d", m.Bot0, m.Bot1, m.Wins[0], m.Wins[1], m.Draws)
}

// Record is a win-loss count against one opponent.
type Record struct {
	Wins, Losses int
}

// BotStats aggregates one bot's results across a tournament.
type BotStats struct {
	Name        string
	GamesPlayed int
	Wins        int
	Losses      int
	Draws       int
	TotalPoints int
	Gins        int
	Undercuts   int
	Errors      int
	HeadToHead  map[string]Record
}

func newBotStats(name string) *BotStats {
	return &BotStats{Name: name, HeadToHead: make(map[string]Record)}
}

// WinRate is wins over decided hands; draws do not count.
func (s *BotStats) WinRate() float64 {
	decided := s.Wins + s.Losses
	if decided == 0 {
		return 0
	}
	return float64(s.Wins) / float64(decided)
}

// AvgPoints is total points per hand played.
func (s *BotStats) AvgPoints() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPoints) / float64(s.GamesPlayed)
}

// recordMatch adds m from the point of view of side (0 for Bot0, 1 for Bot1).
func (s *BotStats) recordMatch(m *MatchResult, side int) {
	opp := 1 - side
	s.Wins += m.Wins[side]
	s.Losses += m.Wins[opp]
	s.Draws += m.Draws
	s.GamesPlayed += m.GamesPlayed
	s.TotalPoints += m.Points[side]
	s.Gins += m.Gins[side]
	s.Undercuts += m.Undercuts[side]
	s.Errors += m.Forfeits[side]

	rec := s.HeadToHead[m.name(opp)]
	rec.Wins += m.Wins[side]
	rec.Losses += m.Wins[opp]
	s.HeadToHead[m.name(opp)] = rec
}

// Rank sorts stats by win rate, then total points, both descending. Equal
// bots keep name order so reports are stable.
func Rank(stats []*BotStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.WinRate() != b.WinRate() {
			return a.WinRate() > b.WinRate()
		}
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.Name < b.Name
	})
}
