package tournament

import (
	"fmt"
	"sort"
	"strings"
)

const rule = 70

// FormatRankings renders the rankings table.
func FormatRankings(rankings []*BotStats) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", rule) + "\n")
	b.WriteString("TOURNAMENT RESULTS\n")
	b.WriteString(strings.Repeat("=", rule) + "\n")
	fmt.Fprintf(&b, "%-6s%-20s%5s%5s%5s%8s%7s%7s%6s\n", "Rank", "Bot", "W", "L", "D", "Win%", "Pts", "Avg", "Gins")
	b.WriteString(strings.Repeat("-", rule) + "\n")
	for i, s := range rankings {
		fmt.Fprintf(&b, "%-6d%-20s%5d%5d%5d%7.1f%%%7d%7.1f%6d\n",
			i+1, s.Name, s.Wins, s.Losses, s.Draws, s.WinRate()*100, s.TotalPoints, s.AvgPoints(), s.Gins)
	}
	b.WriteString(strings.Repeat("=", rule))
	return b.String()
}

// FormatHeadToHead renders every bot's record against each opponent, bots in
// ranking order and opponents by name.
func FormatHeadToHead(rankings []*BotStats) string {
	var b strings.Builder
	b.WriteString("\nHEAD-TO-HEAD RECORDS\n")
	b.WriteString(strings.Repeat("-", 50))
	for _, s := range rankings {
		opps := make([]string, 0, len(s.HeadToHead))
		for name := range s.HeadToHead {
			opps = append(opps, name)
		}
		sort.Strings(opps)
		for _, opp := range opps {
			rec := s.HeadToHead[opp]
			fmt.Fprintf(&b, "\n  %s vs %s: %d-%d", s.Name, opp, rec.Wins, rec.Losses)
		}
	}
	return b.String()
}

// FormatElo renders the Elo table.
func FormatElo(e *Elo) string {
	var b strings.Builder
	b.WriteString("\nELO RATINGS\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	fmt.Fprintf(&b, "%-6s%-20s%10s%8s", "Rank", "Bot", "Rating", "Hands")
	for i, r := range e.Table() {
		fmt.Fprintf(&b, "\n%-6d%-20s%10.1f%8d", i+1, r.Name, r.Rating, r.Hands)
	}
	return b.String()
}

// FormatErrors lists every recorded match error, or "" when there are none.
func FormatErrors(matches []*MatchResult) string {
	var b strings.Builder
	for _, m := range matches {
		if len(m.Errors) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n  %s vs %s: %d error(s)", m.Bot0, m.Bot1, len(m.Errors))
		for _, e := range m.Errors {
			fmt.Fprintf(&b, "\n    %s", e)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "\nERRORS" + b.String()
}
