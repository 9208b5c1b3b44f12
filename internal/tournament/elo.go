package tournament

import (
	"math"
	"sort"
)

// Elo defaults.
const (
	DefaultEloStart = 1500.0
	DefaultEloK     = 24.0
)

// Elo tracks ratings for every bot of a tournament. Hands are applied one at
// a time in a fixed order, so the ratings do not depend on scheduling.
type Elo struct {
	K       float64
	Start   float64
	ratings map[string]float64
	hands   map[string]int
}

// NewElo returns a rating table where every bot starts at start.
func NewElo(start, k float64) *Elo {
	return &Elo{K: k, Start: start, ratings: make(map[string]float64), hands: make(map[string]int)}
}

// Rating returns name's current rating.
func (e *Elo) Rating(name string) float64 {
	if r, ok := e.ratings[name]; ok {
		return r
	}
	return e.Start
}

func (e *Elo) expect(a, b string) float64 {
	return 1.0 / (1.0 + math.Pow(10, (e.Rating(b)-e.Rating(a))/400.0))
}

// UpdateHand applies one hand. scoreA is 1 for an a win, 0 for a loss and
// 0.5 for a draw. Larger point swings move ratings further. Returns the
// applied deltas.
func (e *Elo) UpdateHand(a, b string, scoreA float64, points int) (dA, dB float64) {
	ea := e.expect(a, b)
	k := e.K * marginScale(points)
	dA = k * (scoreA - ea)
	dB = k * ((1 - scoreA) - (1 - ea))
	e.ratings[a] = e.Rating(a) + dA
	e.ratings[b] = e.Rating(b) + dB
	e.hands[a]++
	e.hands[b]++
	return dA, dB
}

// marginScale grows from 1 toward 1.35 as the hand's points grow.
func marginScale(points int) float64 {
	return 1.0 + 0.35*math.Tanh(math.Abs(float64(points))/25.0)
}

// Rating is one row of an Elo table.
type Rating struct {
	Name   string
	Rating float64
	Hands  int
}

// Table returns every rated bot, highest first.
func (e *Elo) Table() []Rating {
	out := make([]Rating, 0, len(e.ratings))
	for name, r := range e.ratings {
		out = append(out, Rating{Name: name, Rating: r, Hands: e.hands[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out
}
