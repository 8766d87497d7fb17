package reveal

import (
	"cmp"
	"slices"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

// Rank orders players by descending score. Ties keep join order.
func Rank(players []entity.Player) []entity.Player {
	ranked := slices.Clone(players)
	slices.SortStableFunc(ranked, func(a, b entity.Player) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

// Medal returns the podium marker for a zero-based rank.
func Medal(rank int) string {
	switch rank {
	case 0:
		return "[1st]"
	case 1:
		return "[2nd]"
	case 2:
		return "[3rd]"
	}
	return ""
}

// Mole returns the player flagged as mole, if the server disclosed one.
func Mole(players []entity.Player) (entity.Player, bool) {
	for _, p := range players {
		if p.IsMole {
			return p, true
		}
	}
	return entity.Player{}, false
}

// StartRound is the synthetic origin every series starts from.
const StartRound = -1.0

type Point struct {
	Round float64
	Score int
}

type Series struct {
	Player entity.Player
	Points []Point
}

// Rounds returns the distinct sampled rounds in ascending order, prefixed with StartRound.
func Rounds(history []entity.HistoryEntry) []float64 {
	rounds := []float64{StartRound}
	for _, h := range history {
		if !slices.Contains(rounds, h.RoundIdx) {
			rounds = append(rounds, h.RoundIdx)
		}
	}
	slices.Sort(rounds)
	return rounds
}

// Progression builds one series per player, in player order, each starting at (StartRound, 0).
func Progression(history []entity.HistoryEntry, players []entity.Player) []Series {
	out := make([]Series, 0, len(players))
	for _, p := range players {
		points := []Point{{Round: StartRound}}
		for _, h := range history {
			if h.PlayerID == p.ID {
				points = append(points, Point{Round: h.RoundIdx, Score: h.Score})
			}
		}
		slices.SortStableFunc(points, func(a, b Point) int {
			return cmp.Compare(a.Round, b.Round)
		})
		out = append(out, Series{Player: p, Points: points})
	}
	return out
}
