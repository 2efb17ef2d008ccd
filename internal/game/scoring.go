package game

import (
	"math"
	"sort"
)

const (
	// maxErrorPct caps how wrong a guess can count as: 150% off (or no guess
	// at all) is the floor of the accuracy scale.
	maxErrorPct = 1.5
	baseMax     = 1000
)

// placementBonuses are awarded to the three most accurate tiers of a round.
var placementBonuses = [...]int{150, 80, 40}

// GuessEntry is one player's input to a round computation. PrevTotal is the
// cumulative score before this round; passing it in keeps ScoreRound pure.
type GuessEntry struct {
	SessionID string
	Name      string
	Guess     float64
	HasGuess  bool
	PrevTotal int
}

// RoundResultEntry is the computed outcome for one player in one round.
type RoundResultEntry struct {
	PlayerID   string   `json:"playerId"`
	Name       string   `json:"name"`
	Guess      *float64 `json:"guess"`
	RealPrice  float64  `json:"realPrice"`
	ErrorPct   float64  `json:"errorPercentage"`
	BaseScore  int      `json:"baseScore"`
	Bonus      int      `json:"placementBonus"`
	RoundScore int      `json:"roundScore"`
	TotalScore int      `json:"totalScore"`
}

// RoundResult is the snapshot stored on the lobby after each round.
type RoundResult struct {
	Round       int                `json:"roundIndex"`
	Product     Product            `json:"product"`
	RealPrice   float64            `json:"realPrice"`
	Entries     []RoundResultEntry `json:"results"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardEntry ranks players by cumulative score.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// ScoreRound computes accuracy scores and placement bonuses for one round.
//
// A guess at the real price scores 1000; error percentage is capped at 150%,
// and the base score is clamped to zero for anything past 100% error. Placement
// uses dense ranking: players tied on error percentage share a tier and the
// next distinct error takes the next tier, so two players tied for best both
// get the first-place bonus and the runner-up still gets the second-place one.
// Players who never guessed earn no bonus.
//
// The returned slice is ordered by round score descending, then total score
// descending. That is a display order; bonus assignment follows error order.
func ScoreRound(entries []GuessEntry, realPrice float64) []RoundResultEntry {
	results := make([]RoundResultEntry, len(entries))
	for i, e := range entries {
		r := RoundResultEntry{
			PlayerID:  e.SessionID,
			Name:      e.Name,
			RealPrice: realPrice,
			ErrorPct:  maxErrorPct,
		}
		if e.HasGuess && e.Guess > 0 {
			g := e.Guess
			r.Guess = &g
			r.ErrorPct = math.Min(math.Abs(g-realPrice)/realPrice, maxErrorPct)
			r.BaseScore = int(math.Round((1 - r.ErrorPct) * baseMax))
			if r.BaseScore < 0 {
				r.BaseScore = 0
			}
		}
		results[i] = r
	}

	// Placement by ascending error, dense tiers for ties.
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].ErrorPct < results[order[b]].ErrorPct
	})
	tier := -1
	lastErr := math.Inf(1)
	for _, idx := range order {
		if results[idx].Guess == nil {
			continue
		}
		if results[idx].ErrorPct != lastErr {
			tier++
			lastErr = results[idx].ErrorPct
		}
		if tier < len(placementBonuses) {
			results[idx].Bonus = placementBonuses[tier]
		}
	}

	for i := range results {
		results[i].RoundScore = results[i].BaseScore + results[i].Bonus
		results[i].TotalScore = entries[i].PrevTotal + results[i].RoundScore
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].RoundScore != results[b].RoundScore {
			return results[a].RoundScore > results[b].RoundScore
		}
		return results[a].TotalScore > results[b].TotalScore
	})
	return results
}

// Leaderboard orders players by cumulative score descending.
func Leaderboard(players []*Player) []LeaderboardEntry {
	board := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		board = append(board, LeaderboardEntry{
			PlayerID: p.SessionID,
			Name:     p.Name,
			Score:    p.Score,
		})
	}
	sort.SliceStable(board, func(a, b int) bool {
		return board[a].Score > board[b].Score
	})
	return board
}
