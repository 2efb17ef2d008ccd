package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, guess float64, prev int) GuessEntry {
	return GuessEntry{SessionID: id, Name: id, Guess: guess, HasGuess: true, PrevTotal: prev}
}

func findResult(t *testing.T, results []RoundResultEntry, id string) RoundResultEntry {
	t.Helper()
	for _, r := range results {
		if r.PlayerID == id {
			return r
		}
	}
	t.Fatalf("no result for player %s", id)
	return RoundResultEntry{}
}

func TestScoreRoundExactGuess(t *testing.T) {
	results := ScoreRound([]GuessEntry{entry("a", 100, 0)}, 100)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].ErrorPct)
	assert.Equal(t, 1000, results[0].BaseScore)
}

func TestScoreRoundCappedError(t *testing.T) {
	cases := []struct {
		name  string
		guess float64
	}{
		{"at the cap", 250},      // 150% over
		{"far beyond cap", 9000}, // error clamps to 150%
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results := ScoreRound([]GuessEntry{entry("a", tc.guess, 0)}, 100)
			assert.Equal(t, 1.5, results[0].ErrorPct)
			assert.Equal(t, 0, results[0].BaseScore, "base score must clamp to zero, not go negative")
		})
	}
}

func TestScoreRoundNoGuess(t *testing.T) {
	results := ScoreRound([]GuessEntry{{SessionID: "a", Name: "a"}}, 100)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Guess)
	assert.Equal(t, 1.5, results[0].ErrorPct)
	assert.Equal(t, 0, results[0].BaseScore)
	assert.Equal(t, 0, results[0].Bonus, "no guess, no placement bonus")
}

func TestScoreRoundMonotonicity(t *testing.T) {
	// Closer guesses never score a lower base than farther ones.
	guesses := []float64{100, 101, 110, 150, 199, 250, 400}
	prev := 1001
	for _, g := range guesses {
		results := ScoreRound([]GuessEntry{entry("a", g, 0)}, 100)
		base := results[0].BaseScore
		assert.LessOrEqual(t, base, prev, "guess %v", g)
		prev = base
	}
}

func TestScoreRoundPlacementBonuses(t *testing.T) {
	results := ScoreRound([]GuessEntry{
		entry("first", 100, 0),  // 0% error
		entry("second", 110, 0), // 10% error
		entry("third", 130, 0),  // 30% error
		entry("fourth", 160, 0), // 60% error
	}, 100)

	assert.Equal(t, 150, findResult(t, results, "first").Bonus)
	assert.Equal(t, 80, findResult(t, results, "second").Bonus)
	assert.Equal(t, 40, findResult(t, results, "third").Bonus)
	assert.Equal(t, 0, findResult(t, results, "fourth").Bonus)
}

func TestScoreRoundTiedBestSharesFirstTier(t *testing.T) {
	// Dense ranking: both best guesses take the 1st-place bonus and the next
	// distinct error still gets the 2nd-place bonus, not the 3rd.
	results := ScoreRound([]GuessEntry{
		entry("tie1", 90, 0),  // 10% error
		entry("tie2", 110, 0), // 10% error
		entry("next", 120, 0), // 20% error
		entry("last", 140, 0), // 40% error
	}, 100)

	assert.Equal(t, 150, findResult(t, results, "tie1").Bonus)
	assert.Equal(t, 150, findResult(t, results, "tie2").Bonus)
	assert.Equal(t, 80, findResult(t, results, "next").Bonus)
	assert.Equal(t, 40, findResult(t, results, "last").Bonus)
}

func TestScoreRoundTripleTieBeyondTopThree(t *testing.T) {
	results := ScoreRound([]GuessEntry{
		entry("a", 100, 0), // tier 1
		entry("b", 100, 0), // tier 1
		entry("c", 100, 0), // tier 1
		entry("d", 110, 0), // tier 2
		entry("e", 120, 0), // tier 3
		entry("f", 130, 0), // tier 4: no bonus
	}, 100)

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 150, findResult(t, results, id).Bonus, id)
	}
	assert.Equal(t, 80, findResult(t, results, "d").Bonus)
	assert.Equal(t, 40, findResult(t, results, "e").Bonus)
	assert.Equal(t, 0, findResult(t, results, "f").Bonus)
}

func TestScoreRoundTotalsAndOrdering(t *testing.T) {
	results := ScoreRound([]GuessEntry{
		entry("behind", 100, 50), // wins the round
		entry("ahead", 200, 500), // loses the round but leads overall
	}, 100)

	behind := findResult(t, results, "behind")
	assert.Equal(t, 1000+150, behind.RoundScore)
	assert.Equal(t, 50+1000+150, behind.TotalScore)

	// Display order follows round score, not total score.
	assert.Equal(t, "behind", results[0].PlayerID)
	assert.Equal(t, "ahead", results[1].PlayerID)
}

func TestLeaderboardSortsByTotal(t *testing.T) {
	board := Leaderboard([]*Player{
		{SessionID: "a", Name: "a", Score: 10},
		{SessionID: "b", Name: "b", Score: 300},
		{SessionID: "c", Name: "c", Score: 200},
	})
	require.Len(t, board, 3)
	assert.Equal(t, "b", board[0].PlayerID)
	assert.Equal(t, "c", board[1].PlayerID)
	assert.Equal(t, "a", board[2].PlayerID)
}
