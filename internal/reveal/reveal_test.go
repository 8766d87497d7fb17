package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

func TestSequencer_Order(t *testing.T) {
	// Given: a fresh sequencer
	var seq Sequencer
	require.Equal(t, StepRankings, seq.Step())

	// Then: the identity cannot be revealed before the teaser
	require.ErrorIs(t, seq.TapToReveal(), apperror.ErrOutOfOrder)

	// When: rankings -> teaser
	require.NoError(t, seq.Next())
	assert.Equal(t, StepMoleTeaser, seq.Step())

	// Then: Next cannot skip the tap-to-reveal control
	require.ErrorIs(t, seq.Next(), apperror.ErrOutOfOrder)
	assert.False(t, seq.ShowsMole())

	// When: teaser -> identity -> history
	require.NoError(t, seq.TapToReveal())
	assert.True(t, seq.ShowsMole())
	require.NoError(t, seq.Next())
	assert.Equal(t, StepHistory, seq.Step())

	// Then: the cursor stops at the last step
	require.ErrorIs(t, seq.Next(), apperror.ErrOutOfOrder)
	require.ErrorIs(t, seq.TapToReveal(), apperror.ErrOutOfOrder)
}

func TestSequencer_CanReset(t *testing.T) {
	var seq Sequencer

	for seq.Step() < StepHistory {
		assert.False(t, seq.CanReset(true), "step %s", seq.Step())
		if seq.Step() == StepMoleTeaser {
			require.NoError(t, seq.TapToReveal())
		} else {
			require.NoError(t, seq.Next())
		}
	}

	assert.True(t, seq.CanReset(true))
	assert.False(t, seq.CanReset(false))
}

func TestRank_StableOnTies(t *testing.T) {
	// Given: A, B, C joined in that order
	players := []entity.Player{
		{ID: 1, Name: "A", Score: 30},
		{ID: 2, Name: "B", Score: 50},
		{ID: 3, Name: "C", Score: 50},
	}

	// When: they are ranked
	ranked := Rank(players)

	// Then: B and C tie but keep join order, and the input is untouched
	names := []string{ranked[0].Name, ranked[1].Name, ranked[2].Name}
	assert.Equal(t, []string{"B", "C", "A"}, names)
	assert.Equal(t, "A", players[0].Name)
	assert.Equal(t, "[1st]", Medal(0))
	assert.Empty(t, Medal(3))
}

func TestMole(t *testing.T) {
	_, ok := Mole([]entity.Player{{ID: 1}})
	assert.False(t, ok)

	mole, ok := Mole([]entity.Player{{ID: 1}, {ID: 2, Name: "Lars", IsMole: true}})
	require.True(t, ok)
	assert.Equal(t, "Lars", mole.Name)
}

func TestProgression(t *testing.T) {
	// Given: samples recorded out of order, with fractional rounds
	players := []entity.Player{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	history := []entity.HistoryEntry{
		{PlayerID: 1, RoundIdx: 1, Score: 80},
		{PlayerID: 1, RoundIdx: 0.5, Score: 30},
		{PlayerID: 2, RoundIdx: 0.5, Score: 10},
	}

	// When: the progression is built
	series := Progression(history, players)

	// Then: every series starts at the origin and is sorted by round
	require.Len(t, series, 2)
	assert.Equal(t, []Point{{Round: -1}, {Round: 0.5, Score: 30}, {Round: 1, Score: 80}}, series[0].Points)
	assert.Equal(t, []Point{{Round: -1}, {Round: 0.5, Score: 10}}, series[1].Points)
	assert.Equal(t, []float64{-1, 0.5, 1}, Rounds(history))
}
