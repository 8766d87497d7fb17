package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/games"
)

func snapshot(phase entity.Phase, vip bool, mutate ...func(*entity.Snapshot)) *entity.Snapshot {
	snap := &entity.Snapshot{
		Phase: phase,
		Players: []entity.Player{
			{ID: 1, Name: "Alice", IsVIP: true},
			{ID: 2, Name: "Bob"},
		},
		Me:        &entity.Me{ID: 1, IsVIP: entity.Flag(vip)},
		RoundInfo: entity.RoundInfo{Current: 1, Total: 3},
	}
	for _, m := range mutate {
		m(snap)
	}
	return snap
}

func withGame(id string) func(*entity.Snapshot) {
	return func(s *entity.Snapshot) { s.GameContent = &entity.GameContent{ID: id} }
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want View
	}{
		{
			name: "not joined",
			in:   Input{Snapshot: snapshot(entity.PhaseLobby, true)},
			want: View{Kind: ViewJoin},
		},
		{
			name: "joined before first snapshot",
			in:   Input{Joined: true},
			want: View{Kind: ViewLoading},
		},
		{
			name: "snapshot without me",
			in: Input{Joined: true, Snapshot: snapshot(entity.PhaseLobby, false, func(s *entity.Snapshot) {
				s.Me = nil
			})},
			want: View{Kind: ViewJoin},
		},
		{
			name: "lobby vip with two players",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseLobby, true)},
			want: View{Kind: ViewLobby, VIP: true, CanStart: true},
		},
		{
			name: "lobby vip alone",
			in: Input{Joined: true, Snapshot: snapshot(entity.PhaseLobby, true, func(s *entity.Snapshot) {
				s.Players = s.Players[:1]
			})},
			want: View{Kind: ViewLobby, VIP: true},
		},
		{
			name: "lobby player",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseLobby, false)},
			want: View{Kind: ViewLobby},
		},
		{
			name: "reveal",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseReveal, false)},
			want: View{Kind: ViewReveal},
		},
		{
			name: "known game",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseGameRunning, false, withGame("chess-challenges"))},
			want: View{Kind: ViewGame, GameID: "chess-challenges", Game: games.KindChess},
		},
		{
			name: "unknown game falls back to generic",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseGameRunning, false, withGame("ritual"))},
			want: View{Kind: ViewGame, GameID: "ritual", Game: games.KindGeneric},
		},
		{
			name: "manual scoring",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseScoring, true, withGame("risky-business"))},
			want: View{Kind: ViewScoring, VIP: true, GameID: "risky-business", Scoring: games.ScoringManual},
		},
		{
			name: "automated scoring",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseScoring, true, withGame("who-am-i"))},
			want: View{Kind: ViewScoring, VIP: true, GameID: "who-am-i", Scoring: games.ScoringAutomated},
		},
		{
			name: "quiz form",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseQuiz, true)},
			want: View{Kind: ViewQuizForm, VIP: true},
		},
		{
			name: "quiz waiting on others",
			in: Input{Joined: true, Snapshot: snapshot(entity.PhaseQuiz, true, func(s *entity.Snapshot) {
				s.Me.HasFinishedQuiz = true
				s.Players[0].HasFinishedQuiz = true
			})},
			want: View{Kind: ViewQuizWaiting, VIP: true, Finished: 1, Total: 2},
		},
		{
			name: "quiz everyone done on last round",
			in: Input{Joined: true, Snapshot: snapshot(entity.PhaseQuiz, true, func(s *entity.Snapshot) {
				s.Me.HasFinishedQuiz = true
				s.Players[0].HasFinishedQuiz = true
				s.Players[1].HasFinishedQuiz = true
				s.RoundInfo = entity.RoundInfo{Current: 3, Total: 3}
			})},
			want: View{Kind: ViewQuizWaiting, VIP: true, Finished: 2, Total: 2, CanAdvance: true, LastRound: true},
		},
		{
			name: "quiz everyone done, not vip",
			in: Input{Joined: true, Snapshot: snapshot(entity.PhaseQuiz, false, func(s *entity.Snapshot) {
				s.Me.HasFinishedQuiz = true
				s.Players[0].HasFinishedQuiz = true
				s.Players[1].HasFinishedQuiz = true
			})},
			want: View{Kind: ViewQuizWaiting, Finished: 2, Total: 2},
		},
		{
			name: "final reveal",
			in:   Input{Joined: true, Snapshot: snapshot(entity.PhaseFinalReveal, false)},
			want: View{Kind: ViewFinalReveal},
		},
		{
			name: "unknown phase",
			in:   Input{Joined: true, Snapshot: snapshot("INTERMISSION", false)},
			want: View{Kind: ViewLoading},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.in)
			assert.Equal(t, tt.want, got)

			// Then: routing is deterministic
			assert.Equal(t, got, Route(tt.in))
		})
	}
}

func TestAdvanceLabel(t *testing.T) {
	assert.Equal(t, "Go to Final Awards", AdvanceLabel(true))
	assert.Equal(t, "Start Next Game", AdvanceLabel(false))
}
