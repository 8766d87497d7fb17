package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/games"
	"github.com/rocketscienceinc/whoisthemole/internal/reveal"
	"github.com/rocketscienceinc/whoisthemole/internal/router"
)

const howToPlay = `The game consists of several Games. In each game you work together to earn points,
while also trying to complete your own secret tasks.

  Group Tasks     earn points for the Team Pot, shared by the team players.
  Mole Sabotage   any points missed by the group go to the Mole's personal score.
  Hidden Tasks    secret objectives that earn you personal points, mole included.

After every game there is a quiz about the Mole. The best detective wins.`

func (that *Model) View() string {
	var b strings.Builder

	snap := that.state.View()
	route := that.route()

	b.WriteString("=== WHO IS THE MOLE ===")
	if identity, ok := that.state.Identity(); ok {
		fmt.Fprintf(&b, "  %s", identity.Name)
		if route.VIP {
			b.WriteString(" (VIP)")
		}
	}
	b.WriteString("\n\n")

	if that.notice != "" {
		fmt.Fprintf(&b, "! %s  [x] dismiss\n\n", that.notice)
	}
	if that.status != "" {
		fmt.Fprintf(&b, "(%s)\n\n", that.status)
	}

	switch route.Kind {
	case router.ViewJoin:
		that.viewJoin(&b)
	case router.ViewLoading:
		b.WriteString("Connecting...\n")
	case router.ViewLobby:
		viewLobby(&b, snap, route)
	case router.ViewReveal:
		viewReveal(&b, snap, route)
	case router.ViewExplanation:
		that.viewExplanation(&b, snap, route)
	case router.ViewGame:
		that.viewGame(&b, route)
	case router.ViewScoring:
		that.viewScoring(&b, snap, route)
	case router.ViewQuizIntro:
		b.WriteString("Time for the quiz! Answer questions about the Mole.\n")
		if route.VIP {
			b.WriteString("\n[q] Start Quiz\n")
		}
	case router.ViewQuizForm:
		that.viewQuizForm(&b, snap)
	case router.ViewQuizWaiting:
		viewQuizWaiting(&b, route)
	case router.ViewFinalReveal:
		that.viewFinalReveal(&b, snap, route)
	}

	b.WriteString("\n[ctrl+c] quit\n")
	return b.String()
}

func (that *Model) viewJoin(b *strings.Builder) {
	b.WriteString(howToPlay + "\n\n")
	b.WriteString("Enter your name:\n")
	b.WriteString(that.nameInput.View() + "\n\n[enter] Join Game\n")
}

func viewLobby(b *strings.Builder, snap *entity.Snapshot, route router.View) {
	fmt.Fprintf(b, "Lobby (%d players)\n", len(snap.Players))
	for _, p := range snap.Players {
		tag := ""
		if p.IsVIP {
			tag = " (VIP)"
		}
		fmt.Fprintf(b, "  - %s%s\n", p.Name, tag)
	}
	b.WriteString("\n")
	switch {
	case route.CanStart:
		b.WriteString("[s] Start Game\n")
	case route.VIP:
		fmt.Fprintf(b, "Waiting for at least %d players...\n", router.MinPlayers)
	default:
		b.WriteString("Waiting for the VIP to start...\n")
	}
}

func viewReveal(b *strings.Builder, snap *entity.Snapshot, route router.View) {
	if snap.Me.IsMole {
		b.WriteString("You are the MOLE.\nSabotage the group without getting caught.\n")
	} else {
		b.WriteString("You are a TEAM PLAYER.\nWork together and find the Mole.\n")
	}
	if route.VIP {
		b.WriteString("\n[n] Explain First Round\n")
	}
}

func (that *Model) viewExplanation(b *strings.Builder, snap *entity.Snapshot, route router.View) {
	fmt.Fprintf(b, "ROUND %d OF %d\n", snap.RoundInfo.Current, snap.RoundInfo.Total)
	if c := snap.GameContent; c != nil {
		fmt.Fprintf(b, "%s\n%s\n\n", c.Title, c.Description)
		fmt.Fprintf(b, "Duration: %d min   Max points: %s\n", c.Duration/60, c.MaxPoints)
		if c.TeamDistribution != "" {
			fmt.Fprintf(b, "Teams: %s\n", c.TeamDistribution)
		}
	}

	b.WriteString("\n[i] Secret intel\n")
	if that.showIntel {
		if role := games.RoleText(snap.GameSpecific); role != "" {
			b.WriteString("    " + role + "\n")
		}
		if snap.SecretInfo != "" {
			b.WriteString("    " + snap.SecretInfo + "\n")
		}
	}
	if snap.QuizHint != nil {
		b.WriteString("[h] Quiz hint\n")
		if that.showHint {
			b.WriteString("    " + snap.QuizHint.Text + "\n")
			for _, o := range snap.QuizHint.Options {
				b.WriteString("      - " + o + "\n")
			}
		}
	}

	if route.VIP {
		b.WriteString("\n[t] Start Timer\n")
	}
}

func (that *Model) viewGame(b *strings.Builder, route router.View) {
	if that.adapter != nil {
		b.WriteString(that.adapter.View(that.clock))
	}
	if route.VIP {
		fmt.Fprintf(b, "\n[e] %s\n", games.EndRoundLabel(route.Game, that.clock))
	}
}

func (that *Model) viewScoring(b *strings.Builder, snap *entity.Snapshot, route router.View) {
	title := route.GameID
	if snap.GameContent != nil {
		title = snap.GameContent.Title
	}
	fmt.Fprintf(b, "Scoring: %s\n\n", title)

	if !route.VIP {
		b.WriteString("The VIP is counting the points...\n")
		return
	}

	maxPoints := snap.MaxPoints
	if maxPoints == "" && snap.GameContent != nil {
		maxPoints = snap.GameContent.MaxPoints
	}
	for _, line := range games.ScoringInstructions(route.GameID, string(maxPoints)) {
		b.WriteString(line + "\n")
	}

	if route.Scoring == games.ScoringManual {
		b.WriteString("\n" + that.scoreInput.View() + "\n[enter] Submit Score\n")
		return
	}
	b.WriteString("\n[enter] Calculate & Continue\n")
}

func (that *Model) viewQuizForm(b *strings.Builder, snap *entity.Snapshot) {
	answers := that.state.Answers()

	b.WriteString("QUIZ\n\n")
	for i, q := range snap.Questions() {
		marker := "  "
		if i == that.quizCursor {
			marker = "> "
		}
		fmt.Fprintf(b, "%s%d. %s\n", marker, i+1, q.Text)
		for j, o := range q.Options {
			sel := " "
			if answers[q.ID] == o {
				sel = "*"
			}
			fmt.Fprintf(b, "     (%s) %d %s\n", sel, j+1, o)
		}
	}
	b.WriteString("\n[up/down] question  [left/right or 1-9] answer  [enter] Submit Answers\n")
}

func viewQuizWaiting(b *strings.Builder, route router.View) {
	b.WriteString("Answers submitted.\n")
	fmt.Fprintf(b, "%d / %d players finished\n", route.Finished, route.Total)
	if route.CanAdvance {
		fmt.Fprintf(b, "\n[a] %s\n", router.AdvanceLabel(route.LastRound))
	}
}

func (that *Model) viewFinalReveal(b *strings.Builder, snap *entity.Snapshot, route router.View) {
	seq := that.state.Reveal()

	b.WriteString("FINAL RANKINGS\n")
	for i, p := range reveal.Rank(snap.Players) {
		fmt.Fprintf(b, "  %-5s %-16s %d\n", reveal.Medal(i), p.Name, p.Score)
	}
	b.WriteString("\n")

	switch seq.Step() {
	case reveal.StepRankings:
		b.WriteString("[n] Continue\n")
		return
	case reveal.StepMoleTeaser:
		b.WriteString("One of you has been lying all along...\n\n[space] Tap to reveal the Mole\n")
		return
	}

	mole := "nobody"
	if p, ok := reveal.Mole(snap.Players); ok {
		mole = p.Name
	}
	fmt.Fprintf(b, "The Mole was: %s\n\n", strings.ToUpper(mole))

	if seq.Step() == reveal.StepMoleIdentity {
		b.WriteString("[n] Show score history\n")
		return
	}

	viewHistory(b, snap)

	if seq.CanReset(route.VIP) {
		if that.confirmReset {
			b.WriteString("\nAre you sure? This will delete all data. [y/N]\n")
		} else {
			b.WriteString("\n[R] Reset Session\n")
		}
	}
}

func viewHistory(b *strings.Builder, snap *entity.Snapshot) {
	rounds := reveal.Rounds(snap.History)

	b.WriteString("SCORE HISTORY\n")
	fmt.Fprintf(b, "  %-16s", "round")
	for _, r := range rounds {
		fmt.Fprintf(b, "%7s", strconv.FormatFloat(r, 'f', -1, 64))
	}
	b.WriteString("\n")

	for _, series := range reveal.Progression(snap.History, snap.Players) {
		byRound := make(map[float64]int, len(series.Points))
		for _, p := range series.Points {
			byRound[p.Round] = p.Score
		}
		fmt.Fprintf(b, "  %-16s", series.Player.Name)
		for _, r := range rounds {
			if score, ok := byRound[r]; ok {
				fmt.Fprintf(b, "%7d", score)
			} else {
				fmt.Fprintf(b, "%7s", "-")
			}
		}
		b.WriteString("\n")
	}
}
