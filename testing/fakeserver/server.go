// Package fakeserver is an in-process stand-in for the authoritative game server. It keeps the
// whole session in memory and follows the same phase rules, which is enough for client tests.
package fakeserver

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

var defaultGames = []entity.GameContent{
	{ID: "who-am-i", Title: "Who Am I?", Description: "Find out which character you are.", Duration: 600, MaxPoints: "1000"},
	{ID: "chess-challenges", Title: "Chess Challenges", Description: "Play chess while completing challenges.", Duration: 900, MaxPoints: "1200"},
	{ID: "risky-business", Title: "Risky Business", Description: "Conquer the board.", Duration: 1200, MaxPoints: "Variable"},
}

var characters = []string{"cleopatra", "napoleon", "einstein", "madonna", "gandhi", "elvis"}

type player struct {
	entity.Player

	character string
	questions int
	strikes   int
	solved    bool
	points    int
	tasks     []bool
}

type Option func(*Server)

func WithGames(games ...entity.GameContent) Option {
	return func(s *Server) { s.games = games }
}

func WithSeed(seed uint64) Option {
	return func(s *Server) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

type Server struct {
	mu sync.Mutex

	games []entity.GameContent
	rng   *rand.Rand
	now   func() time.Time

	phase    entity.Phase
	players  []*player
	nextID   int64
	round    int
	timerEnd float64
	history  []entity.HistoryEntry
	answers  map[int64]map[string]string

	failures   map[string]int
	idempotent map[string]entity.ActionResult
	requestIDs []string
}

func New(opts ...Option) *Server {
	s := &Server{
		games: defaultGames,
		rng:   rand.New(rand.NewPCG(1, 2)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (that *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(that.track)

	r.Post("/join", that.join)
	r.Get("/state", that.state)
	r.Post("/control", that.control)
	r.Post("/game_action", that.gameAction)
	r.Post("/submit_quiz", that.submitQuiz)
	r.Post("/reset", func(w http.ResponseWriter, _ *http.Request) {
		that.mu.Lock()
		that.reset()
		that.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Game reset"})
	})

	return r
}

// FailNext makes the next request to path answer with code.
func (that *Server) FailNext(path string, code int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.failures[path] = code
}

// RequestIDs returns the X-Request-ID headers seen so far.
func (that *Server) RequestIDs() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.requestIDs...)
}

// Phase returns the current phase.
func (that *Server) Phase() entity.Phase {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.phase
}

// SetScore overrides a player's score, for ranking scenarios.
func (that *Server) SetScore(playerID int64, score int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if p := that.find(playerID); p != nil {
		p.Score = score
	}
}

func (that *Server) reset() {
	that.phase = entity.PhaseLobby
	that.players = nil
	that.nextID = 1
	that.round = 0
	that.timerEnd = 0
	that.history = nil
	that.answers = make(map[int64]map[string]string)
	that.failures = make(map[string]int)
	that.idempotent = make(map[string]entity.ActionResult)
}

func (that *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.mu.Lock()
		if id := r.Header.Get("X-Request-ID"); id != "" {
			that.requestIDs = append(that.requestIDs, id)
		}
		code, fail := that.failures[r.URL.Path]
		delete(that.failures, r.URL.Path)
		that.mu.Unlock()

		if fail {
			http.Error(w, "injected failure", code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (that *Server) join(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusUnprocessableEntity)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, p := range that.players {
		if p.Name == name {
			writeJSON(w, http.StatusOK, map[string]int64{"player_id": p.ID})
			return
		}
	}
	if that.phase == entity.PhaseFinalReveal {
		http.Error(w, "session already concluded", http.StatusConflict)
		return
	}

	p := &player{
		Player:    entity.Player{ID: that.nextID, Name: name, IsVIP: len(that.players) == 0},
		character: characters[len(that.players)%len(characters)],
		tasks:     make([]bool, 2),
	}
	that.nextID++
	that.players = append(that.players, p)

	writeJSON(w, http.StatusOK, map[string]int64{"player_id": p.ID})
}

func (that *Server) state(w http.ResponseWriter, r *http.Request) {
	that.mu.Lock()
	defer that.mu.Unlock()

	snap := entity.Snapshot{
		Phase:     that.phase,
		TimerEnd:  that.timerEnd,
		RoundInfo: entity.RoundInfo{Current: that.round + 1, Total: len(that.games)},
	}
	for _, p := range that.players {
		snap.Players = append(snap.Players, p.Player)
	}
	if that.phase == entity.PhaseFinalReveal {
		snap.History = append(snap.History, that.history...)
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("player_id"), 10, 64)
	me := that.find(id)
	if err != nil || me == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}

	snap.Me = &entity.Me{ID: me.ID, IsVIP: me.IsVIP, IsMole: me.IsMole, HasFinishedQuiz: me.HasFinishedQuiz}

	switch that.phase {
	case entity.PhaseExplanation, entity.PhaseGameRunning, entity.PhaseScoring:
		content := that.games[that.round]
		snap.GameContent = &content
		snap.GameSpecific = that.gameSpecific(content.ID, me)
		if me.IsMole {
			snap.SecretInfo = "You are the mole. Make sure the group misses its tasks."
		} else {
			snap.SecretInfo = "Complete the group tasks."
		}
		if that.phase == entity.PhaseScoring {
			snap.MaxPoints = content.MaxPoints
		}
	case entity.PhaseQuiz:
		snap.QuizData = that.quiz()
	}
	if that.phase == entity.PhaseExplanation {
		q := that.quiz()[1]
		snap.QuizHint = &entity.QuizHint{Text: q.Text, Options: q.Options}
	}

	writeJSON(w, http.StatusOK, snap)
}

func (that *Server) control(w http.ResponseWriter, r *http.Request) {
	action := entity.ControlAction(r.URL.Query().Get("action"))

	var payload map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.apply(action, payload); err != nil {
		http.Error(w, err.Error(), err.code)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type controlError struct {
	code int
	msg  string
}

func (that *controlError) Error() string { return that.msg }

func conflict(action entity.ControlAction, phase entity.Phase) *controlError {
	return &controlError{code: http.StatusConflict, msg: fmt.Sprintf("%s is not allowed in %s", action, phase)}
}

func (that *Server) apply(action entity.ControlAction, payload map[string]any) *controlError {
	need := map[entity.ControlAction]entity.Phase{
		entity.ActionStartGame:    entity.PhaseLobby,
		entity.ActionExplainRound: entity.PhaseReveal,
		entity.ActionStartTimer:   entity.PhaseExplanation,
		entity.ActionEndGameEarly: entity.PhaseGameRunning,
		entity.ActionSubmitScore:  entity.PhaseScoring,
		entity.ActionStartQuiz:    entity.PhaseQuizIntro,
		entity.ActionAdvanceRound: entity.PhaseQuiz,
	}

	if action == entity.ActionReset {
		that.reset()
		return nil
	}
	phase, ok := need[action]
	if !ok {
		return &controlError{code: http.StatusBadRequest, msg: fmt.Sprintf("unknown action %q", action)}
	}
	if that.phase != phase {
		return conflict(action, that.phase)
	}

	switch action {
	case entity.ActionStartGame:
		if len(that.players) < 2 {
			return &controlError{code: http.StatusBadRequest, msg: "Need at least 2 players"}
		}
		mole := that.rng.IntN(len(that.players))
		for i, p := range that.players {
			p.IsMole = i == mole
		}
		that.phase = entity.PhaseReveal
	case entity.ActionExplainRound:
		that.prepareRound()
		that.phase = entity.PhaseExplanation
	case entity.ActionStartTimer:
		that.timerEnd = float64(that.now().Add(time.Duration(that.games[that.round].Duration)*time.Second).UnixNano()) / float64(time.Second)
		that.phase = entity.PhaseGameRunning
	case entity.ActionEndGameEarly:
		that.phase = entity.PhaseScoring
	case entity.ActionSubmitScore:
		points := 0
		if v, ok := payload["points"].(float64); ok {
			points = int(v)
		}
		for _, p := range that.players {
			if !p.IsMole {
				p.Score += points + p.points
			}
		}
		that.snapshotScores(float64(that.round) + 0.5)
		that.phase = entity.PhaseQuizIntro
	case entity.ActionStartQuiz:
		for _, p := range that.players {
			p.HasFinishedQuiz = false
		}
		that.answers = make(map[int64]map[string]string)
		that.phase = entity.PhaseQuiz
	case entity.ActionAdvanceRound:
		that.scoreQuiz()
		that.snapshotScores(float64(that.round) + 1)
		if that.round+1 < len(that.games) {
			that.round++
			that.timerEnd = 0
			that.prepareRound()
			that.phase = entity.PhaseExplanation
		} else {
			that.phase = entity.PhaseFinalReveal
		}
	}

	return nil
}

func (that *Server) prepareRound() {
	for i, p := range that.players {
		p.character = characters[(i+that.round)%len(characters)]
		p.questions, p.strikes, p.solved, p.points = 0, 0, false, 0
		p.tasks = make([]bool, 2)
		p.HasFinishedQuiz = false
	}
}

func (that *Server) snapshotScores(round float64) {
	for _, p := range that.players {
		that.history = append(that.history, entity.HistoryEntry{PlayerID: p.ID, RoundIdx: round, Score: p.Score})
	}
}

func (that *Server) scoreQuiz() {
	var mole *player
	for _, p := range that.players {
		if p.IsMole {
			mole = p
		}
	}
	if mole == nil {
		return
	}
	for _, p := range that.players {
		if p.IsMole {
			continue
		}
		if that.answers[p.ID]["1"] == mole.Name {
			p.Score += 100
			mole.Score -= 50
		}
	}
}

func (that *Server) quiz() []entity.QuizQuestion {
	names := make([]string, 0, len(that.players))
	for _, p := range that.players {
		names = append(names, p.Name)
	}
	return []entity.QuizQuestion{
		{ID: 1, Text: "Who is the mole?", Options: names},
		{ID: 2, Text: "Which hand does the mole write with?", Options: []string{"Left", "Right"}},
		{ID: 3, Text: "Does the mole wear glasses?", Options: []string{"Yes", "No"}},
	}
}

func (that *Server) gameSpecific(gameID string, me *player) json.RawMessage {
	var v any
	switch gameID {
	case "who-am-i":
		var others []map[string]string
		for _, p := range that.players {
			if p.ID != me.ID {
				others = append(others, map[string]string{"name": p.Name, "char": p.character})
			}
		}
		v = map[string]any{
			"tasks": []map[string]any{
				{"desc": "Make someone say your name", "type": "easy", "done": me.tasks[0]},
				{"desc": "Get a stranger to salute", "type": "hard", "done": me.tasks[1]},
			},
			"stats":     map[string]any{"questions": me.questions, "strikes": me.strikes, "solved": me.solved, "points": me.points},
			"others":    others,
			"role_text": "Ask yes/no questions to find out who you are.",
		}
	case "chess-challenges":
		v = map[string]any{
			"group_tasks":     []map[string]any{{"idx": 0, "desc": "Castle before move 10", "points": 100, "done": me.tasks[0]}},
			"indiv_tasks":     []map[string]any{{"idx": 1, "desc": "Capture a knight", "points": 50, "done": me.tasks[1]}},
			"anonymous_tasks": []map[string]any{{"desc": "Promote a pawn", "points": 100}},
			"stats":           map[string]any{"moves": me.questions, "game_won": me.solved},
		}
	default:
		v = map[string]any{
			"tasks": []map[string]any{
				{"idx": 0, "desc": "Hold Australia for 2 turns", "points": 150, "type": "hold", "done": me.tasks[0]},
				{"idx": 1, "desc": "Eliminate a player", "points": 200, "type": "kill", "done": me.tasks[1]},
			},
		}
	}
	raw, _ := json.Marshal(v)
	return raw
}

func (that *Server) gameAction(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, _ := strconv.ParseInt(q.Get("player_id"), 10, 64)
	action := q.Get("action")

	payload := map[string]any{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	key := r.Header.Get("Idempotency-Key")
	if res, ok := that.idempotent[key]; ok && key != "" {
		writeJSON(w, http.StatusOK, res)
		return
	}

	p := that.find(id)
	if p == nil || that.phase != entity.PhaseGameRunning {
		http.Error(w, "no running game for this player", http.StatusConflict)
		return
	}

	res := that.handleGameAction(p, action, payload)
	if key != "" {
		that.idempotent[key] = res
	}
	writeJSON(w, http.StatusOK, res)
}

func (that *Server) handleGameAction(p *player, action string, payload map[string]any) entity.ActionResult {
	index := func(key string) int {
		v, _ := payload[key].(float64)
		return int(v)
	}
	toggle := func(i int) entity.ActionResult {
		if i < 0 || i >= len(p.tasks) {
			return entity.ActionResult{Error: "bad index"}
		}
		p.tasks[i] = !p.tasks[i]
		return entity.ActionResult{Status: "updated"}
	}

	switch action {
	case "add_question", "add_move":
		p.questions++
		return entity.ActionResult{Status: "updated"}
	case "toggle_win":
		p.solved = !p.solved
		return entity.ActionResult{Status: "updated"}
	case "toggle_task":
		if _, ok := payload["task_index"]; ok {
			return toggle(index("task_index"))
		}
		return toggle(index("index"))
	case "toggle_group", "toggle_indiv":
		return toggle(index("index"))
	case "guess":
		guess, _ := payload["guess"].(string)
		guess = strings.ToLower(strings.TrimSpace(guess))
		if len(guess) > 2 && strings.Contains(p.character, guess) {
			p.solved = true
			p.points = max(0, 300-max(0, (p.questions-4)*15)-p.strikes*25)
			return entity.ActionResult{Result: entity.ResultCorrect, RealName: p.character, Points: p.points}
		}
		p.strikes++
		return entity.ActionResult{Result: entity.ResultIncorrect}
	}
	return entity.ActionResult{Error: "Unknown action"}
}

func (that *Server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("player_id"), 10, 64)

	answers := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		http.Error(w, "invalid answers", http.StatusBadRequest)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	p := that.find(id)
	if p == nil || that.phase != entity.PhaseQuiz {
		http.Error(w, "no quiz running for this player", http.StatusConflict)
		return
	}
	that.answers[id] = answers
	p.HasFinishedQuiz = true

	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

func (that *Server) find(id int64) *player {
	for _, p := range that.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
