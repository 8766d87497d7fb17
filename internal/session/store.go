// Package session holds the client's single source of truth: the last server snapshot,
// a thin layer of optimistic local overrides on top of it, and the UI state the server never sees.
package session

import (
	"log/slog"
	"maps"
	"sync"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/reveal"
)

// Patch lists the fields a client may set optimistically. Nil fields are left alone.
type Patch struct {
	HasFinishedQuiz *bool
}

// Transition describes what a Replace changed.
type Transition struct {
	From entity.Phase
	To   entity.Phase

	// Orphaned is set when a joined client receives a snapshot without its own projection.
	Orphaned bool
}

func (that Transition) Changed() bool {
	return that.From != that.To
}

type Store struct {
	logger *slog.Logger

	mu        sync.RWMutex
	server    *entity.Snapshot
	overrides Patch
	identity  *entity.Identity

	nameDraft string
	quizDraft map[int]string
	sequencer reveal.Sequencer
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger:    logger.With("component", "session"),
		quizDraft: make(map[int]string),
	}
}

// Replace overwrites every server-derived field and drops all local overrides.
func (that *Store) Replace(snap *entity.Snapshot) Transition {
	log := that.logger.With("method", "Replace")

	that.mu.Lock()
	defer that.mu.Unlock()

	var tr Transition
	if that.server != nil {
		tr.From = that.server.Phase
	}
	if snap != nil {
		tr.To = snap.Phase
	}
	tr.Orphaned = that.identity != nil && snap != nil && snap.Me == nil

	if tr.Changed() && tr.From != "" && !tr.From.CanTransitionTo(tr.To) {
		// A slow poll can legitimately skip a phase.
		log.Debug("phase jumped", "from", tr.From, "to", tr.To)
	}

	that.server = snap.Clone()
	that.overrides = Patch{}

	if tr.Changed() {
		switch tr.To {
		case entity.PhaseQuiz:
			clear(that.quizDraft)
		case entity.PhaseFinalReveal:
			that.sequencer = reveal.Sequencer{}
		}
	}

	return tr
}

// PatchLocal shallow-merges fields the server does not own. The next Replace discards them.
func (that *Store) PatchLocal(p Patch) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if p.HasFinishedQuiz != nil {
		v := *p.HasFinishedQuiz
		that.overrides.HasFinishedQuiz = &v
	}
}

// View returns the effective snapshot (server layer with overrides applied), or nil before
// the first snapshot. The result is a copy.
func (that *Store) View() *entity.Snapshot {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.server == nil {
		return nil
	}

	view := that.server.Clone()
	if that.overrides.HasFinishedQuiz != nil && view.Me != nil {
		view.Me.HasFinishedQuiz = entity.Flag(*that.overrides.HasFinishedQuiz)
	}

	return view
}

func (that *Store) SetIdentity(identity entity.Identity) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.identity = &identity
}

// Identity returns the joined identity, if any.
func (that *Store) Identity() (entity.Identity, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.identity == nil {
		return entity.Identity{}, false
	}
	return *that.identity, true
}

// Clear returns the store to the pre-join state.
func (that *Store) Clear() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.server = nil
	that.overrides = Patch{}
	that.identity = nil
	clear(that.quizDraft)
	that.sequencer = reveal.Sequencer{}
}

func (that *Store) SetNameDraft(name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nameDraft = name
}

func (that *Store) NameDraft() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.nameDraft
}

// SetAnswer records the draft answer for one quiz question.
func (that *Store) SetAnswer(questionID int, option string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.quizDraft[questionID] = option
}

func (that *Store) Answers() map[int]string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return maps.Clone(that.quizDraft)
}

// Reveal returns a copy of the reveal cursor.
func (that *Store) Reveal() reveal.Sequencer {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.sequencer
}

// AdvanceReveal applies fn to the reveal cursor under the store lock.
func (that *Store) AdvanceReveal(fn func(*reveal.Sequencer) error) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return fn(&that.sequencer)
}
