// Package reveal sequences the final disclosure of rankings, the mole and the score history.
package reveal

import (
	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
)

type Step int

const (
	StepRankings Step = iota
	StepMoleTeaser
	StepMoleIdentity
	StepHistory
)

func (that Step) String() string {
	switch that {
	case StepRankings:
		return "rankings"
	case StepMoleTeaser:
		return "mole-teaser"
	case StepMoleIdentity:
		return "mole-identity"
	case StepHistory:
		return "score-history"
	}
	return "unknown"
}

// Sequencer is a local cursor that only moves forward, one step at a time.
// The zero value starts at StepRankings.
type Sequencer struct {
	step Step
}

func (that *Sequencer) Step() Step {
	return that.step
}

// Next advances rankings -> teaser and identity -> history.
func (that *Sequencer) Next() error {
	switch that.step {
	case StepRankings, StepMoleIdentity:
		that.step++
		return nil
	}
	return apperror.ErrOutOfOrder
}

// TapToReveal advances teaser -> identity. Any player may use it.
func (that *Sequencer) TapToReveal() error {
	if that.step != StepMoleTeaser {
		return apperror.ErrOutOfOrder
	}

	that.step = StepMoleIdentity
	return nil
}

// CanReset reports whether the reset control may be offered.
func (that *Sequencer) CanReset(isVIP bool) bool {
	return isVIP && that.step == StepHistory
}

// ShowsMole reports whether the mole's name is visible.
func (that *Sequencer) ShowsMole() bool {
	return that.step >= StepMoleIdentity
}
