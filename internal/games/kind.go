// Package games adapts the opaque per-game payload of a running round into text views and
// named game actions.
package games

const (
	IDWhoAmI     = "who-am-i"
	IDChess      = "chess-challenges"
	IDDictionary = "dictionary-dudes"
	IDRisky      = "risky-business"
	IDRitual     = "ritual"
)

// Kind is the closed set of views a running game can use. Unknown ids map to KindGeneric.
type Kind int

const (
	KindGeneric Kind = iota
	KindWhoAmI
	KindChess
	KindDictionary
	KindRisky
)

var kinds = map[string]Kind{
	IDWhoAmI:     KindWhoAmI,
	IDChess:      KindChess,
	IDDictionary: KindDictionary,
	IDRisky:      KindRisky,
}

func KindOf(gameID string) Kind {
	if k, ok := kinds[gameID]; ok {
		return k
	}
	return KindGeneric
}

func (that Kind) String() string {
	switch that {
	case KindWhoAmI:
		return IDWhoAmI
	case KindChess:
		return IDChess
	case KindDictionary:
		return IDDictionary
	case KindRisky:
		return IDRisky
	}
	return "generic"
}

// ScoringMode is how the VIP closes a round during SCORING.
type ScoringMode int

const (
	ScoringAutomated ScoringMode = iota
	ScoringManual
)

func (that ScoringMode) String() string {
	if that == ScoringManual {
		return "manual"
	}
	return "automated"
}

var scoringModes = map[string]ScoringMode{
	IDWhoAmI:     ScoringAutomated,
	IDChess:      ScoringAutomated,
	IDRitual:     ScoringManual,
	IDDictionary: ScoringManual,
	IDRisky:      ScoringManual,
}

// ScoringModeOf returns the enumerated scoring mode for a game. Games not listed are
// scored by the server alone.
func ScoringModeOf(gameID string) ScoringMode {
	return scoringModes[gameID]
}

// ScoringInstructions returns the text the VIP sees before submitting scores.
func ScoringInstructions(gameID, maxPoints string) []string {
	switch gameID {
	case IDWhoAmI, IDChess:
		return []string{"Scores are calculated automatically. Submit to proceed."}
	case IDRisky:
		return []string{
			"Count total troops alive on board.",
			"Calculate: (Troops x 5)",
			"Enter that number below. (Task bonuses will be added automatically)",
		}
	case IDRitual, IDDictionary:
		return []string{
			"Please count the points earned by the team.",
			"(Max possible: " + maxPoints + ")",
		}
	}
	return nil
}
