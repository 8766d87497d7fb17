package apperror

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyName      = errors.New("name must not be empty")
	ErrNotJoined      = errors.New("not joined to a session")
	ErrUnknownAction  = errors.New("unknown control action")
	ErrMissingAnswers = errors.New("every question needs an answer")
	ErrSessionGone    = errors.New("session no longer knows this player")
	ErrOutOfOrder     = errors.New("reveal step out of order")
	ErrNotAllowed     = errors.New("action not allowed for this player")
)

// JoinError is returned when a join is refused locally or by the server.
type JoinError struct {
	Name string
	Err  error
}

func (that *JoinError) Error() string {
	return fmt.Sprintf("failed to join as %q: %v", that.Name, that.Err)
}

func (that *JoinError) Unwrap() error { return that.Err }

// PollError is a failed snapshot fetch. The last snapshot stays in place.
type PollError struct {
	PlayerID int64
	Err      error
}

func (that *PollError) Error() string {
	return fmt.Sprintf("failed to poll state for player %d: %v", that.PlayerID, that.Err)
}

func (that *PollError) Unwrap() error { return that.Err }

// DispatchError is a failed control, game action or quiz submission.
type DispatchError struct {
	Op     string
	Action string
	Err    error
}

func (that *DispatchError) Error() string {
	if that.Action == "" {
		return fmt.Sprintf("%s failed: %v", that.Op, that.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", that.Op, that.Action, that.Err)
}

func (that *DispatchError) Unwrap() error { return that.Err }

// ValidationError blocks a quiz submission before any network call.
type ValidationError struct {
	Missing []int
}

func (that *ValidationError) Error() string {
	ids := make([]string, len(that.Missing))
	for i, id := range that.Missing {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%v: missing questions %s", ErrMissingAnswers, strings.Join(ids, ", "))
}

func (that *ValidationError) Unwrap() error { return ErrMissingAnswers }
