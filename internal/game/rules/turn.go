package rules

import "fmt"

// Phase represents the lifecycle of a session.
type Phase int

const (
	PhaseWaitingForPlayers Phase = iota
	PhaseInProgress
	PhaseFinished
	// PhaseStalled marks an in-progress session with no other alive player to
	// pass the turn to and no winner.
	PhaseStalled
)

var phaseNames = map[Phase]string{
	PhaseWaitingForPlayers: "WAITING_FOR_PLAYERS",
	PhaseInProgress:        "IN_PROGRESS",
	PhaseFinished:          "FINISHED",
	PhaseStalled:           "STALLED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// NextAlive scans the roster circularly starting one position after start,
// wrapping at most once. It returns the first index for which alive reports
// true. If nothing else qualifies the scan ends back on start, which is
// returned as the "no other player" sentinel (0 when start is negative).
func NextAlive(count, start int, alive func(int) bool) int {
	if count <= 0 {
		return 0
	}
	for step := 1; step <= count; step++ {
		idx := ((start+step)%count + count) % count
		if alive(idx) {
			return idx
		}
	}
	if start >= 0 {
		return start
	}
	return 0
}

// TurnManager tracks whose turn it is as an index into the session roster.
type TurnManager struct {
	current    int
	turnNumber int
}

// NewTurnManager creates a turn manager that has not started yet.
func NewTurnManager() *TurnManager {
	return &TurnManager{current: -1}
}

// Current returns the roster index holding the turn, or -1 before Begin.
func (tm *TurnManager) Current() int {
	return tm.current
}

// TurnNumber returns the 1-based number of the turn in progress.
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Begin points the turn at the first alive player. It returns false when
// nobody is alive.
func (tm *TurnManager) Begin(count int, alive func(int) bool) bool {
	idx := NextAlive(count, -1, alive)
	if count == 0 || !alive(idx) {
		return false
	}
	tm.current = idx
	tm.turnNumber = 1
	return true
}

// Revalidate makes sure the pointer refers to an alive player, searching
// forward when it does not. It returns false when nobody is alive.
func (tm *TurnManager) Revalidate(count int, alive func(int) bool) bool {
	if tm.current >= 0 && tm.current < count && alive(tm.current) {
		return true
	}
	start := tm.current
	if start >= count {
		start = -1
	}
	idx := NextAlive(count, start, alive)
	if count == 0 || !alive(idx) {
		return false
	}
	tm.current = idx
	return true
}

// Advance passes the turn to the next alive player after the current one.
// It returns false, leaving the pointer untouched, when no other alive
// player exists.
func (tm *TurnManager) Advance(count int, alive func(int) bool) bool {
	next := NextAlive(count, tm.current, alive)
	if next == tm.current {
		return false
	}
	tm.current = next
	tm.turnNumber++
	return true
}

// Removed keeps the pointer consistent after the roster entry at index was
// deleted (count is the new roster size). It reports whether the removed
// entry held the turn, in which case the pointer has already moved to the
// next alive player in roster order; seated is false when nobody is left alive.
func (tm *TurnManager) Removed(index, count int, alive func(int) bool) (heldTurn, seated bool) {
	switch {
	case tm.current < 0:
		return false, true
	case index < tm.current:
		tm.current--
		return false, true
	case index > tm.current:
		return false, true
	}

	idx := NextAlive(count, index-1, alive)
	if count == 0 || !alive(idx) {
		tm.current = -1
		return true, false
	}
	tm.current = idx
	tm.turnNumber++
	return true, true
}
