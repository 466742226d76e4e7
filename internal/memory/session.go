package memory

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/tiling"
)

// Phase is the state of an ApplySession.
type Phase int

const (
	PhaseApplied Phase = iota
	PhaseVerifying
	PhaseReapplied
	PhaseAccepted
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseApplied:
		return "applied"
	case PhaseVerifying:
		return "verifying"
	case PhaseReapplied:
		return "reapplied"
	case PhaseAccepted:
		return "accepted"
	case PhaseAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Outcome is the result of observing a window's frame during verification.
type Outcome int

const (
	// OutcomeAccepted: the frame matches the target within tolerance.
	OutcomeAccepted Outcome = iota
	// OutcomeReapply: first mismatch; apply again forcefully and re-verify.
	OutcomeReapply
	// OutcomeMismatch: still wrong after the forced apply; leave it.
	OutcomeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeReapply:
		return "reapplied"
	case OutcomeMismatch:
		return "mismatch"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ApplySession tracks one geometry application and its verification:
//
//	Applied -> Verifying -> Accepted
//	                     -> Reapplied -> Verifying -> Accepted | Abandoned
//
// A window that disappears moves the session to Abandoned from any phase.
type ApplySession struct {
	ID        uuid.UUID
	Window    platform.WindowID
	Target    platform.Rect
	Screen    *platform.Display
	Source    string
	Tolerance int

	phase     Phase
	reapplied bool
}

// NewApplySession starts a session for a frame that was just applied.
func NewApplySession(win platform.WindowID, target platform.Rect, screen *platform.Display, source string, tolerance int) *ApplySession {
	return &ApplySession{
		ID:        uuid.New(),
		Window:    win,
		Target:    target,
		Screen:    screen,
		Source:    source,
		Tolerance: tolerance,
		phase:     PhaseApplied,
	}
}

func (s *ApplySession) Phase() Phase {
	return s.phase
}

// Done reports whether the session reached a terminal phase.
func (s *ApplySession) Done() bool {
	return s.phase == PhaseAccepted || s.phase == PhaseAbandoned
}

// BeginVerify marks the start of a verification pass.
func (s *ApplySession) BeginVerify() {
	if !s.Done() {
		s.phase = PhaseVerifying
	}
}

// Observe compares the window's current frame with the target and advances
// the session. Only one reapply is ever requested.
func (s *ApplySession) Observe(frame platform.Rect) Outcome {
	if tiling.RectFromPlatform(frame).WithinTolerance(tiling.RectFromPlatform(s.Target), float64(s.Tolerance)) {
		s.phase = PhaseAccepted
		return OutcomeAccepted
	}
	if !s.reapplied {
		s.reapplied = true
		s.phase = PhaseReapplied
		return OutcomeReapply
	}
	s.phase = PhaseAbandoned
	return OutcomeMismatch
}

// Abandon ends the session without a verdict.
func (s *ApplySession) Abandon() {
	s.phase = PhaseAbandoned
}
