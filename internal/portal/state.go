package portal

import (
	"fmt"

	"go.uber.org/zap"
)

// State is the progress of a portal session. Sessions only move forward.
type State string

const (
	StateUnauthenticated            State = "UNAUTHENTICATED"
	StateAuthenticating             State = "AUTHENTICATING"
	StateAwaitingFederationRedirect State = "AWAITING_FEDERATION_REDIRECT"
	StateAuthenticated              State = "AUTHENTICATED"
	StateNavigatingToReport         State = "NAVIGATING_TO_REPORT"
	StateReportLoaded               State = "REPORT_LOADED"
	StateTableLocated               State = "TABLE_LOCATED"
	StateTableNotFound              State = "TABLE_NOT_FOUND"
	StateClosed                     State = "CLOSED"
)

func isAllowedTransition(from, to State) bool {
	if to == StateClosed {
		return from != StateClosed
	}
	switch from {
	case StateUnauthenticated:
		return to == StateAuthenticating
	case StateAuthenticating:
		return to == StateAwaitingFederationRedirect
	case StateAwaitingFederationRedirect:
		return to == StateAuthenticated
	case StateAuthenticated:
		return to == StateNavigatingToReport
	case StateNavigatingToReport:
		return to == StateReportLoaded
	case StateReportLoaded:
		return to == StateTableLocated || to == StateTableNotFound
	default:
		return false
	}
}

// transition moves s to `to` if the current state allows it.
func (s *Session) transition(to State) error {
	if !isAllowedTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
	}
	s.log.Debug("session state", zap.String("from", string(s.state)), zap.String("to", string(to)))
	s.state = to
	return nil
}
