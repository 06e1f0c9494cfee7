// Package attendance decides whether an identified student may be marked
// present for a class session at a given room and time, and renders the
// operator-facing explanation when they may not.
package attendance

import "time"

// DiagnosticKind classifies why a session did not qualify.
type DiagnosticKind string

const (
	WrongRoom DiagnosticKind = "wrong_room"
	WrongTime DiagnosticKind = "wrong_time"
	WrongBoth DiagnosticKind = "wrong_both"
)

// Diagnostic explains one non-qualifying session, in encounter order.
type Diagnostic struct {
	Kind    DiagnosticKind
	Session Session
}

// OutcomeKind is the top-level eligibility result.
type OutcomeKind string

const (
	OutcomeEligible        OutcomeKind = "eligible"
	OutcomeNoSessionsToday OutcomeKind = "no_sessions_today"
	OutcomeMismatch        OutcomeKind = "mismatch"
)

// Outcome is the eligibility decision for one scan. Session is set only for
// OutcomeEligible; Diagnostics only for OutcomeMismatch.
type Outcome struct {
	Kind        OutcomeKind
	Session     *Session
	Diagnostics []Diagnostic
}

// Resolve scans the student's sessions in the order supplied and picks the
// first one whose room matches and whose time window contains now
// (inclusive at both bounds). First match wins: the scan stops there even
// if a later session would also qualify. Non-qualifying sessions seen
// before the winner are classified into ordered diagnostics.
//
// Callers supply sessions already filtered to today's Scheduled meetings of
// actively-enrolled courses; Resolve only reasons over room and time.
func Resolve(roomID string, sessions []Session, now time.Time) Outcome {
	if len(sessions) == 0 {
		return Outcome{Kind: OutcomeNoSessionsToday}
	}

	var diagnostics []Diagnostic
	for i := range sessions {
		s := sessions[i]
		roomOk := s.RoomID == roomID
		timeOk := !now.Before(s.StartTime) && !now.After(s.EndTime)

		if roomOk && timeOk {
			return Outcome{Kind: OutcomeEligible, Session: &sessions[i]}
		}

		var kind DiagnosticKind
		switch {
		case timeOk && !roomOk:
			kind = WrongRoom
		case roomOk && !timeOk:
			kind = WrongTime
		default:
			kind = WrongBoth
		}
		diagnostics = append(diagnostics, Diagnostic{Kind: kind, Session: s})
	}

	return Outcome{Kind: OutcomeMismatch, Diagnostics: diagnostics}
}
