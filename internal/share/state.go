// Package share coordinates the deferred LinkedIn share flow around visitor
// registration. Registration must complete exactly once; the optional share
// needs provider auth that may not exist yet and must survive the OAuth
// redirect without double-posting.
package share

import "fmt"

// State is the coordinator state for one browser session.
type State string

const (
	StateIdle           State = "idle"
	StateValidated      State = "validated"
	StateAwaitingChoice State = "awaiting_share_choice"
	StateRegistering    State = "registering"
	StateRegistered     State = "registered"
	StateSharePending   State = "share_pending"
	StateShareInFlight  State = "share_in_flight"
	StateShared         State = "shared"
	StateShareFailed    State = "share_failed"
	StateDone           State = "done"
)

// Event drives a state transition.
type Event string

const (
	EventValidated    Event = "validated"      // client-side field validation passed
	EventPromptChoice Event = "prompt_choice"  // not yet provider-authenticated at submit
	EventSubmit       Event = "submit"         // registration call started
	EventRegistered   Event = "registered"     // ticket persisted
	EventShareTrigger Event = "share_trigger"  // auto-share conditions met
	EventShareStart   Event = "share_start"    // outbound post began
	EventShareSent    Event = "share_sent"     // post succeeded
	EventShareError   Event = "share_error"    // post failed, retry affordance shown
	EventFinish       Event = "finish"         // terminal
)

// transitions is the single source of truth for allowed moves.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventValidated: StateValidated,
	},
	StateValidated: {
		EventPromptChoice: StateAwaitingChoice,
		EventSubmit:       StateRegistering,
	},
	StateAwaitingChoice: {
		EventSubmit:    StateRegistering,
		EventValidated: StateValidated, // user cancelled, back to the form
	},
	StateRegistering: {
		EventRegistered: StateRegistered,
	},
	StateRegistered: {
		EventShareTrigger: StateSharePending,
		EventFinish:       StateDone, // no share requested
	},
	StateSharePending: {
		EventShareStart: StateShareInFlight,
	},
	StateShareInFlight: {
		EventShareSent:  StateShared,
		EventShareError: StateShareFailed,
	},
	StateShareFailed: {
		EventShareTrigger: StateSharePending, // manual retry
		EventFinish:       StateDone,
	},
	StateShared: {
		EventShareTrigger: StateSharePending, // manual re-share only
		EventFinish:       StateDone,
	},
	StateDone: {
		// A session can finish without sharing and only then gain provider
		// auth via the OAuth callback; the share is still wanted.
		EventShareTrigger: StateSharePending,
	},
}

// Transition applies ev to the session state, returning an error for moves
// the state machine does not allow.
func (s *Session) Transition(ev Event) error {
	next, ok := transitions[s.State][ev]
	if !ok {
		return fmt.Errorf("share: invalid transition %s -> %s", s.State, ev)
	}
	s.State = next
	return nil
}
