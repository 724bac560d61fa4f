package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPathWithShare(t *testing.T) {
	s := &Session{ID: "s1", State: StateIdle}

	steps := []struct {
		ev   Event
		want State
	}{
		{EventValidated, StateValidated},
		{EventPromptChoice, StateAwaitingChoice},
		{EventSubmit, StateRegistering},
		{EventRegistered, StateRegistered},
		{EventShareTrigger, StateSharePending},
		{EventShareStart, StateShareInFlight},
		{EventShareSent, StateShared},
		{EventFinish, StateDone},
	}
	for _, step := range steps {
		require.NoError(t, s.Transition(step.ev), "event %s", step.ev)
		assert.Equal(t, step.want, s.State)
	}
}

func TestTransitionSkipChoiceWhenAuthenticated(t *testing.T) {
	// An already signed-in user submits straight from the validated form.
	s := &Session{State: StateValidated}
	require.NoError(t, s.Transition(EventSubmit))
	assert.Equal(t, StateRegistering, s.State)
}

func TestTransitionCancelReturnsToForm(t *testing.T) {
	s := &Session{State: StateAwaitingChoice}
	require.NoError(t, s.Transition(EventValidated))
	assert.Equal(t, StateValidated, s.State)
}

func TestTransitionShareFailureAllowsRetry(t *testing.T) {
	s := &Session{State: StateShareInFlight}
	require.NoError(t, s.Transition(EventShareError))
	assert.Equal(t, StateShareFailed, s.State)

	require.NoError(t, s.Transition(EventShareTrigger))
	assert.Equal(t, StateSharePending, s.State)
}

func TestTransitionDoneReopensForLateShare(t *testing.T) {
	// Signing in after finishing without a share reopens the flow.
	s := &Session{State: StateDone}
	require.NoError(t, s.Transition(EventShareTrigger))
	assert.Equal(t, StateSharePending, s.State)
}

func TestTransitionInvalidMoves(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
	}{
		{StateIdle, EventSubmit},
		{StateIdle, EventShareTrigger},
		{StateRegistering, EventShareSent},
		{StateRegistered, EventShareStart},
		{StateDone, EventValidated},
		{StateDone, EventShareStart},
	}
	for _, tc := range cases {
		s := &Session{State: tc.from}
		err := s.Transition(tc.ev)
		assert.Error(t, err, "%s should reject %s", tc.from, tc.ev)
		assert.Equal(t, tc.from, s.State, "state must not change on rejected event")
	}
}
