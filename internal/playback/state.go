// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

// State is the lifecycle state of a Session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateRunning       State = "running"
	StateStopped       State = "stopped"
)

func (s State) String() string { return string(s) }

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool { return s == StateStopped }

// trigger is an internal lifecycle event driving a transition.
type trigger string

const (
	trInitRequested trigger = "init_requested"
	trInitSucceeded trigger = "init_succeeded"
	trInitFailed    trigger = "init_failed"
	trStartApplied  trigger = "start_applied"
	trStartFailed   trigger = "start_failed"
	trStopRequested trigger = "stop_requested"
)

// transition is a single allowed edge in the lifecycle state machine.
type transition struct {
	From  State
	Event trigger
	To    State
}

var transitionsTable = []transition{
	// Initialization path
	{From: StateUninitialized, Event: trInitRequested, To: StateInitializing},
	{From: StateInitializing, Event: trInitSucceeded, To: StateReady},
	{From: StateInitializing, Event: trInitFailed, To: StateUninitialized},

	// Start path; a device that refuses to start leaves the session Ready.
	{From: StateReady, Event: trStartApplied, To: StateRunning},
	{From: StateRunning, Event: trStartFailed, To: StateReady},

	// Stop is valid from every non-terminal state
	{From: StateUninitialized, Event: trStopRequested, To: StateStopped},
	{From: StateInitializing, Event: trStopRequested, To: StateStopped},
	{From: StateReady, Event: trStopRequested, To: StateStopped},
	{From: StateRunning, Event: trStopRequested, To: StateStopped},
}

// transitionFor returns the target state for a given state+event.
func transitionFor(from State, ev trigger) (State, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr.To, true
		}
	}
	return from, false
}
