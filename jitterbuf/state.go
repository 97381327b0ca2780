// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import "github.com/looplab/fsm"

// The two non-terminal states from spec §4.5. There is no terminal state;
// Reset always returns to stateBuffering.
const (
	stateBuffering = "buffering"
	statePlayout   = "playout"
)

const (
	eventFill  = "fill"  // BUFFERING -> PLAYOUT, fired inside Pop.
	eventDrain = "drain" // PLAYOUT -> BUFFERING, fired inside Pop.
	eventReset = "reset" // either -> BUFFERING; declared only, Init/Reset build a fresh FSM instead of firing it.
)

// newPlayoutFSM builds the buffering/playout state machine, grounded on
// the looplab/fsm wiring style used for SIP dialog/subscription state in
// the reference dialog package (fsm.NewFSM(initial, fsm.Events{...}, nil)).
// Using a declared FSM rather than a bare bool keeps the legal transition
// set in one place; it does not change the observable semantics described
// in spec §4.5, including the OQ5 quirk (Pop's empty-queue transition
// into BUFFERING never touches buffering_started_at).
func newPlayoutFSM() *fsm.FSM {
	return fsm.NewFSM(
		stateBuffering,
		fsm.Events{
			{Name: eventFill, Src: []string{stateBuffering}, Dst: statePlayout},
			{Name: eventDrain, Src: []string{statePlayout}, Dst: stateBuffering},
			{Name: eventReset, Src: []string{stateBuffering, statePlayout}, Dst: stateBuffering},
		},
		nil,
	)
}
