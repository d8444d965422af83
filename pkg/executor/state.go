package executor

import (
	"fmt"

	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

// State is a position of the composer pipeline.
type State string

// Pipeline states, in order. Failed is absorbing.
const (
	StateIdle                State = "Idle"
	StateComposerOpened      State = "ComposerOpened"
	StateMediaUploaded       State = "MediaUploaded"
	StateCaptionEntered      State = "CaptionEntered"
	StateCustomizationOpened State = "CustomizationOpened"
	StateNetworkTextFocused  State = "NetworkTextFocused"
	StateNetworkTagEntered   State = "NetworkTagEntered"
	StateOptionMenuOpened    State = "OptionMenuOpened"
	StateOptionSelected      State = "OptionSelected"
	StateDone                State = "Done"
	StateFailed              State = "Failed"
)

// sequence lists the success path from Idle to Done.
var sequence = []State{
	StateIdle,
	StateComposerOpened,
	StateMediaUploaded,
	StateCaptionEntered,
	StateCustomizationOpened,
	StateNetworkTextFocused,
	StateNetworkTagEntered,
	StateOptionMenuOpened,
	StateOptionSelected,
	StateDone,
}

// reachedBy maps each step type to the state its success enters.
var reachedBy = map[flow.StepType]State{
	flow.StepOpenComposer:      StateComposerOpened,
	flow.StepUploadMedia:       StateMediaUploaded,
	flow.StepEnterCaption:      StateCaptionEntered,
	flow.StepOpenCustomization: StateCustomizationOpened,
	flow.StepFocusNetworkText:  StateNetworkTextFocused,
	flow.StepEnterNetworkTag:   StateNetworkTagEntered,
	flow.StepOpenOptionMenu:    StateOptionMenuOpened,
	flow.StepSelectOption:      StateOptionSelected,
	flow.StepFinish:            StateDone,
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Next returns the state after s on the success path.
func (s State) Next() (State, bool) {
	for i, st := range sequence[:len(sequence)-1] {
		if st == s {
			return sequence[i+1], true
		}
	}
	return "", false
}

// StateAfter returns the state entered when a step of type t succeeds.
func StateAfter(t flow.StepType) (State, bool) {
	s, ok := reachedBy[t]
	return s, ok
}

// Transition validates moving from one state to another.
func Transition(from, to State) error {
	if from.IsTerminal() {
		return fmt.Errorf("disallowed transition: %s is terminal", from)
	}
	if to == StateFailed {
		return nil
	}
	next, ok := from.Next()
	if !ok {
		return fmt.Errorf("unknown state %q", from)
	}
	if next != to {
		return fmt.Errorf("disallowed transition: %s -> %s (expected %s)", from, to, next)
	}
	return nil
}
