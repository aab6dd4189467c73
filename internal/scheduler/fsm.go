package scheduler

import "fmt"

// State is the lifecycle state of a Scheduler.
type State string

// Event drives a State change.
type Event string

// Scheduler states.
const (
	StateIdle       State = "idle"
	StateActive     State = "active"
	StateTerminated State = "terminated"
)

// Scheduler events.
const (
	EventEnable      Event = "enable"
	EventDisable     Event = "disable"
	EventReconfigure Event = "reconfigure"
	EventShutdown    Event = "shutdown"
)

// Transition returns the state reached from current on event, or an error
// when the event is not allowed there. Shutdown is accepted from any state.
func Transition(current State, event Event) (State, error) {
	if event == EventShutdown {
		return StateTerminated, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventEnable, EventReconfigure:
			return StateActive, nil
		case EventDisable:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateActive:
		switch event {
		case EventReconfigure:
			return StateActive, nil
		case EventDisable:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTerminated:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
