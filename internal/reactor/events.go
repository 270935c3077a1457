package reactor

import "fmt"

// EventKind identifies an irreversible status change.
type EventKind int

const (
	EventCoolingDegrading EventKind = iota + 1
	EventCoolingFailed
	EventPowerFailed
	EventContainmentBreached
	EventContainmentCollapsed
)

func (k EventKind) String() string {
	switch k {
	case EventCoolingDegrading:
		return "cooling_degrading"
	case EventCoolingFailed:
		return "cooling_failed"
	case EventPowerFailed:
		return "power_failed"
	case EventContainmentBreached:
		return "containment_breached"
	case EventContainmentCollapsed:
		return "containment_collapsed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event reports a state-machine transition. Snapshot is the state at the end
// of the tick that produced it.
type Event struct {
	Kind     EventKind
	Tick     uint64
	Time     float64
	Snapshot Snapshot
}

func (e Event) String() string {
	return fmt.Sprintf("%s at t=%.3fs", e.Kind, e.Time)
}

// Terminal reports whether the event ends the run.
func (e Event) Terminal() bool {
	return e.Kind == EventContainmentCollapsed
}
