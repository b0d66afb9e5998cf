package enums

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusLive      EventStatus = "live"
	StatusHalftime  EventStatus = "halftime"
	StatusFinished  EventStatus = "finished"
	StatusPostponed EventStatus = "postponed"
	StatusCancelled EventStatus = "cancelled"
	StatusSuspended EventStatus = "suspended"
)

// IsValid checks if status is supported
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusHalftime, StatusFinished,
		StatusPostponed, StatusCancelled, StatusSuspended:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the event can no longer change
func (s EventStatus) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusCancelled:
		return true
	default:
		return false
	}
}

// InPlay reports whether the event is currently being played
func (s EventStatus) InPlay() bool {
	return s == StatusLive || s == StatusHalftime
}

// String returns string representation
func (s EventStatus) String() string {
	return string(s)
}
