package correlate

// ResponseStatus represents the lifecycle state of a correlated request.
type ResponseStatus int

const (
	// StatusPending means the request is registered and no response has
	// arrived yet.
	StatusPending ResponseStatus = iota

	// StatusReceived means at least one response has been linked.
	StatusReceived

	// StatusHidden means the request expired. Hidden entries still answer
	// status queries but are excluded from active statistics and their
	// correlation key is free for reuse.
	StatusHidden

	// StatusNavigationDisabled is a presentational state used by the icon
	// layer when the response topic is not subscribed. It is never stored
	// in the correlation index and is reversible on re-subscribe.
	StatusNavigationDisabled
)

// String returns the string representation of the status.
func (s ResponseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReceived:
		return "received"
	case StatusHidden:
		return "hidden"
	case StatusNavigationDisabled:
		return "navigation_disabled"
	default:
		return "unknown"
	}
}
