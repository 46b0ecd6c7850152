package correlate

import "errors"

var (
	// ErrEmptyRequestMessageID is returned when a caller passes an empty
	// request message id to a registration or removal API. Empty required
	// identifiers are caller bugs, not recoverable traffic conditions.
	ErrEmptyRequestMessageID = errors.New("request message id cannot be empty")

	// ErrEmptyResponseMessageID is returned when a caller passes an empty
	// response message id to LinkResponse.
	ErrEmptyResponseMessageID = errors.New("response message id cannot be empty")

	// ErrEmptyMessageID is returned by ObserveMessage for messages
	// without an id.
	ErrEmptyMessageID = errors.New("message id cannot be empty")

	// ErrSchedulerRunning is returned when Start is called on a running
	// cleanup scheduler.
	ErrSchedulerRunning = errors.New("cleanup scheduler is already running")

	// ErrSchedulerStopped is returned when Start is called on a scheduler
	// that has been stopped. Schedulers are not restartable.
	ErrSchedulerStopped = errors.New("cleanup scheduler has been stopped")
)
