package booking

import "errors"

var (
	// ErrNotFound indicates an unknown booking id.
	ErrNotFound = errors.New("booking not found")
	// ErrTaskAlreadyConverted indicates the task already has a booking; the
	// caller lost the conversion race or is acting on a stale view.
	ErrTaskAlreadyConverted = errors.New("task already converted to a booking")
	// ErrTaskNotRequested indicates conversion was attempted on a task that
	// is not awaiting a provider response.
	ErrTaskNotRequested = errors.New("task is not in requested state")
	// ErrTerminal indicates a transition was attempted from COMPLETED or
	// CANCELLED.
	ErrTerminal = errors.New("booking is in a terminal state")
	// ErrInvalidState indicates a transition from the wrong live state,
	// e.g. completing a booking that was never started.
	ErrInvalidState = errors.New("booking is not in the required state")
	// ErrNotAuthorized indicates the actor is neither the client nor the
	// assigned provider of the booking.
	ErrNotAuthorized = errors.New("actor is not a party to this booking")
)
