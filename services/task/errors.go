package task

import "errors"

var (
	// ErrNotFound indicates an unknown task id.
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyConverted indicates the task already became a booking;
	// further task mutations must happen on the booking instead.
	ErrAlreadyConverted = errors.New("task already converted to a booking")
	// ErrNotRequested indicates a provider response arrived while the task
	// was not awaiting one. The responder lost a race or holds a stale view.
	ErrNotRequested = errors.New("task is not awaiting a provider response")
	// ErrProviderNotMatched indicates the provider is not in the task's
	// matched list (or the task is not in a state where it could be).
	ErrProviderNotMatched = errors.New("provider is not matched to this task")
	// ErrTerminal indicates the task reached CANCELLED or EXPIRED and can
	// no longer change state.
	ErrTerminal = errors.New("task is in a terminal state")
	// ErrNotOpen indicates provider interest on a task that is neither
	// FLOATING nor MATCHED.
	ErrNotOpen = errors.New("task is not open to provider interest")
	// ErrProviderNotFound indicates an unknown or deleted provider id.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrValidation indicates input that passed binding but breaks a
	// domain rule (schedule window, location, service reference).
	ErrValidation = errors.New("invalid task input")
	// ErrConflict indicates the task changed state mid-operation. Safe to
	// retry after re-fetching.
	ErrConflict = errors.New("task state changed concurrently")
)
