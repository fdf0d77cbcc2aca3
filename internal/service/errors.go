package service

import "errors"

// ValidationError marks input the caller can fix. Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Sentinel errors returned by the service layer. Handlers map these to HTTP
// statuses.
var (
	// ErrContactNotFound is returned when a blocked contact does not exist for
	// the user.
	ErrContactNotFound = errors.New("blocked contact not found")

	// ErrContactNotBlocked is returned when an operation requires the contact
	// to still be actively blocked.
	ErrContactNotBlocked = errors.New("contact is not currently blocked")

	// ErrNoActiveGuardian is returned when an unblock flow is attempted before
	// a guardian has been set up.
	ErrNoActiveGuardian = errors.New("no active guardian configured")

	// ErrSelfGuardian is returned when a user nominates themselves.
	ErrSelfGuardian = errors.New("guardian cannot be the user themselves")

	// ErrPendingRequestExists is returned when a contact already has an
	// undecided unblock request.
	ErrPendingRequestExists = errors.New("an unblock request is already pending for this contact")

	// ErrCoolingOffIncomplete is returned when the mandatory wait has not
	// elapsed yet.
	ErrCoolingOffIncomplete = errors.New("cooling-off period has not elapsed")

	// ErrSessionNotFound is returned when a flow session id is unknown or the
	// session was abandoned.
	ErrSessionNotFound = errors.New("unblock flow session not found")

	// ErrNotPermitted is returned when a request does not exist or is not
	// addressed to the acting guardian. The two cases are deliberately
	// indistinguishable to the caller.
	ErrNotPermitted = errors.New("unblock request not found or not permitted")

	// ErrAlreadyResolved is returned when a guardian decides a request that has
	// already been decided.
	ErrAlreadyResolved = errors.New("unblock request has already been resolved")

	// ErrSyncInProgress is reported when a sync run is requested while another
	// is still running. The new run is suppressed, not queued.
	ErrSyncInProgress = errors.New("sync already in progress")
)
