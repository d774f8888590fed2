package errors

var (
	// Domain errors returned by services and mapped onto HTTP responses
	ErrInvalidCredentials     = Unauthorized("invalid email or password")
	ErrMissingToken           = Unauthorized("missing session token")
	ErrSessionExpired         = Unauthorized("session expired")
	ErrUserNotFound           = NotFound("user not found")
	ErrRequestNotFound        = NotFound("request not found")
	ErrInvalidOutcome         = InvalidArg("status must be interested or ignored")
	ErrInvalidDecision        = InvalidArg("status must be accepted or rejected")
	ErrSelfDecision           = InvalidArg("cannot send a request to yourself")
	ErrAlreadyDecided         = AlreadyExists("a request between these users already exists")
	ErrRequestAlreadyResolved = FailedPrecondition("request has already been reviewed")
	ErrNotConnected           = Forbidden("users are not connected")
	ErrEmptyMessage           = InvalidArg("message body cannot be empty")

	// ErrSessionReset is returned by client calls whose result arrived after
	// the local session state was cleared.
	ErrSessionReset = FailedPrecondition("session was reset while the call was running")
)
