package errors

var (
	// Domain errors for the matching engine
	ErrRequesterBanned      = Forbidden("requester is banned from matching")
	ErrRequestAlreadyActive = AlreadyExists("requester already has a waiting match request")
	ErrInvalidIntent        = InvalidArg("invalid intent")
	ErrInvalidMood          = InvalidArg("invalid mood")
	ErrRequestNotFound      = NotFound("match request not found")
	ErrRequestNotWaiting    = FailedPrecondition("match request is no longer waiting")
	ErrNoActiveRequest      = NotFound("no waiting match request for requester")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrInvalidToken         = Unauthorized("invalid or expired token")
)

func ErrSubmitFailed(cause error) error {
	return Wrap(CodeInternal, "failed to submit match request", cause)
}

func ErrCancelFailed(cause error) error {
	return Wrap(CodeInternal, "failed to cancel match request", cause)
}
