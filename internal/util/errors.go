package util

import "errors"

// Admission and judging error kinds. Callers match with errors.Is rather
// than parsing message text.
var (
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrChallengeNotPublished = errors.New("challenge not published")
	ErrLanguageNotReady      = errors.New("no language baseline configured for this language")
	ErrSessionPaused         = errors.New("proctoring session is not active")
	ErrSessionNotFound       = errors.New("proctoring session not found")
	// Retryable: the caller should resubmit after a short delay.
	ErrSnapshotStillProcessing = errors.New("snapshot analysis is still in progress, retry shortly")

	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ErrInfrastructure marks execution failures caused by the judging
// infrastructure rather than the submitted code. Only these are retried.
var ErrInfrastructure = errors.New("judge infrastructure error")

// IsRetryable reports whether the caller may usefully retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSnapshotStillProcessing) || errors.Is(err, ErrInfrastructure)
}
