package services

import "fmt"

// QuestErrorCode enumerates the logical failures the progression engine can
// return. Handlers map these to HTTP statuses; none of them are tied to a
// transport.
type QuestErrorCode string

const (
	ErrCodeNotFound              QuestErrorCode = "NOT_FOUND"
	ErrCodeAlreadyStarted        QuestErrorCode = "ALREADY_STARTED"
	ErrCodePrerequisitesNotMet   QuestErrorCode = "PREREQUISITES_NOT_MET"
	ErrCodeNotStarted            QuestErrorCode = "NOT_STARTED"
	ErrCodeAlreadyCompleted      QuestErrorCode = "ALREADY_COMPLETED"
	ErrCodeStepNotFound          QuestErrorCode = "STEP_NOT_FOUND"
	ErrCodeStepAlreadyCompleted  QuestErrorCode = "STEP_ALREADY_COMPLETED"
	ErrCodePreviousStepsRequired QuestErrorCode = "PREVIOUS_STEPS_REQUIRED"

	// ErrCodeAlreadyExists covers duplicate unique fields outside the
	// progression state machine (registration address/username/email).
	ErrCodeAlreadyExists QuestErrorCode = "ALREADY_EXISTS"
)

// QuestError is a precondition violation returned as the primary failure of
// an engine operation. Persistence failures are returned as plain errors and
// must not be conflated with these.
type QuestError struct {
	Code    QuestErrorCode
	Message string
}

func (e *QuestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func questErr(code QuestErrorCode, message string) *QuestError {
	return &QuestError{Code: code, Message: message}
}

// AsQuestError unwraps err into a *QuestError if it is one.
func AsQuestError(err error) (*QuestError, bool) {
	qe, ok := err.(*QuestError)
	return qe, ok
}
