package campaign

import (
	"errors"
	"fmt"
)

// ValidationError reports a transition precondition that was not met. The
// workflow phase is unchanged when one is returned; the message is suitable
// for direct display.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "campaign: " + e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RemoteError reports a failed generation or send exchange. The draft is
// preserved and the operation may be retried.
type RemoteError struct {
	Op      string // "generate" or "send"
	Message string // provider message, when one was returned
	Err     error  // transport error, when the exchange itself failed
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("campaign: %s failed: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("campaign: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("campaign: %s failed", e.Op)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
