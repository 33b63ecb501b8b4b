package submission

import "errors"

// Messages returned to callers. They are fixed strings; internal error
// text is never exposed.
const (
	MsgEmailRequired    = "Email is required"
	MsgInvalidEmail     = "Invalid email format"
	MsgProcessingFailed = "Failed to process request"
)

// ErrProcessing marks any failure that is not caused by the client input:
// unreadable bodies, storage failures and unexpected panics.
var ErrProcessing = errors.New("processing failed")

// ValidationError is a client input error. Message is one of the fixed
// validation messages.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PublicMessage returns the text that may be shown to the caller for err.
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return MsgProcessingFailed
}
