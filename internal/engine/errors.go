package engine

import "fmt"

// AcousticModelError reports a failed call to one of the neural models, or a
// model that answered with the wrong number of values.
type AcousticModelError struct {
	Op      string // "duration", "intonation" or "decode"
	Message string
}

func (e *AcousticModelError) Error() string {
	return fmt.Sprintf("acoustic model %s: %s", e.Op, e.Message)
}

func modelError(op string, err error) error {
	return &AcousticModelError{Op: op, Message: err.Error()}
}

func lengthError(op string, got, want int) error {
	return &AcousticModelError{Op: op, Message: fmt.Sprintf("returned %d values, want %d", got, want)}
}
