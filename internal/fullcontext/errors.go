package fullcontext

import "fmt"

// LabelParseError reports a label in which a required field is missing.
type LabelParseError struct {
	Label string
	Key   string
}

func (e *LabelParseError) Error() string {
	return fmt.Sprintf("malformed label: field %s not found in %q", e.Key, e.Label)
}

// StructuralError reports labels that cannot be grouped into a valid prosodic tree.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "invalid prosodic structure: " + e.Msg
}

func structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}
