package revision

import "fmt"

// MalformedRevisionError reports a revision that failed ingestion validation.
// Ingestion is all-or-nothing: no partial model is ever returned, since a
// corrupt model would skew every downstream metric.
type MalformedRevisionError struct {
	ID     string // revision identifier, may be empty if the record had none
	Index  int    // position in the input sequence
	Reason string
}

func (e *MalformedRevisionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed revision at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed revision %q at index %d: %s", e.ID, e.Index, e.Reason)
}
