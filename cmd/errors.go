package cmd

import "fmt"

// IssuesFoundError signals a completed audit that found problems. The report
// has already been printed, so Execute only turns it into exit status 1.
type IssuesFoundError struct {
	Count int
}

func (e *IssuesFoundError) Error() string {
	return fmt.Sprintf("%d issue(s) found", e.Count)
}

// PanicError wraps a panic recovered at the command boundary.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("unhandled error: %v", e.Value)
}
