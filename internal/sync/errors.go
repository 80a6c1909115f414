package sync

// ValidationError reports client-side field validation failure. No store
// write is attempted when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// SubmissionError wraps a failed store write so the caller can show the
// message and keep the form input for a retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "failed to add product: " + e.Err.Error() }

func (e *SubmissionError) Unwrap() error { return e.Err }
