package session

// CredentialError reports bad sign-in or sign-up input: an email that is
// already registered, a password policy violation, or a credential mismatch.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string { return e.Reason }

// SessionInitError reports that fallback identity establishment failed. The
// caller falls back to the unauthenticated screen instead of retrying.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string { return "session init failed: " + e.Err.Error() }

func (e *SessionInitError) Unwrap() error { return e.Err }
