// ABOUTME: Typed remote-source errors for the sync boundary
// ABOUTME: Distinguishes login failures from rejected queries
package salesforce

// AuthError is a remote login failure. Fatal to the sync call; never
// retried automatically.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// QueryError is a malformed or rejected remote query. Fatal for the
// primary opportunity fetch; activity sub-queries downgrade it to an
// empty result instead.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
