// ABOUTME: Typed persistence errors carrying operation context
// ABOUTME: Lets the HTTP boundary map store failures without string matching
package store

// PersistenceError wraps a local store failure with the operation that
// produced it. Fatal to the write in progress; bulk writes roll back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
