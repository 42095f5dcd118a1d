package reconcile

import (
	"errors"
	"fmt"
)

// UnresolvedReferenceError reports a staged record pointing at another staged
// record that is missing, or that exists but was never bridged to the target.
type UnresolvedReferenceError struct {
	// Kind and ID identify the record holding the reference.
	Kind Kind
	ID   int64
	// RefKind and RefID identify the referenced record.
	RefKind Kind
	RefID   int64
	// Unbridged is true when the referenced record exists but has no target id.
	Unbridged bool
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Unbridged {
		return fmt.Sprintf("%s %d references %s %d which has no target record", e.Kind, e.ID, e.RefKind, e.RefID)
	}
	return fmt.Sprintf("%s %d references unknown %s %d", e.Kind, e.ID, e.RefKind, e.RefID)
}

// TargetServiceError wraps a rejection from the target identity or content service.
type TargetServiceError struct {
	// Op is the service operation that failed, e.g. "create_thread".
	Op  string
	Err error
}

func (e *TargetServiceError) Error() string {
	return fmt.Sprintf("target service %s failed: %v", e.Op, e.Err)
}

func (e *TargetServiceError) Unwrap() error {
	return e.Err
}

// TargetError wraps err as a TargetServiceError for op. A nil err stays nil.
func TargetError(op string, err error) error {
	if err == nil {
		return nil
	}
	var tse *TargetServiceError
	if errors.As(err, &tse) {
		return err
	}
	return &TargetServiceError{Op: op, Err: err}
}

// IsRecoverable reports whether err should drop the current record instead of
// aborting the run.
func IsRecoverable(err error) bool {
	var ure *UnresolvedReferenceError
	var tse *TargetServiceError
	return errors.As(err, &ure) || errors.As(err, &tse)
}
