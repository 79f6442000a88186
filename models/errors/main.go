package errors

import "fmt"

/*
	Typed errors raised by the case loading pipeline.
	Handlers switch on these to pick response codes;
	everything here is terminal for the current upload.
*/

// ValidationError covers missing files, malformed VCF
// structure and wrong variant-type content. Raised before
// any storage write has happened.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DuplicationError signals that a new sample's profile
// hard-matched an individual already on file.
type DuplicationError struct {
	Message string
}

func (e *DuplicationError) Error() string {
	return e.Message
}

// ConflictError signals that the case id is already taken.
type ConflictError struct {
	CaseId string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Case %s already exists", e.CaseId)
}

// IngestionError wraps a failure that happened after the case
// document was persisted. RollbackErr is set when the
// compensating case deletion failed too, in which case the
// case may be partially loaded and needs cleanup.
type IngestionError struct {
	CaseId      string
	Cause       error
	RollbackErr error
}

func (e *IngestionError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf(
			"ingestion of case %s failed: %v (rollback also failed: %v -- case may be partially loaded)",
			e.CaseId, e.Cause, e.RollbackErr)
	}
	return fmt.Sprintf("ingestion of case %s failed and was rolled back: %v", e.CaseId, e.Cause)
}

func (e *IngestionError) Unwrap() error {
	return e.Cause
}
