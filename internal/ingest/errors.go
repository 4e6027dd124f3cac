package ingest

import "fmt"

// Stable error codes persisted with quarantined records
const (
	CodeMissingCaseNumber = "MISSING_CASE_NUMBER"
	CodeBadDate           = "BAD_DATE"
	CodeStatusUnmapped    = "STATUS_UNMAPPED"
	CodeCourt             = "FK_COURT"
	CodeCaseType          = "FK_CASE_TYPE"
	CodeJudge             = "FK_JUDGE"
	CodeParty             = "FK_PARTY"
	CodeValidation        = "VALIDATION_ERROR"
	CodePersistence       = "PERSISTENCE_ERROR"
)

// ErrorKind classifies a record-level failure
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindResolution
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindResolution:
		return "resolution"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// RecordError is a typed per-record failure. It is returned, never panicked,
// up to the record boundary where the pipeline quarantines the record and
// continues with the rest of the batch.
type RecordError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *RecordError) Error() string {
	return e.Message
}

func validationErr(code, format string, args ...interface{}) *RecordError {
	return &RecordError{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func resolutionErr(code, format string, args ...interface{}) *RecordError {
	return &RecordError{Kind: KindResolution, Code: code, Message: fmt.Sprintf(format, args...)}
}

func persistenceErr(err error) *RecordError {
	return &RecordError{Kind: KindPersistence, Code: CodePersistence, Message: err.Error()}
}
