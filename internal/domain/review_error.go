package domain

import "fmt"

// ErrorKind groups review errors by how a caller should react to them.
type ErrorKind string

const (
	// KindAuthorization errors are fatal and never retried.
	KindAuthorization ErrorKind = "authorization"
	// KindPrecondition errors are safe to retry once the caller fixes state.
	KindPrecondition ErrorKind = "precondition"
	// KindPolicy errors are terminal; the caller must switch to another process.
	KindPolicy ErrorKind = "policy"
	// KindDependency errors are transient and may be retried with backoff.
	KindDependency ErrorKind = "dependency"
)

func (k ErrorKind) String() string { return string(k) }

// ErrorCode is the stable machine-readable code of a ReviewError.
type ErrorCode string

const (
	CodeNotAuthenticated  ErrorCode = "NotAuthenticated"
	CodeInsufficientRole  ErrorCode = "InsufficientRole"
	CodeReadOnlyOversight ErrorCode = "ReadOnlyOversight"

	CodeArtifactNotFound       ErrorCode = "ArtifactNotFound"
	CodeAlreadyReviewed        ErrorCode = "AlreadyReviewed"
	CodeAlreadyReplaced        ErrorCode = "AlreadyReplaced"
	CodeNoOutstandingReferral  ErrorCode = "NoOutstandingReferral"
	CodeNotPending             ErrorCode = "NotPending"
	CodePendingArtifacts       ErrorCode = "PendingArtifacts"
	CodeNothingRejected        ErrorCode = "NothingRejected"
	CodeUnresolvedArtifacts    ErrorCode = "UnresolvedArtifacts"
	CodeNothingToResubmit      ErrorCode = "NothingToResubmit"
	CodeApplicationClosed      ErrorCode = "ApplicationClosed"
	CodeApplicationLocked      ErrorCode = "ApplicationLocked"
	CodeNotLocked              ErrorCode = "NotLocked"
	CodeNotUnderReview         ErrorCode = "NotUnderReview"
	CodeOrientationNotRequired ErrorCode = "OrientationNotRequired"
	CodeAlreadyScheduled       ErrorCode = "AlreadyScheduled"
	CodeFileNotFound           ErrorCode = "FileNotFound"
	CodeNotScheduled           ErrorCode = "NotScheduled"
	CodeAlreadyCheckedIn       ErrorCode = "AlreadyCheckedIn"
	CodeNotCheckedIn           ErrorCode = "NotCheckedIn"
	CodeAlreadyCheckedOut      ErrorCode = "AlreadyCheckedOut"

	CodeMaxAttemptsExceeded ErrorCode = "MaxAttemptsExceeded"
	CodeNotResubmittable    ErrorCode = "NotResubmittable"

	CodeStorageUnavailable ErrorCode = "StorageUnavailable"
)

func (c ErrorCode) String() string { return string(c) }

// Kind returns the kind every error with this code belongs to.
func (c ErrorCode) Kind() ErrorKind {
	switch c {
	case CodeNotAuthenticated, CodeInsufficientRole, CodeReadOnlyOversight:
		return KindAuthorization
	case CodeMaxAttemptsExceeded, CodeNotResubmittable:
		return KindPolicy
	case CodeStorageUnavailable:
		return KindDependency
	default:
		return KindPrecondition
	}
}

// ReviewError is a business-rule failure returned by review operations.
// Two ReviewErrors match under errors.Is when their codes are equal.
type ReviewError struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
}

func (e *ReviewError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ReviewError) Is(target error) bool {
	t, ok := target.(*ReviewError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *ReviewError) Retryable() bool {
	return e.Kind == KindDependency
}

// NewReviewError creates a ReviewError whose kind is derived from code.
func NewReviewError(code ErrorCode, format string, args ...any) *ReviewError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &ReviewError{Kind: code.Kind(), Code: code, Message: msg}
}

// Match targets for errors.Is.
var (
	ErrNotAuthenticated  = &ReviewError{Kind: KindAuthorization, Code: CodeNotAuthenticated}
	ErrInsufficientRole  = &ReviewError{Kind: KindAuthorization, Code: CodeInsufficientRole}
	ErrReadOnlyOversight = &ReviewError{Kind: KindAuthorization, Code: CodeReadOnlyOversight}

	ErrArtifactNotFound       = &ReviewError{Kind: KindPrecondition, Code: CodeArtifactNotFound}
	ErrAlreadyReviewed        = &ReviewError{Kind: KindPrecondition, Code: CodeAlreadyReviewed}
	ErrAlreadyReplaced        = &ReviewError{Kind: KindPrecondition, Code: CodeAlreadyReplaced}
	ErrNoOutstandingReferral  = &ReviewError{Kind: KindPrecondition, Code: CodeNoOutstandingReferral}
	ErrNotPending             = &ReviewError{Kind: KindPrecondition, Code: CodeNotPending}
	ErrPendingArtifacts       = &ReviewError{Kind: KindPrecondition, Code: CodePendingArtifacts}
	ErrNothingRejected        = &ReviewError{Kind: KindPrecondition, Code: CodeNothingRejected}
	ErrUnresolvedArtifacts    = &ReviewError{Kind: KindPrecondition, Code: CodeUnresolvedArtifacts}
	ErrNothingToResubmit      = &ReviewError{Kind: KindPrecondition, Code: CodeNothingToResubmit}
	ErrApplicationClosed      = &ReviewError{Kind: KindPrecondition, Code: CodeApplicationClosed}
	ErrApplicationLocked      = &ReviewError{Kind: KindPrecondition, Code: CodeApplicationLocked}
	ErrNotLocked              = &ReviewError{Kind: KindPrecondition, Code: CodeNotLocked}
	ErrNotUnderReview         = &ReviewError{Kind: KindPrecondition, Code: CodeNotUnderReview}
	ErrOrientationNotRequired = &ReviewError{Kind: KindPrecondition, Code: CodeOrientationNotRequired}
	ErrAlreadyScheduled       = &ReviewError{Kind: KindPrecondition, Code: CodeAlreadyScheduled}
	ErrFileNotFound           = &ReviewError{Kind: KindPrecondition, Code: CodeFileNotFound}
	ErrNotScheduled           = &ReviewError{Kind: KindPrecondition, Code: CodeNotScheduled}
	ErrAlreadyCheckedIn       = &ReviewError{Kind: KindPrecondition, Code: CodeAlreadyCheckedIn}
	ErrNotCheckedIn           = &ReviewError{Kind: KindPrecondition, Code: CodeNotCheckedIn}
	ErrAlreadyCheckedOut      = &ReviewError{Kind: KindPrecondition, Code: CodeAlreadyCheckedOut}

	ErrMaxAttemptsExceeded = &ReviewError{Kind: KindPolicy, Code: CodeMaxAttemptsExceeded}
	ErrNotResubmittable    = &ReviewError{Kind: KindPolicy, Code: CodeNotResubmittable}

	ErrStorageUnavailable = &ReviewError{Kind: KindDependency, Code: CodeStorageUnavailable}
)
