package services

import (
	"context"
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnsupportedFormat             ErrorKind = "UnsupportedFormat"
	KindCorruptDocument               ErrorKind = "CorruptDocument"
	KindEmptyContent                  ErrorKind = "EmptyContent"
	KindPayloadTooLarge               ErrorKind = "PayloadTooLarge"
	KindTimeout                       ErrorKind = "Timeout"
	KindBusy                          ErrorKind = "Busy"
	KindInternalFailure               ErrorKind = "InternalFailure"
	KindExternalCapabilityUnavailable ErrorKind = "ExternalCapabilityUnavailable"
)

// Messages returned to callers. Causes stay in the logs.
var safeMessages = map[ErrorKind]string{
	KindUnsupportedFormat:             "The uploaded file type is not supported. Please upload a PDF, DOCX or plain text resume.",
	KindCorruptDocument:               "The uploaded document could not be read. Please check the file and try again.",
	KindEmptyContent:                  "No readable text was found in the uploaded document.",
	KindPayloadTooLarge:               "The uploaded document exceeds the maximum allowed size.",
	KindTimeout:                       "The analysis took too long to complete. Please try again.",
	KindBusy:                          "The analyzer is busy. Please try again shortly.",
	KindInternalFailure:               "Something went wrong while analyzing the resume.",
	KindExternalCapabilityUnavailable: "The summary generator is unavailable.",
}

// AnalysisError carries a classification, a caller-safe message and the
// underlying cause.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) *AnalysisError {
	return &AnalysisError{
		Kind:    kind,
		Message: safeMessages[kind],
		Err:     err,
	}
}

// KindOf classifies any error produced while analyzing a resume. Context
// expiry and cancellation are reported as timeouts; anything unrecognised is
// an internal failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	return KindInternalFailure
}

// SafeMessage returns the caller-facing message for err.
func SafeMessage(err error) string {
	return safeMessages[KindOf(err)]
}

// asAnalysisError converts err into an *AnalysisError, keeping an existing
// classification when there is one.
func asAnalysisError(err error) *AnalysisError {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr
	}
	return newError(KindOf(err), err)
}
