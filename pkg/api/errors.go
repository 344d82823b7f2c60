package api

import "fmt"

// UnreadableSourceError is returned when the report cannot be opened or read.
type UnreadableSourceError struct {
	Source string
	Err    error
}

func (e *UnreadableSourceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("unable to read report: %v", e.Err)
	}
	return fmt.Sprintf("unable to read report %s: %v", e.Source, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Err
}

// MalformedReportError is returned when the report is not an NUnit XML document.
type MalformedReportError struct {
	Source string
	Reason string
	Err    error
}

func (e *MalformedReportError) Error() string {
	msg := "malformed report"
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MalformedReportError) Unwrap() error {
	return e.Err
}
