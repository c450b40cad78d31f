package framework

import (
	"fmt"
	"strings"
)

// ResourceError is a failure attributed to a named resource, such as a
// link, a report publisher or a runner.
type ResourceError struct {
	Resource string
	Err      error
}

// Error implements error.
func (e *ResourceError) Error() string {
	return e.Resource + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// AggregatedError collects failures while releasing or running several
// resources, so one failure does not hide the others.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ""
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for n, err := range e.Errors {
		msgs[n] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add adds errors to be aggregated. nil is skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// AddFor adds err labeled with the resource it came from. nil is skipped.
func (e *AggregatedError) AddFor(resource string, err error) *AggregatedError {
	if err != nil {
		e.Errors = append(e.Errors, &ResourceError{Resource: resource, Err: err})
	}
	return e
}

// Aggregate returns the aggregated error if any error happened.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
