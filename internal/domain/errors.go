package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed caller input. It is fatal and never retried.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// UpstreamHTTPError is a non-2xx response from a NOTAM source.
type UpstreamHTTPError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Source, e.StatusCode, e.Body)
}

// UpstreamAPIError is a 2xx response whose body carries an error field.
type UpstreamAPIError struct {
	Source  string
	Status  string
	Message string
	Detail  string
}

func (e *UpstreamAPIError) Error() string {
	status := e.Status
	if status == "" {
		status = NumberUnavailable
	}
	detail := e.Detail
	if detail == "" {
		detail = "No message."
	}
	return fmt.Sprintf("%s API error (%s): %s - %s", e.Source, status, e.Message, detail)
}

// ParseError describes malformed nested JSON from the secondary source. It is
// logged by the normalizer and never returned to callers.
type ParseError struct {
	Source string
	ID     string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s record %s: %v", e.Source, e.ID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AggregateFetchError is returned when no source produced records and the
// primary source failed.
type AggregateFetchError struct {
	ICAO      string
	Primary   error
	Secondary error
}

func (e *AggregateFetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no NOTAMs retrieved for %s: primary: %v", e.ICAO, e.Primary)
	if e.Secondary != nil {
		fmt.Fprintf(&b, "; secondary: %v", e.Secondary)
	}
	return b.String()
}

func (e *AggregateFetchError) Unwrap() []error {
	errs := []error{e.Primary}
	if e.Secondary != nil {
		errs = append(errs, e.Secondary)
	}
	return errs
}

// BudgetExceededError reports that reduction hit the record floor while still
// above the token budget. Callers are expected to truncate rather than abort.
type BudgetExceededError struct {
	Tokens  int
	Budget  int
	Records int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("token budget exceeded: ~%d tokens for %d records (budget %d)", e.Tokens, e.Records, e.Budget)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
