package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryStructural Category = "structural"
	CategoryHydration  Category = "hydration"
	CategoryProperty   Category = "property"
	CategoryComponent  Category = "component"
	CategoryDOM        Category = "dom"
)

// Location describes where in a description tree an error occurred.
// Path is a slash-separated trail of tags and child indexes, e.g.
// "div/ul/li[2]".
type Location struct {
	Path string
	Tag  string
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Tag != "" && l.Path == "" {
		return "<" + l.Tag + ">"
	}
	return l.Path
}

// VerdantError is a structured error with a code, category, tree location,
// and fix suggestion.
type VerdantError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (structural, hydration, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in the description tree the error occurred.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VerdantError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Location != nil {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Location.String())
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VerdantError) Unwrap() error {
	return e.Wrapped
}

// WithPath adds a description-tree path to the error.
func (e *VerdantError) WithPath(path string) *VerdantError {
	if e.Location == nil {
		e.Location = &Location{}
	}
	e.Location.Path = path
	return e
}

// WithTag records the tag of the offending description.
func (e *VerdantError) WithTag(tag string) *VerdantError {
	if e.Location == nil {
		e.Location = &Location{}
	}
	e.Location.Tag = tag
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VerdantError) WithSuggestion(s string) *VerdantError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VerdantError) WithDetail(d string) *VerdantError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VerdantError) Wrap(err error) *VerdantError {
	e.Wrapped = err
	return e
}

// New creates a VerdantError from a registered error code.
func New(code string) *VerdantError {
	template, ok := registry[code]
	if !ok {
		return &VerdantError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VerdantError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new VerdantError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VerdantError {
	return &VerdantError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a VerdantError.
func FromError(err error, code string) *VerdantError {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*VerdantError); ok {
		return ve
	}
	return New(code).Wrap(err)
}

// IsCategory reports whether err is, or wraps, a VerdantError of the
// given category.
func IsCategory(err error, c Category) bool {
	var ve *VerdantError
	if !errors.As(err, &ve) {
		return false
	}
	return ve.Category == c
}
