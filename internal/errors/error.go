package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategorySource Category = "source"
	CategoryServe  Category = "serve"
	CategoryCLI    Category = "cli"
)

// HubError is a structured error with a code, fix suggestion, and
// documentation link, formatted for terminal display.
type HubError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (config, source, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is configuration showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HubError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HubError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HubError) WithSuggestion(s string) *HubError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *HubError) WithExample(ex string) *HubError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HubError) WithDetail(d string) *HubError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *HubError) Wrap(err error) *HubError {
	e.Wrapped = err
	return e
}

// New creates a HubError from a registered error code.
func New(code string) *HubError {
	template, ok := registry[code]
	if !ok {
		return &HubError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HubError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new HubError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HubError {
	return &HubError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HubError.
func FromError(err error, code string) *HubError {
	if err == nil {
		return nil
	}
	if he, ok := err.(*HubError); ok {
		return he
	}
	e := New(code)
	if e.Detail == "" {
		e.Detail = err.Error()
	}
	return e.Wrap(err)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var current strings.Builder

	for _, word := range words {
		if current.Len()+len(word)+1 > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}
