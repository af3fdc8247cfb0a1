// Package errors provides structured, actionable error messages for the
// featurehub CLI.
//
// The errors package implements an error system that:
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues with configuration examples
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: Configuration errors (missing sources, empty page table)
//   - source: Module source errors (module not found, decode failures)
//   - serve: Server lifecycle errors (listen failures, shutdown timeouts)
//   - cli: Command-line usage errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E001").
//	    WithSuggestion("set sources.file.dir in featurehub.yaml")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: No module source configured
//	//
//	//   At least one module source backend must be configured so that
//	//   feature apps can be fetched.
//	//
//	//   Hint: set sources.file.dir in featurehub.yaml
//	//
//	//   Learn more: https://featurehub.dev/docs/errors/E001
package errors
