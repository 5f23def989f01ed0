// Package errors turns raw filesystem errors into actionable errors with
// a category and suggestions the user can act on.
//
// The duplicate finder reports a failure per file instead of aborting, so
// every failed remove or link is passed through an Enricher before it is
// shown:
//
//	enricher := errors.NewEnricher()
//	if err := fs.Remove(path); err != nil {
//	    err = enricher.Enrich(err, path)
//	    fmt.Println(err)
//	    fmt.Println(errors.FormatSuggestions(err))
//	}
//
// The enricher extracts a path from the message when none is given:
//
//	err := errors.New("remove /data/a.jpg: read-only file system")
//	enriched := enricher.Enrich(err, "") // AffectedPath() == "/data/a.jpg"
//
// Enriched errors keep the original error in their chain, so errors.Is
// still matches fs.ErrPermission and friends.
package errors

import "strings"

// Exported constants.
const (
	CategoryContent     ErrorCategory = "content"
	CategoryCrossDevice ErrorCategory = "cross_device"
	CategoryPath        ErrorCategory = "path"
	CategoryPermission  ErrorCategory = "permission"
	CategoryReadOnly    ErrorCategory = "read_only"
	CategoryUnsupported ErrorCategory = "unsupported"
	CategoryUnknown     ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		affectedPath:  affectedPath,
	}
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// CategoryOf returns the category of err, or CategoryUnknown when err is not actionable.
func CategoryOf(err error) ErrorCategory {
	actionable, ok := asActionable(err)
	if !ok {
		return CategoryUnknown
	}

	return actionable.Category()
}

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list.
// Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := asActionable(err)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	affectedPath  string
	cause         error
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap returns the error that was enriched, if any.
func (e *actionableError) Unwrap() error {
	return e.cause
}
