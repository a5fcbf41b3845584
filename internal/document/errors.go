package document

import "fmt"

// ToolError represents a failed poppler or ghostscript invocation.
type ToolError struct {
	Tool    string
	Path    string
	Message string
	Cause   error
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error for %s: %s: %v", e.Tool, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error for %s: %s", e.Tool, e.Path, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}
