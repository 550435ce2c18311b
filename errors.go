package taskweaver

import (
	"fmt"
	"strings"
)

// Position represents a position in the definition document.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// ParseError reports a structural problem in a definition document.
// Parsing stops at the first ParseError.
type ParseError struct {
	Pos     Position // Position where the error occurred
	Message string   // Error message
	Context string   // Surrounding content for context
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s at %s\nContext: %s", e.Message, e.Pos, e.Context)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// UnknownCommandError is the single validation failure kind for a
// definition that matched no known task shape. It is delivered by value
// through an ErrorSink, never returned from Validate.
type UnknownCommandError struct {
	Params []string
}

// Error implements the error interface. The text equals the message an
// UnknownTask appends to its sink.
func (e *UnknownCommandError) Error() string {
	return unknownCommandMessage(e.Params)
}

// NewParseError creates a new ParseError with context.
func NewParseError(pos Position, message, context string) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: message,
		Context: extractContext(context, pos),
	}
}

// extractContext extracts a snippet of text around the error position for context.
// It tries to include a few lines before and after the error.
func extractContext(content string, pos Position) string {
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return content
	}

	startLine := max(0, pos.Line-3)
	endLine := min(len(lines)-1, pos.Line+1)

	var b strings.Builder
	for i := startLine; i <= endLine; i++ {
		lineNum := i + 1
		if lineNum == pos.Line {
			b.WriteString(fmt.Sprintf("-> %d: %s\n", lineNum, lines[i]))
			if pos.Column <= len(lines[i])+1 {
				b.WriteString(strings.Repeat(" ", pos.Column+5) + "^\n")
			}
		} else {
			b.WriteString(fmt.Sprintf("   %d: %s\n", lineNum, lines[i]))
		}
	}

	return b.String()
}
