package layout

import (
	"fmt"
	"strings"
)

// Error reports a layout that could not be read, validated or built.
type Error struct {
	Path    string // source file, empty for in-memory input
	Pointer string // JSON pointer into the document, when known
	Line    int    // 1-based source position, when known
	Column  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	if e.Pointer != "" {
		b.WriteString(e.Pointer)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// withPath stamps the source file onto err if it is a layout error.
func withPath(err error, path string) error {
	if le, ok := err.(*Error); ok && le.Path == "" {
		le.Path = path
	}
	return err
}
