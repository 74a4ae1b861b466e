package template

import "fmt"

// ParseError reports a template that is not well formed XML. Offset is the
// byte position the decoder had reached.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template parse error at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
