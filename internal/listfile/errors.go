package listfile

import (
	"errors"
	"fmt"
)

// ErrFrontEnd matches every error produced while compiling a list file.
var ErrFrontEnd = errors.New("invalid list file")

// LexError reports a character sequence the lexer could not tokenize.
type LexError struct {
	Line   int
	Column int
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *LexError) Is(target error) bool {
	return target == ErrFrontEnd
}

// ParseError reports a structurally malformed section.
type ParseError struct {
	Token Token
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (found %s)", e.Token.Position(), e.Msg, e.Token)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrFrontEnd
}

// UnknownResourceTypeError reports a section whose type identifier is not a
// known resource type.
type UnknownResourceTypeError struct {
	Token Token
}

func (e *UnknownResourceTypeError) Error() string {
	return fmt.Sprintf("%s: unknown resource type %q", e.Token.Position(), e.Token.Text)
}

func (e *UnknownResourceTypeError) Is(target error) bool {
	return target == ErrFrontEnd
}
