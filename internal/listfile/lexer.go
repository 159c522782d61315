package listfile

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	keywordSection = "section"
	delimiters     = "{}[]=,"
)

type lexer struct {
	src    string
	pos    int
	line   int
	column int
	tokens []Token
}

// Lex tokenizes a whole list file. The returned stream always ends with an
// EOF token.
func Lex(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, column: 1}
	for {
		lx.skipSpaceAndComments()
		if lx.pos >= len(lx.src) {
			lx.tokens = append(lx.tokens, Token{Kind: EOF, Line: lx.line, Column: lx.column})
			return lx.tokens, nil
		}
		if err := lx.next(); err != nil {
			return nil, err
		}
	}
}

func (lx *lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		switch r := lx.peek(); {
		case r == '#':
			for lx.pos < len(lx.src) && lx.peek() != '\n' {
				lx.advance()
			}
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			lx.advance()
		default:
			return
		}
	}
}

func (lx *lexer) next() error {
	line, column := lx.line, lx.column
	r := lx.peek()
	switch {
	case r == '"':
		return lx.literal(line, column)
	case isIdentStart(r):
		start := lx.pos
		for lx.pos < len(lx.src) && isIdentPart(lx.peek()) {
			lx.advance()
		}
		text := lx.src[start:lx.pos]
		kind := Identifier
		if text == keywordSection {
			kind = SectionKeyword
		}
		lx.emit(kind, text, line, column)
		return nil
	case strings.ContainsRune(delimiters, r):
		lx.advance()
		lx.emit(Delimiter, string(r), line, column)
		return nil
	case r == utf8.RuneError:
		return &LexError{Line: line, Column: column, Msg: "invalid UTF-8 encoding"}
	default:
		return &LexError{Line: line, Column: column, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
}

// literal scans a double-quoted literal. \" and \\ are escapes; any other
// backslash is kept so Windows paths survive unchanged.
func (lx *lexer) literal(line, column int) error {
	lx.advance()
	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return &LexError{Line: line, Column: column, Msg: "unterminated literal"}
		}
		r := lx.peek()
		switch r {
		case '"':
			lx.advance()
			text := b.String()
			lx.emit(classifyLiteral(text), text, line, column)
			return nil
		case '\n':
			return &LexError{Line: line, Column: column, Msg: "unterminated literal (newline before closing quote)"}
		case '\\':
			lx.advance()
			if lx.pos < len(lx.src) {
				if next := lx.peek(); next == '"' || next == '\\' {
					b.WriteRune(lx.advance())
					continue
				}
			}
			b.WriteRune('\\')
		default:
			if r == utf8.RuneError {
				if _, size := utf8.DecodeRuneInString(lx.src[lx.pos:]); size <= 1 {
					return &LexError{Line: lx.line, Column: lx.column, Msg: "invalid UTF-8 encoding"}
				}
			}
			b.WriteRune(lx.advance())
		}
	}
}

func (lx *lexer) emit(kind Kind, text string, line, column int) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text, Line: line, Column: column})
}

func classifyLiteral(text string) Kind {
	if strings.ContainsAny(text, `/\`) || filepath.Ext(text) != "" {
		return PathLiteral
	}
	return StringLiteral
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
