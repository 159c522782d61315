package listfile

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	EOF Kind = iota
	SectionKeyword
	Identifier
	PathLiteral
	StringLiteral
	Delimiter
)

var kindNames = [...]string{
	EOF:            "end of file",
	SectionKeyword: "section keyword",
	Identifier:     "identifier",
	PathLiteral:    "path literal",
	StringLiteral:  "string literal",
	Delimiter:      "delimiter",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Token is one lexeme of a list file. Line and Column are 1-based; Column
// counts runes.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

// IsLiteral reports whether the token is a quoted literal of either kind.
func (t Token) IsLiteral() bool {
	return t.Kind == PathLiteral || t.Kind == StringLiteral
}

// IsDelimiter reports whether the token is the delimiter d.
func (t Token) IsDelimiter(d string) bool {
	return t.Kind == Delimiter && t.Text == d
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Text)
}

// Position renders the token location as line:column.
func (t Token) Position() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
