package listfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"nbr/internal/resource"
)

const (
	clauseLocal     = "local"
	clauseOut       = "out"
	clauseResources = "resources"
)

var clauseAliases = map[string]string{
	"local":     clauseLocal,
	"local_dir": clauseLocal,
	"out":       clauseOut,
	"out_dir":   clauseOut,
	"resources": clauseResources,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type parser struct {
	tokens []Token
	pos    int
}

// Parse builds a ListContext from a token stream in a single pass. On error
// the returned context is nil.
func Parse(tokens []Token) (*ListContext, error) {
	p := &parser{tokens: tokens}
	ctx := &ListContext{}
	for p.peek().Kind != EOF {
		section, err := p.section()
		if err != nil {
			return nil, err
		}
		ctx.Sections = append(ctx.Sections, section)
	}
	if len(ctx.Sections) == 0 {
		return nil, &ParseError{Token: p.peek(), Msg: "list file declares no sections"}
	}
	return ctx, nil
}

// Compile lexes and parses src.
func Compile(src string) (*ListContext, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Load reads and compiles the list file at path. Relative section
// directories are resolved against the list file's directory.
func Load(path string) (*ListContext, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve list path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	ctx, err := Compile(string(bytes.TrimPrefix(data, utf8BOM)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	ctx.Path = abs
	base := filepath.Dir(abs)
	for i := range ctx.Sections {
		ctx.Sections[i].LocalDir = resolveDir(base, ctx.Sections[i].LocalDir)
		ctx.Sections[i].OutDir = resolveDir(base, ctx.Sections[i].OutDir)
	}
	return ctx, nil
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

func (p *parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		return Token{Kind: EOF, Line: last.Line, Column: last.Column + len(last.Text)}
	}
	return Token{Kind: EOF, Line: 1, Column: 1}
}

func (p *parser) take() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) expectDelimiter(d, context string) error {
	tok := p.take()
	if tok.IsDelimiter(d) {
		return nil
	}
	return p.unexpected(tok, fmt.Sprintf("expected %q %s", d, context))
}

// unexpected reports tok, naming premature end of input explicitly.
func (p *parser) unexpected(tok Token, msg string) error {
	if tok.Kind == EOF {
		msg = "unexpected end of file: " + msg
	}
	return &ParseError{Token: tok, Msg: msg}
}

func (p *parser) section() (ListSection, error) {
	open := p.take()
	braced := open.Kind == SectionKeyword
	if !braced && !open.IsDelimiter("[") {
		return ListSection{}, p.unexpected(open, `expected "section" or "[" to open a section`)
	}

	typeTok := p.take()
	if typeTok.Kind != Identifier {
		return ListSection{}, p.unexpected(typeTok, "expected resource type")
	}
	typ, ok := resource.Parse(typeTok.Text)
	if !ok {
		return ListSection{}, &UnknownResourceTypeError{Token: typeTok}
	}

	if braced {
		if err := p.expectDelimiter("{", "after section type"); err != nil {
			return ListSection{}, err
		}
	} else if err := p.expectDelimiter("]", "after section type"); err != nil {
		return ListSection{}, err
	}

	section := ListSection{Type: typ}
	seen := make(map[string]bool, len(clauseAliases))
	for {
		tok := p.peek()
		if braced && tok.IsDelimiter("}") {
			p.take()
			break
		}
		if tok.Kind != Identifier {
			if braced {
				return ListSection{}, p.unexpected(tok, `expected clause or "}"`)
			}
			break
		}
		clause, ok := clauseAliases[tok.Text]
		if !ok {
			return ListSection{}, &ParseError{Token: tok, Msg: "unknown clause"}
		}
		if seen[clause] {
			return ListSection{}, &ParseError{Token: tok, Msg: fmt.Sprintf("duplicate %s clause", clause)}
		}
		seen[clause] = true
		p.take()
		if p.peek().IsDelimiter("=") {
			p.take()
		}

		switch clause {
		case clauseLocal:
			dir, err := p.path(clause)
			if err != nil {
				return ListSection{}, err
			}
			section.LocalDir = dir
		case clauseOut:
			dir, err := p.path(clause)
			if err != nil {
				return ListSection{}, err
			}
			section.OutDir = dir
		case clauseResources:
			resources, err := p.resourceList()
			if err != nil {
				return ListSection{}, err
			}
			section.Resources = resources
		}
	}

	for _, clause := range []string{clauseLocal, clauseOut, clauseResources} {
		if !seen[clause] {
			return ListSection{}, &ParseError{Token: typeTok, Msg: fmt.Sprintf("%s section is missing its %s clause", typ, clause)}
		}
	}
	return section, nil
}

func (p *parser) path(clause string) (string, error) {
	tok := p.take()
	if !tok.IsLiteral() {
		return "", p.unexpected(tok, fmt.Sprintf("expected quoted path after %s", clause))
	}
	if tok.Text == "" {
		return "", &ParseError{Token: tok, Msg: fmt.Sprintf("empty %s path", clause)}
	}
	return tok.Text, nil
}

func (p *parser) resourceList() ([]string, error) {
	if err := p.expectDelimiter("[", "to open resource list"); err != nil {
		return nil, err
	}
	resources := []string{}
	for {
		tok := p.take()
		switch {
		case tok.IsDelimiter("]"):
			return resources, nil
		case tok.IsLiteral():
			if tok.Text == "" {
				return nil, &ParseError{Token: tok, Msg: "empty resource path"}
			}
			resources = append(resources, tok.Text)
			if p.peek().IsDelimiter(",") {
				p.take()
			}
		default:
			return nil, p.unexpected(tok, `malformed resource list: expected quoted path or "]"`)
		}
	}
}
