package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Parse parses a Markdown document that may contain Cola code blocks.
func Parse(source string) (*Document, error) {
	p := &parser{lex: NewLexer(source)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseDocument()
}

// ParseCola parses bare Cola source, treating the whole input as the
// interior of an implicit Cola code block. The result is a Document holding
// a single ColaCodeBlock so that downstream stages see a uniform shape.
func ParseCola(source string) (*Document, error) {
	p := &parser{lex: NewColaLexer(source)}
	if err := p.next(); err != nil {
		return nil, err
	}
	block := &ColaCodeBlock{Pos: p.tok.Pos}
	entities, err := p.parseEntities(TokenEOF)
	if err != nil {
		return nil, err
	}
	block.Entities = entities
	return &Document{Items: []MarkdownItem{block}}, nil
}

// ParseFile reads and parses path. Files with a .cola extension are parsed
// as bare Cola source; everything else is treated as Markdown.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".cola") {
		return ParseCola(string(data))
	}
	return Parse(string(data))
}

// parser is a recursive-descent parser with one token of lookahead beyond
// the current token. It is stateless across invocations of Parse.
type parser struct {
	lex    *Lexer
	tok    Token
	peeked *Token
}

func (p *parser) next() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) peek() (Token, error) {
	if p.peeked == nil {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.tok.Kind != kind {
		return Token{}, p.unexpected(kind.String())
	}
	tok := p.tok
	if err := p.next(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *parser) unexpected(expected ...string) error {
	return &ParseError{
		Pos:      p.tok.Pos,
		Message:  "unexpected " + p.tok.Kind.String(),
		Expected: expected,
	}
}

func (p *parser) parseDocument() (*Document, error) {
	doc := &Document{}
	for p.tok.Kind != TokenEOF {
		switch p.tok.Kind {
		case TokenHeadingLine:
			doc.Items = append(doc.Items, &Heading{Text: strings.TrimSuffix(p.tok.Text, "\n"), Pos: p.tok.Pos})
			if err := p.next(); err != nil {
				return nil, err
			}
		case TokenParagraphLine:
			doc.Items = append(doc.Items, &Paragraph{Text: strings.TrimSuffix(p.tok.Text, "\n"), Pos: p.tok.Pos})
			if err := p.next(); err != nil {
				return nil, err
			}
		case TokenRegularCodeStartNamed, TokenRegularCodeStartUnnamed:
			block, err := p.parseRegularBlock()
			if err != nil {
				return nil, err
			}
			doc.Items = append(doc.Items, block)
		case TokenColaCodeStart:
			block := &ColaCodeBlock{Pos: p.tok.Pos}
			if err := p.next(); err != nil {
				return nil, err
			}
			entities, err := p.parseEntities(TokenColaCodeEnd)
			if err != nil {
				return nil, err
			}
			block.Entities = entities
			doc.Items = append(doc.Items, block)
		default:
			return nil, p.unexpected(
				TokenHeadingLine.String(), TokenParagraphLine.String(),
				TokenColaCodeStart.String(), TokenRegularCodeStartUnnamed.String(),
			)
		}
	}
	return doc, nil
}

func (p *parser) parseRegularBlock() (*RegularCodeBlock, error) {
	block := &RegularCodeBlock{Pos: p.tok.Pos}
	if p.tok.Kind == TokenRegularCodeStartNamed {
		block.Tag = strings.TrimSpace(strings.TrimSuffix(p.tok.Text, "\n")[3:])
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	for p.tok.Kind == TokenRegularCodeLine {
		block.Lines = append(block.Lines, strings.TrimSuffix(p.tok.Text, "\n"))
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenRegularCodeEnd); err != nil {
		return nil, err
	}
	return block, nil
}

// parseEntities parses the top level of a Cola block until the terminator
// (the closing fence, or EOF for an implicit block). Stray semicolons
// between entities are skipped.
func (p *parser) parseEntities(terminator TokenKind) ([]*Entity, error) {
	var entities []*Entity
	for {
		switch p.tok.Kind {
		case terminator:
			if err := p.next(); err != nil {
				return nil, err
			}
			return entities, nil
		case TokenSemicolon:
			if err := p.next(); err != nil {
				return nil, err
			}
		case TokenIdentifier:
			entity, err := p.parseEntity()
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		default:
			return nil, p.unexpected(TokenIdentifier.String(), terminator.String())
		}
	}
}

// parseEntity parses a full entity declaration starting at its identifier.
func (p *parser) parseEntity() (*Entity, error) {
	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	return p.parseEntityAfterName(name)
}

// parseEntityAfterName parses the remainder of an entity declaration once
// its leading identifier has been consumed.
func (p *parser) parseEntityAfterName(name Token) (*Entity, error) {
	entity := &Entity{Name: name.Text, Pos: name.Pos}

	if p.tok.Kind == TokenPlural {
		if err := p.next(); err != nil {
			return nil, err
		}
		plural, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		entity.Plural = plural.Text
	}

	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	body, err := p.parseEntityBody()
	if err != nil {
		return nil, err
	}
	entity.Body = body
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	return entity, nil
}

// parseEntityBody parses nested blocks up to, but not including, the
// terminating semicolon of the enclosing entity.
func (p *parser) parseEntityBody() ([]NestedBlock, error) {
	var blocks []NestedBlock
	for {
		switch p.tok.Kind {
		case TokenSemicolon:
			return blocks, nil
		case TokenIdentifier:
			name := p.tok
			ahead, err := p.peek()
			if err != nil {
				return nil, err
			}
			if ahead.Kind == TokenPlural {
				if err := p.next(); err != nil {
					return nil, err
				}
				entity, err := p.parseEntityAfterName(name)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, entity)
				continue
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenColon); err != nil {
				return nil, err
			}
			if isValueToken(p.tok.Kind) {
				list, err := p.parseFieldListAfter(name)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, list)
				continue
			}
			// Nested singular entity; its name and colon are already consumed.
			body, err := p.parseEntityBody()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenSemicolon); err != nil {
				return nil, err
			}
			blocks = append(blocks, &Entity{Name: name.Text, Body: body, Pos: name.Pos})
		default:
			return nil, p.unexpected(TokenIdentifier.String(), TokenSemicolon.String())
		}
	}
}

// parseFieldListAfter parses a comma-separated field list whose first field
// name and colon have already been consumed; the current token is the first
// field's value.
func (p *parser) parseFieldListAfter(first Token) (*FieldList, error) {
	list := &FieldList{Pos: first.Pos}
	value, err := p.parseFieldValue()
	if err != nil {
		return nil, err
	}
	list.Fields = append(list.Fields, Field{Name: first.Text, Value: value, Pos: first.Pos})

	for p.tok.Kind == TokenComma {
		if err := p.next(); err != nil {
			return nil, err
		}
		name, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseFieldValue()
		if err != nil {
			return nil, err
		}
		list.Fields = append(list.Fields, Field{Name: name.Text, Value: value, Pos: name.Pos})
	}
	return list, nil
}

func (p *parser) parseFieldValue() (FieldValue, error) {
	var kind FieldValueKind
	switch p.tok.Kind {
	case TokenQuotedStringDouble:
		kind = ValueQuotedDouble
	case TokenQuotedStringSingle:
		kind = ValueQuotedSingle
	case TokenNumber:
		kind = ValueNumber
	case TokenTrue:
		kind = ValueTrue
	case TokenFalse:
		kind = ValueFalse
	default:
		return FieldValue{}, p.unexpected(
			TokenQuotedStringDouble.String(), TokenQuotedStringSingle.String(),
			TokenNumber.String(), TokenTrue.String(), TokenFalse.String(),
		)
	}
	value := FieldValue{Kind: kind, Raw: p.tok.Text, Pos: p.tok.Pos}
	if err := p.next(); err != nil {
		return FieldValue{}, err
	}
	return value, nil
}

func isValueToken(kind TokenKind) bool {
	switch kind {
	case TokenQuotedStringDouble, TokenQuotedStringSingle, TokenNumber, TokenTrue, TokenFalse:
		return true
	}
	return false
}
