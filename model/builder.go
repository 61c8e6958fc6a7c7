package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mlwelles/colaGen/parser"
)

// BuildError is a single structural violation found while lowering the
// parse tree to the model.
type BuildError struct {
	Pos parser.Position
	Msg string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("model error at %s: %s", e.Pos, e.Msg)
}

// BuildErrors collects every violation found in one build pass, so several
// problems surface in a single run.
type BuildErrors []*BuildError

func (es BuildErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Build lowers a parsed document to a configuration model. The top-level
// entities of every Cola code block become children of the synthetic root,
// in document order. On any structural violation Build returns all
// accumulated errors and no model.
func Build(doc *parser.Document) (*Model, error) {
	b := &builder{m: NewModel()}
	for _, block := range doc.ColaBlocks() {
		for _, entity := range block.Entities {
			b.entity(b.m.RootID(), entity, "")
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return b.m, nil
}

type builder struct {
	m    *Model
	errs BuildErrors
}

func (b *builder) errorf(pos parser.Position, format string, args ...any) {
	b.errs = append(b.errs, &BuildError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// entity lowers one entity declaration under parent. declaredType overrides
// the entity's type for instances nested in a plural; empty means the
// entity's own name is its type.
func (b *builder) entity(parent NodeID, e *parser.Entity, declaredType string) {
	if e.IsPlural() {
		b.plural(parent, e)
		return
	}

	typeName := declaredType
	if typeName == "" {
		typeName = e.Name
	}
	id := b.m.AddNode(KindEntity, e.Name, typeName, parent, e.Pos)
	if err := b.m.AddChild(parent, id); err != nil {
		b.errorf(e.Pos, "%s", err)
		return
	}
	b.body(id, e)
}

// plural lowers `S plural P : body ;`: a plural node named P with singular
// type S, whose direct nested entities become instances of S keyed by their
// own names. A field list directly inside a plural has no entity to attach
// to and is rejected.
func (b *builder) plural(parent NodeID, e *parser.Entity) {
	id := b.m.AddNode(KindPlural, e.Plural, e.Name, parent, e.Pos)
	if err := b.m.AddChild(parent, id); err != nil {
		b.errorf(e.Pos, "%s", err)
		return
	}
	for _, block := range e.Body {
		switch block := block.(type) {
		case *parser.FieldList:
			b.errorf(block.Pos, "field list not allowed directly inside plural %q", e.Plural)
		case *parser.Entity:
			if block.IsPlural() {
				b.errorf(block.Pos, "plural %q not allowed directly inside plural %q", block.Plural, e.Plural)
				continue
			}
			b.entity(id, block, e.Name)
		}
	}
}

// body lowers the nested blocks of a singular entity: field lists become
// fields of the entity, nested entities become named children.
func (b *builder) body(id NodeID, e *parser.Entity) {
	for _, block := range e.Body {
		switch block := block.(type) {
		case *parser.FieldList:
			for _, f := range block.Fields {
				value, ok := b.value(f.Value)
				if !ok {
					continue
				}
				if err := b.m.SetField(id, f.Name, value); err != nil {
					b.errorf(f.Pos, "%s", err)
				}
			}
		case *parser.Entity:
			b.entity(id, block, "")
		}
	}
}

// value converts a lexical field value to a typed scalar.
func (b *builder) value(fv parser.FieldValue) (Value, bool) {
	switch fv.Kind {
	case parser.ValueQuotedDouble, parser.ValueQuotedSingle:
		return StringValue(unescape(fv.Raw[1 : len(fv.Raw)-1])), true
	case parser.ValueNumber:
		if strings.Contains(fv.Raw, ".") {
			f, err := strconv.ParseFloat(fv.Raw, 64)
			if err != nil {
				b.errorf(fv.Pos, "invalid float literal %q", fv.Raw)
				return Value{}, false
			}
			return FloatValue(f), true
		}
		i, err := strconv.ParseInt(strings.TrimPrefix(fv.Raw, "+"), 10, 64)
		if err != nil {
			b.errorf(fv.Pos, "integer literal %q out of 64-bit signed range", fv.Raw)
			return Value{}, false
		}
		return IntegerValue(i), true
	case parser.ValueTrue:
		return BooleanValue(true), true
	case parser.ValueFalse:
		return BooleanValue(false), true
	default:
		b.errorf(fv.Pos, "unknown value kind")
		return Value{}, false
	}
}

// unescape applies the backslash neutralizer: `\x` becomes `x` for any x.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
