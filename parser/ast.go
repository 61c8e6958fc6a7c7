// Package parser turns Cola source text — bare .cola files or Markdown
// documents containing ```cola fenced code blocks — into a concrete parse
// tree. The parse tree mirrors the grammar; lowering to the configuration
// model happens in the model package.
package parser

// Document is the root of the parse tree: an ordered sequence of Markdown
// items. For bare Cola input it holds a single synthetic ColaCodeBlock.
type Document struct {
	Items []MarkdownItem
}

// ColaBlocks returns the Cola code blocks of the document in source order.
func (d *Document) ColaBlocks() []*ColaCodeBlock {
	var blocks []*ColaCodeBlock
	for _, item := range d.Items {
		if b, ok := item.(*ColaCodeBlock); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// MarkdownItem is a heading, paragraph, or fenced code block.
type MarkdownItem interface {
	markdownItem()
}

// Heading is a `#`-prefixed Markdown heading line.
type Heading struct {
	Text string
	Pos  Position
}

// Paragraph is a plain Markdown text line.
type Paragraph struct {
	Text string
	Pos  Position
}

// RegularCodeBlock is a fenced code block with any tag other than cola.
// Its contents are opaque and ignored by the model builder.
type RegularCodeBlock struct {
	Tag   string
	Lines []string
	Pos   Position
}

// ColaCodeBlock is a ```cola fenced block holding top-level entities.
type ColaCodeBlock struct {
	Entities []*Entity
	Pos      Position
}

func (*Heading) markdownItem()          {}
func (*Paragraph) markdownItem()        {}
func (*RegularCodeBlock) markdownItem() {}
func (*ColaCodeBlock) markdownItem()    {}

// Entity is a singular (`Name : body ;`) or plural
// (`Singular plural Collection : body ;`) declaration. Plural is empty for
// singular entities.
type Entity struct {
	Name   string
	Plural string
	Body   []NestedBlock
	Pos    Position
}

// IsPlural reports whether the entity was declared with the plural infix.
func (e *Entity) IsPlural() bool {
	return e.Plural != ""
}

// NestedBlock is either a comma-separated field list or a nested entity.
type NestedBlock interface {
	nestedBlock()
}

// FieldList is one comma-separated run of fields inside an entity body.
type FieldList struct {
	Fields []Field
	Pos    Position
}

func (*FieldList) nestedBlock() {}
func (*Entity) nestedBlock()    {}

// Field is a single `name : value` pair.
type Field struct {
	Name  string
	Value FieldValue
	Pos   Position
}

// FieldValueKind tags the lexical shape of a field value.
type FieldValueKind int

const (
	ValueQuotedDouble FieldValueKind = iota
	ValueQuotedSingle
	ValueNumber
	ValueTrue
	ValueFalse
)

// FieldValue is a scalar literal as it appeared in source. Raw holds the
// exact token text, quotes included for strings; interpretation happens in
// the model builder.
type FieldValue struct {
	Kind FieldValueKind
	Raw  string
	Pos  Position
}
