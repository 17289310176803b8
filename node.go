package htmlstate

// NodeType discriminates the variants of Node.
type NodeType string

// Node types. Values match the "type" key of the serialized editor state.
const (
	NodeRoot      NodeType = "root"
	NodeParagraph NodeType = "paragraph"
	NodeHeading   NodeType = "heading"
	NodeQuote     NodeType = "quote"
	NodeList      NodeType = "list"
	NodeListItem  NodeType = "listitem"
	NodeCode      NodeType = "code"
	NodeTable     NodeType = "table"
	NodeTableRow  NodeType = "tablerow"
	NodeTableCell NodeType = "tablecell"
	NodeText      NodeType = "text"
	NodeLineBreak NodeType = "linebreak"
	NodeAsset     NodeType = "asset"
	NodeLink      NodeType = "link"
)

// Node is one element of the document tree. The set of implementations is
// closed: only the types declared in this package satisfy it.
type Node interface {
	Type() NodeType
	node()
}

// ElementNode is a Node that owns an ordered sequence of children.
type ElementNode interface {
	Node
	Elem() *Element
}

// Direction is the text direction of an element. The zero value means unset.
type Direction string

// Text directions.
const (
	DirectionNone Direction = ""
	DirectionLTR  Direction = "ltr"
	DirectionRTL  Direction = "rtl"
)

// ElementFormat is the block alignment of an element.
type ElementFormat string

// Element formats.
const (
	FormatNone    ElementFormat = ""
	FormatLeft    ElementFormat = "left"
	FormatStart   ElementFormat = "start"
	FormatCenter  ElementFormat = "center"
	FormatRight   ElementFormat = "right"
	FormatEnd     ElementFormat = "end"
	FormatJustify ElementFormat = "justify"
)

// Element holds the fields shared by all container nodes.
type Element struct {
	Children  []Node
	Direction Direction
	Format    ElementFormat
	Indent    int
}

// Elem returns the shared element fields.
func (e *Element) Elem() *Element { return e }

// Append adds nodes to the end of the child sequence.
func (e *Element) Append(nodes ...Node) {
	e.Children = append(e.Children, nodes...)
}

// TextFormat is a bitmask of inline text formats.
type TextFormat int

// Text format flags.
const (
	TextBold TextFormat = 1 << iota
	TextItalic
	TextStrikethrough
	TextUnderline
	TextCode
	TextSubscript
	TextSuperscript
	TextHighlight
)

// Has reports whether all flags in f are set.
func (t TextFormat) Has(f TextFormat) bool {
	return t&f == f
}

// Root is the document root.
type Root struct {
	Element
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Element
	TextFormat TextFormat
}

// Heading is a section heading. Tag is one of h1 through h6.
type Heading struct {
	Element
	Tag string
}

// Quote is a block quotation.
type Quote struct {
	Element
}

// ListType distinguishes ordered from unordered lists.
type ListType string

// List types.
const (
	ListBullet ListType = "bullet"
	ListNumber ListType = "number"
)

// List is an ordered or unordered list of ListItem nodes.
type List struct {
	Element
	ListType ListType
	Start    int
}

// Tag returns the HTML tag the list was built from.
func (l *List) Tag() string {
	if l.ListType == ListNumber {
		return "ol"
	}
	return "ul"
}

// ListItem is one entry of a List. Value is its ordinal.
type ListItem struct {
	Element
	Value int
}

// Code is a code block.
type Code struct {
	Element
	Language string
}

// Table is a table of TableRow nodes.
type Table struct {
	Element
}

// TableRow is a row of TableCell nodes.
type TableRow struct {
	Element
}

// Table cell header states.
const (
	HeaderNone   = 0
	HeaderRow    = 1
	HeaderColumn = 2
)

// TableCell is a table cell.
type TableCell struct {
	Element
	HeaderState int
	ColSpan     int
	RowSpan     int
}

// Text is a run of inline text with uniform formatting.
type Text struct {
	Text   string
	Format TextFormat
}

// LineBreak is a hard line break.
type LineBreak struct{}

// AssetNode references an externally hosted media item.
type AssetNode struct {
	Element
	Asset Asset
}

// LinkNode is an inline link. It must not be empty and does not accept
// text inserted directly before or after it.
type LinkNode struct {
	Element
	Link LinkProps
}

// IsInline reports that links flow with text.
func (*LinkNode) IsInline() bool { return true }

// CanBeEmpty reports that a link without children is invalid.
func (*LinkNode) CanBeEmpty() bool { return false }

// CanInsertTextBefore reports that text is never merged in front of a link.
func (*LinkNode) CanInsertTextBefore() bool { return false }

// CanInsertTextAfter reports that text is never merged after a link.
func (*LinkNode) CanInsertTextAfter() bool { return false }

func (*Root) Type() NodeType      { return NodeRoot }
func (*Paragraph) Type() NodeType { return NodeParagraph }
func (*Heading) Type() NodeType   { return NodeHeading }
func (*Quote) Type() NodeType     { return NodeQuote }
func (*List) Type() NodeType      { return NodeList }
func (*ListItem) Type() NodeType  { return NodeListItem }
func (*Code) Type() NodeType      { return NodeCode }
func (*Table) Type() NodeType     { return NodeTable }
func (*TableRow) Type() NodeType  { return NodeTableRow }
func (*TableCell) Type() NodeType { return NodeTableCell }
func (*Text) Type() NodeType      { return NodeText }
func (*LineBreak) Type() NodeType { return NodeLineBreak }
func (*AssetNode) Type() NodeType { return NodeAsset }
func (*LinkNode) Type() NodeType  { return NodeLink }

func (*Root) node()      {}
func (*Paragraph) node() {}
func (*Heading) node()   {}
func (*Quote) node()     {}
func (*List) node()      {}
func (*ListItem) node()  {}
func (*Code) node()      {}
func (*Table) node()     {}
func (*TableRow) node()  {}
func (*TableCell) node() {}
func (*Text) node()      {}
func (*LineBreak) node() {}
func (*AssetNode) node() {}
func (*LinkNode) node()  {}

// InlineElement is an element node that flows with text. It constrains
// how the builder may place and normalize its children.
type InlineElement interface {
	ElementNode
	IsInline() bool
	CanBeEmpty() bool
	CanInsertTextBefore() bool
	CanInsertTextAfter() bool
}

var _ InlineElement = (*LinkNode)(nil)

// IsInline reports whether n flows with text rather than forming a block.
func IsInline(n Node) bool {
	switch n := n.(type) {
	case *Text, *LineBreak:
		return true
	case InlineElement:
		return n.IsInline()
	}
	return false
}

// Walk traverses the tree rooted at n in depth-first pre-order, calling fn
// for every node. Children of a node are skipped when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if e, ok := n.(ElementNode); ok {
		for _, child := range e.Elem().Children {
			Walk(child, fn)
		}
	}
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n Node) int {
	count := 0
	Walk(n, func(Node) bool {
		count++
		return true
	})
	return count
}
