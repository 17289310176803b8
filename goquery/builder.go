// Package goquery implements htmlstate.Builder on top of goquery, walking
// the parsed DOM and converting elements through a static rule table.
package goquery

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/htmlstate"
	"golang.org/x/net/html"
)

// Ensure Builder implements htmlstate.Builder at compile time.
var _ htmlstate.Builder = (*Builder)(nil)

// Builder converts HTML into a document tree. It holds no per-document
// state, so a single Builder may be used concurrently.
type Builder struct {
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report elements declined because of
// malformed encoded links or asset sources. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a new Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build parses html and converts the body of the document into a tree.
func (b *Builder) Build(s string) (*htmlstate.Root, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, htmlstate.Errorf(htmlstate.EINVALID, "failed to parse HTML: %v", err)
	}

	w := &walker{logger: b.logger}
	root := &htmlstate.Root{}
	root.Append(wrapInline(w.children(doc.Find("body"), state{}))...)
	return root, nil
}

// state is inherited from ancestors during the walk.
type state struct {
	format htmlstate.TextFormat
	pre    bool
}

type walker struct {
	logger *slog.Logger
}

// children converts the child nodes of sel in document order.
func (w *walker) children(sel *goquery.Selection, st state) []htmlstate.Node {
	var contents []*goquery.Selection
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		contents = append(contents, c)
	})

	var nodes []htmlstate.Node
	for i, c := range contents {
		n := c.Get(0)
		switch n.Type {
		case html.TextNode:
			if t := w.text(n.Data, st, contents, i); t != nil {
				nodes = append(nodes, t...)
			}
		case html.ElementNode:
			nodes = append(nodes, w.element(c, st)...)
		}
	}
	return mergeText(nodes, st.pre)
}

// text converts a text node. Outside preformatted content whitespace runs
// collapse to a single space and whitespace-only text survives only
// between two inline siblings.
func (w *walker) text(data string, st state, siblings []*goquery.Selection, i int) []htmlstate.Node {
	if st.pre {
		return preformatted(data, st.format)
	}

	if strings.TrimSpace(data) == "" {
		if i == 0 || i == len(siblings)-1 || isBlock(siblings[i-1]) || isBlock(siblings[i+1]) {
			return nil
		}
		return []htmlstate.Node{&htmlstate.Text{Text: " ", Format: st.format}}
	}
	return []htmlstate.Node{&htmlstate.Text{Text: collapseSpace(data), Format: st.format}}
}

// element applies the rule table to sel and converts its subtree.
func (w *walker) element(sel *goquery.Selection, st state) []htmlstate.Node {
	conv := w.apply(sel)
	if conv.Ignore {
		return nil
	}

	st.format |= conv.Format
	if conv.Preformatted {
		st.pre = true
	}
	children := w.children(sel, st)

	if conv.Node == nil {
		return children
	}
	e, ok := conv.Node.(htmlstate.ElementNode)
	if !ok {
		return []htmlstate.Node{conv.Node}
	}
	if !attach(e, children) {
		return nil
	}
	return []htmlstate.Node{conv.Node}
}

// apply runs the rules registered for the element's tag and returns the
// first conversion that does not decline.
func (w *walker) apply(sel *goquery.Selection) Conversion {
	tag := goquery.NodeName(sel)
	for _, r := range rulesByTag[tag] {
		conv, err := r.Convert(sel)
		if err != nil {
			w.logger.Warn("element declined", "tag", tag, "err", err)
			continue
		}
		if !conv.declined() {
			return conv
		}
	}
	return Conversion{}
}

// attach sets the children of e, normalizing them for the node kind.
// It reports false when e must be dropped.
func attach(e htmlstate.ElementNode, children []htmlstate.Node) bool {
	switch n := e.(type) {
	case *htmlstate.Paragraph, *htmlstate.Heading, *htmlstate.Quote, *htmlstate.ListItem:
		n.Elem().Append(trimEdges(children)...)
	case *htmlstate.TableCell:
		n.Append(wrapInline(children)...)
	case *htmlstate.List:
		n.Append(wrapListItems(children)...)
		for i, child := range n.Children {
			child.(*htmlstate.ListItem).Value = n.Start + i
		}
	case htmlstate.InlineElement:
		children = flattenBlocks(children)
		if len(children) == 0 && !n.CanBeEmpty() {
			return false
		}
		n.Elem().Append(children...)
	default:
		e.Elem().Append(children...)
	}
	return true
}

// wrapInline wraps each run of inline nodes in a paragraph, for containers
// that only hold blocks.
func wrapInline(nodes []htmlstate.Node) []htmlstate.Node {
	var out []htmlstate.Node
	var run []htmlstate.Node
	flush := func() {
		if run = trimEdges(run); len(run) > 0 {
			p := &htmlstate.Paragraph{}
			p.Append(run...)
			out = append(out, p)
		}
		run = nil
	}
	for _, n := range nodes {
		if htmlstate.IsInline(n) {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

// wrapListItems wraps each run of non-item nodes of a list in a list item.
func wrapListItems(nodes []htmlstate.Node) []htmlstate.Node {
	var out []htmlstate.Node
	var run []htmlstate.Node
	flush := func() {
		if run = trimEdges(run); len(run) > 0 {
			li := &htmlstate.ListItem{}
			li.Append(run...)
			out = append(out, li)
		}
		run = nil
	}
	for _, n := range nodes {
		if _, ok := n.(*htmlstate.ListItem); ok {
			flush()
			out = append(out, n)
			continue
		}
		run = append(run, n)
	}
	flush()
	return out
}

// flattenBlocks replaces block nodes with their inline content, separating
// the content of consecutive blocks with line breaks. Blocks with no inline
// content are dropped.
func flattenBlocks(nodes []htmlstate.Node) []htmlstate.Node {
	var out []htmlstate.Node
	afterBlock := false
	for _, n := range nodes {
		if htmlstate.IsInline(n) {
			if afterBlock {
				out = append(out, &htmlstate.LineBreak{})
				afterBlock = false
			}
			out = append(out, n)
			continue
		}
		e, ok := n.(htmlstate.ElementNode)
		if !ok {
			continue
		}
		inner := flattenBlocks(e.Elem().Children)
		if len(inner) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, &htmlstate.LineBreak{})
		}
		out = append(out, inner...)
		afterBlock = true
	}
	return out
}

// trimEdges removes leading and trailing whitespace from the text at the
// edges of a block, descending into inline elements at either edge.
func trimEdges(nodes []htmlstate.Node) []htmlstate.Node {
	return trimRight(trimLeft(nodes))
}

func trimLeft(nodes []htmlstate.Node) []htmlstate.Node {
	for len(nodes) > 0 {
		switch n := nodes[0].(type) {
		case *htmlstate.Text:
			if n.Format.Has(htmlstate.TextCode) {
				return nodes
			}
			if n.Text = strings.TrimLeft(n.Text, " "); n.Text != "" {
				return nodes
			}
		case htmlstate.InlineElement:
			e := n.Elem()
			if e.Children = trimLeft(e.Children); len(e.Children) > 0 || n.CanBeEmpty() {
				return nodes
			}
		default:
			return nodes
		}
		nodes = nodes[1:]
	}
	return nodes
}

func trimRight(nodes []htmlstate.Node) []htmlstate.Node {
	for len(nodes) > 0 {
		switch n := nodes[len(nodes)-1].(type) {
		case *htmlstate.Text:
			if n.Format.Has(htmlstate.TextCode) {
				return nodes
			}
			if n.Text = strings.TrimRight(n.Text, " "); n.Text != "" {
				return nodes
			}
		case htmlstate.InlineElement:
			e := n.Elem()
			if e.Children = trimRight(e.Children); len(e.Children) > 0 || n.CanBeEmpty() {
				return nodes
			}
		default:
			return nodes
		}
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// mergeText joins adjacent text nodes with the same format.
func mergeText(nodes []htmlstate.Node, pre bool) []htmlstate.Node {
	var out []htmlstate.Node
	for _, n := range nodes {
		t, ok := n.(*htmlstate.Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*htmlstate.Text); ok && prev.Format == t.Format {
				prev.Text += t.Text
				if !pre {
					prev.Text = strings.ReplaceAll(prev.Text, "  ", " ")
				}
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// preformatted splits text on newlines into text and line break nodes.
// A single trailing newline is dropped.
func preformatted(data string, format htmlstate.TextFormat) []htmlstate.Node {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	var nodes []htmlstate.Node
	for i, line := range strings.Split(data, "\n") {
		if i > 0 {
			nodes = append(nodes, &htmlstate.LineBreak{})
		}
		if line != "" {
			nodes = append(nodes, &htmlstate.Text{Text: line, Format: format})
		}
	}
	if strings.HasSuffix(data, "\n") && len(nodes) > 0 {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// collapseSpace replaces every run of HTML whitespace with one space.
func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

// blockTags are elements that start a new block, so whitespace next to
// them is insignificant.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

func isBlock(sel *goquery.Selection) bool {
	n := sel.Get(0)
	return n.Type == html.ElementNode && blockTags[n.Data]
}
