// Package lexical serializes document trees into the editor-state JSON
// format of the Lexical rich-text editor.
package lexical

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/htmlstate"
	"github.com/segmentio/encoding/json"
)

// Version is the serialization version of every node kind emitted.
const Version = 1

// Ensure Serializer implements htmlstate.Serializer at compile time.
var _ htmlstate.Serializer = (*Serializer)(nil)

// Serializer encodes document trees as Lexical editor state. Output keeps
// Lexical's key order and does not escape HTML characters, so it is
// byte-compatible with JSON.stringify of the exported state.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize returns the editor state for root: an object with a single
// "root" key. The surrounding export wrapper is not included.
func (s *Serializer) Serialize(root *htmlstate.Root) ([]byte, error) {
	if root == nil {
		return nil, htmlstate.Errorf(htmlstate.EINVALID, "nil document root")
	}
	v, err := encodeNode(root)
	if err != nil {
		return nil, err
	}
	return marshal(editorState{Root: v})
}

type editorState struct {
	Root any `json:"root"`
}

type elementJSON struct {
	Children  []any   `json:"children"`
	Direction *string `json:"direction"`
	Format    string  `json:"format"`
	Indent    int     `json:"indent"`
	Type      string  `json:"type"`
	Version   int     `json:"version"`
}

type paragraphJSON struct {
	elementJSON
	TextFormat int    `json:"textFormat"`
	TextStyle  string `json:"textStyle"`
}

type headingJSON struct {
	elementJSON
	Tag string `json:"tag"`
}

type listJSON struct {
	elementJSON
	ListType string `json:"listType"`
	Start    int    `json:"start"`
	Tag      string `json:"tag"`
}

type listItemJSON struct {
	elementJSON
	Value int `json:"value"`
}

type codeJSON struct {
	elementJSON
	Language string `json:"language,omitempty"`
}

type tableCellJSON struct {
	elementJSON
	BackgroundColor *string `json:"backgroundColor"`
	ColSpan         int     `json:"colSpan"`
	HeaderState     int     `json:"headerState"`
	RowSpan         int     `json:"rowSpan"`
}

type textJSON struct {
	Detail  int    `json:"detail"`
	Format  int    `json:"format"`
	Mode    string `json:"mode"`
	Style   string `json:"style"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type lineBreakJSON struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type assetNodeJSON struct {
	elementJSON
	Asset assetJSON `json:"__asset"`
}

type assetJSON struct {
	ID     string          `json:"_id"`
	Type   string          `json:"type"`
	Fields json.RawMessage `json:"fields"`
	Source string          `json:"_source"`
}

type assetFieldJSON struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type linkNodeJSON struct {
	elementJSON
	Link linkPropsJSON `json:"link"`
}

type linkPropsJSON struct {
	Type               string             `json:"type"`
	Path               string             `json:"path"`
	ProjectMapID       *string            `json:"projectMapId,omitempty"`
	NodeID             *string            `json:"nodeId,omitempty"`
	DynamicInputValues *map[string]string `json:"dynamicInputValues,omitempty"`
}

// encodeNode converts n and its subtree into wire structs.
func encodeNode(n htmlstate.Node) (any, error) {
	switch n := n.(type) {
	case *htmlstate.Text:
		return textJSON{
			Format:  int(n.Format),
			Mode:    "normal",
			Text:    n.Text,
			Type:    string(htmlstate.NodeText),
			Version: Version,
		}, nil
	case *htmlstate.LineBreak:
		return lineBreakJSON{Type: string(htmlstate.NodeLineBreak), Version: Version}, nil
	case htmlstate.ElementNode:
		el, err := encodeElement(n)
		if err != nil {
			return nil, err
		}
		return encodeElementNode(n, el)
	}
	return nil, htmlstate.Errorf(htmlstate.EINTERNAL, "unsupported node type %T", n)
}

func encodeElementNode(n htmlstate.ElementNode, el elementJSON) (any, error) {
	switch n := n.(type) {
	case *htmlstate.Root, *htmlstate.Quote, *htmlstate.Table, *htmlstate.TableRow:
		return el, nil
	case *htmlstate.Paragraph:
		return paragraphJSON{elementJSON: el, TextFormat: int(n.TextFormat)}, nil
	case *htmlstate.Heading:
		return headingJSON{elementJSON: el, Tag: n.Tag}, nil
	case *htmlstate.List:
		return listJSON{elementJSON: el, ListType: string(n.ListType), Start: n.Start, Tag: n.Tag()}, nil
	case *htmlstate.ListItem:
		return listItemJSON{elementJSON: el, Value: n.Value}, nil
	case *htmlstate.Code:
		return codeJSON{elementJSON: el, Language: n.Language}, nil
	case *htmlstate.TableCell:
		return tableCellJSON{
			elementJSON: el,
			ColSpan:     n.ColSpan,
			HeaderState: n.HeaderState,
			RowSpan:     n.RowSpan,
		}, nil
	case *htmlstate.AssetNode:
		asset, err := encodeAsset(n.Asset)
		if err != nil {
			return nil, err
		}
		return assetNodeJSON{elementJSON: el, Asset: asset}, nil
	case *htmlstate.LinkNode:
		return linkNodeJSON{elementJSON: el, Link: encodeLink(n.Link)}, nil
	}
	return nil, htmlstate.Errorf(htmlstate.EINTERNAL, "unsupported node type %T", n)
}

// encodeElement encodes the fields shared by container nodes, including
// the children in order.
func encodeElement(n htmlstate.ElementNode) (elementJSON, error) {
	e := n.Elem()
	el := elementJSON{
		Children: make([]any, 0, len(e.Children)),
		Format:   string(e.Format),
		Indent:   e.Indent,
		Type:     string(n.Type()),
		Version:  Version,
	}
	if e.Direction != htmlstate.DirectionNone {
		dir := string(e.Direction)
		el.Direction = &dir
	}
	for _, child := range e.Children {
		v, err := encodeNode(child)
		if err != nil {
			return elementJSON{}, err
		}
		el.Children = append(el.Children, v)
	}
	return el, nil
}

func encodeAsset(a htmlstate.Asset) (assetJSON, error) {
	fields, err := encodeFields(a.Fields)
	if err != nil {
		return assetJSON{}, err
	}
	return assetJSON{ID: a.ID, Type: a.Type, Fields: fields, Source: a.Source}, nil
}

// encodeFields writes asset fields as an object keyed by field name,
// preserving field order.
func encodeFields(fields htmlstate.AssetFields) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := marshal(assetFieldJSON{Type: f.Type, Value: f.Value})
		if err != nil {
			return nil, fmt.Errorf("asset field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeLink(l htmlstate.LinkProps) linkPropsJSON {
	v := linkPropsJSON{Type: string(l.Type), Path: l.Path}
	if l.Type == htmlstate.LinkProjectMapNode {
		v.ProjectMapID = &l.ProjectMapID
		v.NodeID = &l.NodeID
		dynamic := l.DynamicInputValues
		if dynamic == nil {
			dynamic = map[string]string{}
		}
		v.DynamicInputValues = &dynamic
	}
	return v
}

// marshal encodes v without HTML escaping or a trailing newline.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
