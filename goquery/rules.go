package goquery

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/parser"
	"github.com/fwojciec/htmlstate"
)

// Conversion is the outcome of applying a Rule to an element.
// The zero value means the rule declined.
type Conversion struct {
	// Node replaces the element. Its children are converted from the
	// element's children. When nil, the children are lifted into the parent.
	Node htmlstate.Node

	// Format is added to the text format of every descendant text node.
	Format htmlstate.TextFormat

	// Preformatted keeps descendant whitespace and turns newlines into
	// line breaks.
	Preformatted bool

	// Ignore drops the element together with its subtree.
	Ignore bool
}

func (c Conversion) declined() bool {
	return c == Conversion{}
}

// ConvertFunc converts an element. A rule that does not apply returns the
// zero Conversion and a nil error. A non-nil error also declines and is
// reported by the builder.
type ConvertFunc func(sel *goquery.Selection) (Conversion, error)

// Rule maps an element tag to a conversion. Rules for the same tag are
// tried from the highest priority down; the first that does not decline wins.
type Rule struct {
	Tag      string
	Priority int
	Convert  ConvertFunc
}

// rules is the complete conversion table. Elements with no rule, or whose
// rules all decline, are transparent.
var rules = []Rule{
	// Custom node kinds.
	{Tag: "a", Priority: 1, Convert: convertAnchor},
	{Tag: "img", Priority: 0, Convert: convertImage},

	// Blocks.
	{Tag: "p", Convert: convertParagraph},
	{Tag: "h1", Convert: convertHeading},
	{Tag: "h2", Convert: convertHeading},
	{Tag: "h3", Convert: convertHeading},
	{Tag: "h4", Convert: convertHeading},
	{Tag: "h5", Convert: convertHeading},
	{Tag: "h6", Convert: convertHeading},
	{Tag: "blockquote", Convert: convertQuote},
	{Tag: "ul", Convert: convertList},
	{Tag: "ol", Convert: convertList},
	{Tag: "li", Convert: convertListItem},
	{Tag: "pre", Convert: convertPre},
	{Tag: "code", Convert: convertCode},
	{Tag: "table", Convert: convertTable},
	{Tag: "tr", Convert: convertTableRow},
	{Tag: "td", Convert: convertTableCell},
	{Tag: "th", Convert: convertTableCell},
	{Tag: "br", Convert: convertLineBreak},

	// Inline text formats.
	{Tag: "b", Convert: convertBold},
	{Tag: "strong", Convert: formatRule(htmlstate.TextBold)},
	{Tag: "i", Convert: formatRule(htmlstate.TextItalic)},
	{Tag: "em", Convert: formatRule(htmlstate.TextItalic)},
	{Tag: "u", Convert: formatRule(htmlstate.TextUnderline)},
	{Tag: "s", Convert: formatRule(htmlstate.TextStrikethrough)},
	{Tag: "strike", Convert: formatRule(htmlstate.TextStrikethrough)},
	{Tag: "del", Convert: formatRule(htmlstate.TextStrikethrough)},
	{Tag: "sub", Convert: formatRule(htmlstate.TextSubscript)},
	{Tag: "sup", Convert: formatRule(htmlstate.TextSuperscript)},
	{Tag: "mark", Convert: formatRule(htmlstate.TextHighlight)},
	{Tag: "span", Convert: convertSpan},

	// Never converted.
	{Tag: "script", Convert: ignore},
	{Tag: "style", Convert: ignore},
	{Tag: "template", Convert: ignore},
	{Tag: "head", Convert: ignore},
}

// rulesByTag indexes rules by tag, highest priority first.
var rulesByTag = indexRules(rules)

func indexRules(rules []Rule) map[string][]Rule {
	m := make(map[string][]Rule)
	for _, r := range rules {
		m[r.Tag] = append(m[r.Tag], r)
	}
	for _, rs := range m {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Priority > rs[j].Priority })
	}
	return m
}

// Rules returns the conversion rules for tag in the order they are tried.
func Rules(tag string) []Rule {
	return append([]Rule(nil), rulesByTag[tag]...)
}

func convertAnchor(sel *goquery.Selection) (Conversion, error) {
	if goquery.NodeName(sel) != "a" {
		return Conversion{}, nil
	}
	if sel.Text() == "" {
		return Conversion{}, nil
	}

	link, err := htmlstate.ParseLink(sel.AttrOr("href", ""))
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Node: &htmlstate.LinkNode{Link: *link}}, nil
}

func convertImage(sel *goquery.Selection) (Conversion, error) {
	src := strings.TrimSpace(sel.AttrOr("src", ""))
	if !htmlstate.IsAssetSource(src) {
		return Conversion{}, nil
	}

	style := parseStyle(sel)
	asset, err := htmlstate.ParseAsset(src,
		htmlstate.ParsePixels(style["height"]),
		htmlstate.ParsePixels(style["width"]),
	)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Node: &htmlstate.AssetNode{Asset: *asset}}, nil
}

func convertParagraph(sel *goquery.Selection) (Conversion, error) {
	p := &htmlstate.Paragraph{}
	applyBlockAttrs(sel, &p.Element)
	return Conversion{Node: p}, nil
}

func convertHeading(sel *goquery.Selection) (Conversion, error) {
	h := &htmlstate.Heading{Tag: goquery.NodeName(sel)}
	applyBlockAttrs(sel, &h.Element)
	return Conversion{Node: h}, nil
}

func convertQuote(sel *goquery.Selection) (Conversion, error) {
	q := &htmlstate.Quote{}
	applyBlockAttrs(sel, &q.Element)
	return Conversion{Node: q}, nil
}

func convertList(sel *goquery.Selection) (Conversion, error) {
	l := &htmlstate.List{ListType: htmlstate.ListBullet, Start: 1}
	if goquery.NodeName(sel) == "ol" {
		l.ListType = htmlstate.ListNumber
		if start, err := strconv.Atoi(sel.AttrOr("start", "")); err == nil {
			l.Start = start
		}
	}
	applyBlockAttrs(sel, &l.Element)
	return Conversion{Node: l}, nil
}

func convertListItem(sel *goquery.Selection) (Conversion, error) {
	li := &htmlstate.ListItem{}
	applyBlockAttrs(sel, &li.Element)
	return Conversion{Node: li}, nil
}

func convertPre(sel *goquery.Selection) (Conversion, error) {
	code := &htmlstate.Code{Language: codeLanguage(sel)}
	if code.Language == "" {
		code.Language = codeLanguage(sel.ChildrenFiltered("code").First())
	}
	applyBlockAttrs(sel, &code.Element)
	return Conversion{Node: code, Preformatted: true}, nil
}

// convertCode handles <code> outside <pre>. Multi-line code becomes a code
// block, anything else is inline code.
func convertCode(sel *goquery.Selection) (Conversion, error) {
	if sel.ParentFiltered("pre").Length() > 0 {
		return Conversion{}, nil
	}
	if strings.Contains(sel.Text(), "\n") {
		return Conversion{Node: &htmlstate.Code{Language: codeLanguage(sel)}, Preformatted: true}, nil
	}
	return Conversion{Format: htmlstate.TextCode}, nil
}

func convertTable(sel *goquery.Selection) (Conversion, error) {
	return Conversion{Node: &htmlstate.Table{}}, nil
}

func convertTableRow(sel *goquery.Selection) (Conversion, error) {
	return Conversion{Node: &htmlstate.TableRow{}}, nil
}

func convertTableCell(sel *goquery.Selection) (Conversion, error) {
	cell := &htmlstate.TableCell{
		HeaderState: htmlstate.HeaderNone,
		ColSpan:     spanAttr(sel, "colspan"),
		RowSpan:     spanAttr(sel, "rowspan"),
	}
	if goquery.NodeName(sel) == "th" {
		cell.HeaderState = htmlstate.HeaderRow
		if strings.EqualFold(sel.AttrOr("scope", ""), "row") {
			cell.HeaderState = htmlstate.HeaderColumn
		}
	}
	applyBlockAttrs(sel, &cell.Element)
	return Conversion{Node: cell}, nil
}

func convertLineBreak(sel *goquery.Selection) (Conversion, error) {
	return Conversion{Node: &htmlstate.LineBreak{}}, nil
}

// convertBold treats <b style="font-weight: normal"> as plain text, which
// is how some editors wrap pasted content.
func convertBold(sel *goquery.Selection) (Conversion, error) {
	if parseStyle(sel)["font-weight"] == "normal" {
		return Conversion{}, nil
	}
	return Conversion{Format: htmlstate.TextBold}, nil
}

func convertSpan(sel *goquery.Selection) (Conversion, error) {
	return Conversion{Format: styleFormat(parseStyle(sel))}, nil
}

func formatRule(format htmlstate.TextFormat) ConvertFunc {
	return func(*goquery.Selection) (Conversion, error) {
		return Conversion{Format: format}, nil
	}
}

func ignore(*goquery.Selection) (Conversion, error) {
	return Conversion{Ignore: true}, nil
}

// styleFormat maps inline style declarations to text formats.
func styleFormat(style map[string]string) htmlstate.TextFormat {
	var format htmlstate.TextFormat
	switch weight := style["font-weight"]; weight {
	case "bold", "bolder", "600", "700", "800", "900":
		format |= htmlstate.TextBold
	}
	if style["font-style"] == "italic" {
		format |= htmlstate.TextItalic
	}
	for _, v := range strings.Fields(style["text-decoration"]) {
		switch v {
		case "underline":
			format |= htmlstate.TextUnderline
		case "line-through":
			format |= htmlstate.TextStrikethrough
		}
	}
	switch style["vertical-align"] {
	case "sub":
		format |= htmlstate.TextSubscript
	case "super":
		format |= htmlstate.TextSuperscript
	}
	return format
}

// parseStyle returns the element's inline style declarations keyed by
// lowercase property name. Unparseable styles yield an empty map.
func parseStyle(sel *goquery.Selection) map[string]string {
	style := make(map[string]string)
	attr, ok := sel.Attr("style")
	if !ok || strings.TrimSpace(attr) == "" {
		return style
	}
	// The parser drops the value of a final declaration that is not
	// terminated, so always terminate the last one.
	attr = strings.TrimSpace(attr)
	if !strings.HasSuffix(attr, ";") {
		attr += ";"
	}
	decls, err := parser.ParseDeclarations(attr)
	if err != nil {
		return style
	}
	for _, d := range decls {
		style[strings.ToLower(d.Property)] = strings.ToLower(strings.TrimSpace(d.Value))
	}
	return style
}

// applyBlockAttrs copies the dir attribute and text-align style onto e.
func applyBlockAttrs(sel *goquery.Selection, e *htmlstate.Element) {
	switch dir := strings.ToLower(sel.AttrOr("dir", "")); dir {
	case "ltr":
		e.Direction = htmlstate.DirectionLTR
	case "rtl":
		e.Direction = htmlstate.DirectionRTL
	}

	switch align := htmlstate.ElementFormat(parseStyle(sel)["text-align"]); align {
	case htmlstate.FormatLeft, htmlstate.FormatStart, htmlstate.FormatCenter,
		htmlstate.FormatRight, htmlstate.FormatEnd, htmlstate.FormatJustify:
		e.Format = align
	}
}

// codeLanguage reads the language of a code element from its data
// attributes or a "language-*" class.
func codeLanguage(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"data-language", "data-highlight-language"} {
		if lang := sel.AttrOr(attr, ""); lang != "" {
			return lang
		}
	}
	for _, class := range strings.Fields(sel.AttrOr("class", "")) {
		if lang, ok := strings.CutPrefix(class, "language-"); ok && lang != "" {
			return lang
		}
	}
	return ""
}

func spanAttr(sel *goquery.Selection, name string) int {
	n, err := strconv.Atoi(sel.AttrOr(name, ""))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
