package htmlstate

// Builder parses HTML into a document tree.
type Builder interface {
	// Build parses html and returns the document root. Elements that
	// decline conversion are omitted; unparseable input returns an error.
	Build(html string) (*Root, error)
}

// Serializer encodes a document tree as editor-state JSON.
type Serializer interface {
	// Serialize returns the editor-state JSON for root.
	Serialize(root *Root) ([]byte, error)
}

// Converter converts HTML to serialized editor state.
type Converter interface {
	// Convert transforms an HTML fragment into editor-state JSON.
	// Converting the same input twice yields identical output.
	Convert(html string) (string, error)
}

// Ensure Pipeline implements Converter at compile time.
var _ Converter = (*Pipeline)(nil)

// Pipeline is a Converter that builds a tree and serializes it.
type Pipeline struct {
	Builder    Builder
	Serializer Serializer
}

// NewPipeline returns a Pipeline over the given builder and serializer.
func NewPipeline(b Builder, s Serializer) *Pipeline {
	return &Pipeline{Builder: b, Serializer: s}
}

// Convert builds the document tree for html and serializes it.
func (p *Pipeline) Convert(html string) (string, error) {
	root, err := p.Builder.Build(html)
	if err != nil {
		return "", err
	}
	out, err := p.Serializer.Serialize(root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
