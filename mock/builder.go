package mock

import "github.com/fwojciec/htmlstate"

var _ htmlstate.Builder = (*Builder)(nil)

// Builder is a mock implementation of htmlstate.Builder.
type Builder struct {
	BuildFn func(html string) (*htmlstate.Root, error)
}

func (b *Builder) Build(html string) (*htmlstate.Root, error) {
	return b.BuildFn(html)
}
