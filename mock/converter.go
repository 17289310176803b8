package mock

import "github.com/fwojciec/htmlstate"

var _ htmlstate.Converter = (*Converter)(nil)

// Converter is a mock implementation of htmlstate.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
