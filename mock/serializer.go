package mock

import "github.com/fwojciec/htmlstate"

var _ htmlstate.Serializer = (*Serializer)(nil)

// Serializer is a mock implementation of htmlstate.Serializer.
type Serializer struct {
	SerializeFn func(root *htmlstate.Root) ([]byte, error)
}

func (s *Serializer) Serialize(root *htmlstate.Root) ([]byte, error) {
	return s.SerializeFn(root)
}
