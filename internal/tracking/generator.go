package tracking

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

// Generator produces new token values.
type Generator func() string

// GeneratorKind selects how token values are generated.
type GeneratorKind string

const (
	GeneratorUUID   GeneratorKind = "uuid"
	GeneratorNanoid GeneratorKind = "nanoid"
)

// NewUUIDGenerator returns a generator of random (v4) UUIDs.
func NewUUIDGenerator() Generator {
	return uuid.NewString
}

// NewNanoidGenerator returns a generator of URL-safe nanoids of the given length.
func NewNanoidGenerator(length int) (Generator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("nanoid generator: %w", err)
	}

	return gen, nil
}

// NewGenerator builds the generator for kind. Length only applies to nanoid.
func NewGenerator(kind GeneratorKind, length int) (Generator, error) {
	switch kind {
	case GeneratorUUID, "":
		return NewUUIDGenerator(), nil
	case GeneratorNanoid:
		return NewNanoidGenerator(length)
	default:
		return nil, fmt.Errorf("unknown token generator %q", kind)
	}
}
