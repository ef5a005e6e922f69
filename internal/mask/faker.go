package mask

import "math/rand/v2"

// FieldRule mutates one field of record using rng. It is the caller's
// responsibility to know which fields of T are sensitive; Faker only
// supplies the seedable random source and the per-record dispatch loop.
type FieldRule[T any] func(rng *rand.Rand, record *T)

// Faker is a reference Masker implementation for envclone's own test
// fixtures. It is not a general-purpose faking library: real deployments
// are expected to supply their own Masker grounded in the fields their
// entities actually carry.
type Faker[T any] struct {
	rng   *rand.Rand
	rules []FieldRule[T]
}

// NewFaker builds a Faker seeded deterministically from seed, so that two
// runs with the same seed produce identical masked output.
func NewFaker[T any](seed uint64, rules ...FieldRule[T]) *Faker[T] {
	return &Faker[T]{
		rng:   rand.New(rand.NewPCG(seed, seed)),
		rules: rules,
	}
}

func (f *Faker[T]) Mask(record *T) error {
	for _, rule := range f.rules {
		rule(f.rng, record)
	}
	return nil
}
