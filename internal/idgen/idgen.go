// Package idgen allocates the short public identifiers users type into /respond.
package idgen

import (
	"errors"
	"math/rand/v2"
	"sync"
)

const (
	// Alphabet is the symbol set for question ids: 36 symbols.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// Length of every generated id.
	Length = 6
	// MaxAttempts bounds allocation so a saturated id space cannot loop forever.
	MaxAttempts = 1000
)

// ErrIDSpaceExhausted is returned when MaxAttempts candidates all collided.
var ErrIDSpaceExhausted = errors.New("idgen: no free question id after max attempts")

// Generator produces random ids. The zero value is not usable; call New.
type Generator struct {
	mu   sync.Mutex
	intn func(n int) int
}

// New returns a Generator seeded from the runtime's random source.
func New() *Generator {
	return NewWithRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewWithRand returns a Generator drawing from rng. Used by tests for determinism.
func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{intn: rng.IntN}
}

// Generate returns one candidate id with no uniqueness check.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = Alphabet[g.intn(len(Alphabet))]
	}
	return string(buf)
}

// Allocate returns an id not present in existing. existing must be a fresh
// read of the active question ids.
func (g *Generator) Allocate(existing map[string]struct{}) (string, error) {
	for range MaxAttempts {
		id := g.Generate()
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return "", ErrIDSpaceExhausted
}
