// Package random provides seed generation for the engine's pseudo-random source.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewSource returns a generator seeded with seed, or with a fresh crypto
// seed when seed is zero. The seed actually used is returned so a game can
// be replayed.
func NewSource(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		generated, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = generated
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}
