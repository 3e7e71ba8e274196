/*
Package random provides functions to generate random DNA and RNA sequences.

They are not part of the substitution model itself, and no other
package of this module imports them.
*/
package random

import (
	"errors"
	"math/rand"
)

var errSequenceTooShort = errors.New("random: length must be greater than zero")

// DNASequence returns a random DNA sequence string of the given length,
// drawn from a *rand.Rand seeded with seed so that calls with the same
// seed and length are reproducible.
func DNASequence(length int, seed int64) (string, error) {
	return randomNucleotideSequence(length, seed, []rune("ACGT"))
}

// RNASequence returns a random RNA sequence string of the given length.
func RNASequence(length int, seed int64) (string, error) {
	return randomNucleotideSequence(length, seed, []rune("ACGU"))
}

func randomNucleotideSequence(length int, seed int64, alphabet []rune) (string, error) {
	if length <= 0 {
		return "", errSequenceTooShort
	}

	rng := rand.New(rand.NewSource(seed))
	sequence := make([]rune, length)
	for i := range sequence {
		sequence[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(sequence), nil
}
