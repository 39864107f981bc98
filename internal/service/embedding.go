package service

import (
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding maps text to a small deterministic vector used to order
// recipe search results: total rune count, vowel count and consonant count.
// It is a stand-in for a real embedding model; the search path only needs
// the distance ordering to be stable.
func GenerateEmbedding(text string) pgvector.Vector {
	var length, vowels, consonants float32
	for _, r := range strings.ToLower(text) {
		length++
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case unicode.IsLetter(r):
			consonants++
		}
	}
	return pgvector.NewVector([]float32{length, vowels, consonants})
}
