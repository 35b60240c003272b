package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// codeAlphabet deliberately excludes O/0, I/1 and L so codes survive being
// read aloud or hand-copied from a save-the-date card.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// CodeLength is the length of a guest code.
const CodeLength = 6

// NewGuestCode generates a short shareable guest code. Uniqueness is the
// caller's job (check the store, retry on collision).
func NewGuestCode() (string, error) {
	code, err := gonanoid.Generate(codeAlphabet, CodeLength)
	if err != nil {
		return "", fmt.Errorf("generate guest code: %w", err)
	}
	return code, nil
}
