package drops

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	uidAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	UIDLength   = 7
)

// NewUID returns a short public card code.
func NewUID() (string, error) {
	return gonanoid.Generate(uidAlphabet, UIDLength)
}
