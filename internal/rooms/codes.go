// Package rooms manages consult rooms: short shareable codes persisted in a
// store, plus the websocket hub that relays WebRTC signalling, chat and
// analysis results between room participants.
package rooms

import (
	"crypto/rand"
	"fmt"
)

// CodeLength is the canonical room code length.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a random room code of n characters drawn from
// uppercase letters and digits. Non-positive n falls back to CodeLength.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		n = CodeLength
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
