package chat

import (
	"crypto/rand"
)

const (
	hashAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	hashLength   = 10
)

// NewConversationHash produces a 10-character identifier drawn uniformly at
// random from the alphanumeric alphabet. It is offered to the backend as a
// candidate key; uniqueness is the backend's problem, not checked here.
func NewConversationHash() string {
	// Rejection sampling keeps the draw uniform: 248 is the largest
	// multiple of 62 below 256.
	const limit = byte(len(hashAlphabet) * (256 / len(hashAlphabet)))

	out := make([]byte, 0, hashLength)
	buf := make([]byte, hashLength)
	for len(out) < hashLength {
		if _, err := rand.Read(buf); err != nil {
			panic("chat: crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, hashAlphabet[int(b)%len(hashAlphabet)])
			if len(out) == hashLength {
				break
			}
		}
	}
	return string(out)
}
