package room

import "math/rand"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// newRoomCode rolls a share-by-voice room code. Uniqueness is the
// registry's job; this only supplies candidates.
func newRoomCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}
