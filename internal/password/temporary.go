package password

import "math/rand/v2"

const (
	TemporaryLength = 8
	alphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateTemporary returns a reset password: TemporaryLength characters,
// each drawn uniformly from [a-zA-Z0-9]. The source is not cryptographic.
func GenerateTemporary() string {
	b := make([]byte, TemporaryLength)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
