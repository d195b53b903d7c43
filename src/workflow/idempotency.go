package workflow

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	idempotencyAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	idempotencyRandomLen = 9
)

// Returns cert_<epoch-ms>_<9 random characters>. Every credential creation attempt gets a new key.
func NewIdempotencyKey() string {
	return fmt.Sprintf("cert_%d_%s", time.Now().UnixMilli(), randomString(idempotencyRandomLen))
}

func randomString(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, 2*n)
	for len(out) < n {
		_, err := rand.Read(buf)
		if err != nil {
			panic(err)
		}
		for _, b := range buf {
			// Largest multiple of the alphabet size below 256, keeps the distribution uniform
			if int(b) >= 252 {
				continue
			}
			out = append(out, idempotencyAlphabet[int(b)%len(idempotencyAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
