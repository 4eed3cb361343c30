package utils

import "crypto/rand"

const refCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReferralCode returns a short uppercase invite code. The
// alphabet omits easily confused characters (0/O, 1/I).
func GenerateReferralCode(length int) string {
	if length <= 0 {
		length = 6
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = refCodeAlphabet[int(b[i])%len(refCodeAlphabet)]
	}
	return string(b)
}
