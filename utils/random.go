package utils

import (
	"crypto/rand"
	"math/big"
)

// Join codes avoid 0/O and 1/I so they survive being read out over voice chat.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateJoinCode produces a human-shareable uppercase code of n characters.
func GenerateJoinCode(n int) (string, error) {
	code := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[idx.Int64()]
	}
	return string(code), nil
}

// GenerateOTP produces an n-digit one-time code.
func GenerateOTP(n int) (string, error) {
	digits := make([]byte, n)
	ten := big.NewInt(10)
	for i := range digits {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}
