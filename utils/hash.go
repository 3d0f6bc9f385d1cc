package utils

import "golang.org/x/crypto/bcrypt"

// HashOTP hashes a one-time code before it is stored. Codes are short-lived
// so a lower cost factor than for passwords is fine.
func HashOTP(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), 10)
	return string(bytes), err
}

// CheckOTP compares a submitted code against its stored hash.
func CheckOTP(hash, code string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}
