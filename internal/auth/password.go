package auth

import "golang.org/x/crypto/bcrypt"

// hashPassword returns the bcrypt hash of a plaintext password.
func hashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// verifyPassword safely compares a bcrypt hash and a plaintext password.
func verifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
