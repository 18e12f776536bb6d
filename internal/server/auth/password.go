package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt digest of the plaintext password. The cost
// is bcrypt.DefaultCost; the per-record salt is embedded in the digest.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored digest.
func CheckPassword(hashed, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}
