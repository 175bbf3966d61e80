package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades brute-force resistance against login latency.
const bcryptCost = 12

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns an error for any mismatch, including a malformed
// stored hash, so callers cannot distinguish the failure mode.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
