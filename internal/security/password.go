// Package security holds password hashing and bearer-token signing.
package security

import "golang.org/x/crypto/bcrypt"

// Passwords hashes and verifies account passwords with bcrypt.
type Passwords struct {
	cost int
}

// NewPasswords returns a hasher. cost <= 0 selects bcrypt.DefaultCost.
func NewPasswords(cost int) *Passwords {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Passwords{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (p *Passwords) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
func (p *Passwords) Verify(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
