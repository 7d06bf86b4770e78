// Package password provides the swappable hashing and strength-scoring
// capabilities used by the auth service.
package password

import (
	"errors"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes plaintext passwords and compares candidates against a
// stored hash.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

// StrengthChecker scores a candidate password against a heuristic,
// optionally seeded with user-specific context (email etc.) so that
// passwords derived from it score lower.
type StrengthChecker interface {
	Check(password string, userInputs []string) error
}

var ErrWeak = errors.New("password is too weak")

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// weaknessThreshold is the minimum zxcvbn score (0-4) a password must reach.
const weaknessThreshold = 3

// ZxcvbnChecker scores passwords with the zxcvbn estimator.
type ZxcvbnChecker struct{}

func NewZxcvbnChecker() *ZxcvbnChecker {
	return &ZxcvbnChecker{}
}

func (z *ZxcvbnChecker) Check(password string, userInputs []string) error {
	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < weaknessThreshold {
		return ErrWeak
	}
	return nil
}
