// Package operator verifies instructor credentials. The credential is a bcrypt
// hash injected through configuration; plaintext comparison is deliberately
// not supported.
package operator

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mahudhurio/core"
)

var ErrBadCredentials = errors.New("invalid username or password")

type (
	Operator struct {
		Username string `json:"username"`
	}

	// Verifier is any credential-verification collaborator.
	Verifier interface {
		Verify(username, password string) (Operator, error)
	}

	service struct {
		username     string
		passwordHash []byte
	}
)

var _ Verifier = (*service)(nil)

func NewService(conf *core.Config) Verifier {
	return &service{
		username:     core.CleanString(conf.Operator.Username, true /* lower */),
		passwordHash: []byte(conf.Operator.PasswordHash),
	}
}

func (svc *service) Verify(username, password string) (Operator, error) {
	if core.CleanString(username, true /* lower */) != svc.username {
		return Operator{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(svc.passwordHash, []byte(password)); err != nil {
		return Operator{}, ErrBadCredentials
	}
	return Operator{Username: svc.username}, nil
}

// HashPassword hashes a plaintext password for storage in configuration.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
