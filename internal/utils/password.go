package utils

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCodec turns a supplied password into its stored form and checks
// a supplied password against a stored one.
type PasswordCodec interface {
	Encode(password string) (string, error)
	Matches(stored, supplied string) bool
}

// PlainCodec keeps passwords verbatim, which is what existing rows hold.
type PlainCodec struct{}

func (PlainCodec) Encode(password string) (string, error) { return password, nil }

func (PlainCodec) Matches(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

type BcryptCodec struct {
	Cost int
}

func (c BcryptCodec) Encode(password string) (string, error) {
	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptCodec) Matches(stored, supplied string) bool {
	return VerifyPassword(stored, supplied) == nil
}

func VerifyPassword(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

func NewPasswordCodec(name string) (PasswordCodec, error) {
	switch name {
	case "", "plain":
		return PlainCodec{}, nil
	case "bcrypt":
		return BcryptCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown password codec %q", name)
	}
}
