package usecases

import (
	"crypto/subtle"
	"errors"
)

// ErrBadCredentials is returned for a username/password mismatch.
var ErrBadCredentials = errors.New("bad credentials")

// loginToken is the opaque marker handed back on a successful login.
// Nothing in this service verifies it on later requests; the gate is a
// placeholder, not a security boundary.
const loginToken = "access-granted"

// AuthService is the static credential gate for the admin frontend.
// The configured pair comes from configuration and is never defaulted.
type AuthService struct {
	username string
	password string
}

// NewAuthService creates a new AuthService.
func NewAuthService(username, password string) *AuthService {
	return &AuthService{username: username, password: password}
}

// Login compares the pair in constant time and returns the token on a
// match.
func (s *AuthService) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return "", ErrBadCredentials
	}
	return loginToken, nil
}
