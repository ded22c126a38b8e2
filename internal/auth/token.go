package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by a websocket handshake token.
type Claims struct {
	UserID string
}

// Verifier validates HMAC-signed access tokens issued by the dictionary
// platform's auth service.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates the token and extracts the subject.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, fmt.Errorf("token missing subject")
	}
	return Claims{UserID: sub}, nil
}

// Sign issues a token for the given user; used by tests and local tooling.
func (v *Verifier) Sign(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID})
	return token.SignedString(v.secret)
}
