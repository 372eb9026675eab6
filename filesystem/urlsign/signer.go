// Package urlsign signs and verifies the tokens carried by local-disk
// temporary URLs.
//
// A token is an HS256 JWT whose subject is the object path and whose
// "disk" claim names the disk it was issued for:
//
//	s, _ := urlsign.New("secret")
//	token, _ := s.Sign("local", ".temp/3f1c.png", 15*time.Minute)
//	err := s.Verify(token, "local", ".temp/3f1c.png")
package urlsign

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/filekit/errors"
)

// Issuer is the "iss" claim of every token.
const Issuer = "filekit"

// QueryParam is the query parameter that carries the token.
const QueryParam = "signature"

// Claims are the token claims.
type Claims struct {
	gojwt.RegisteredClaims
	Disk string `json:"disk"`
}

// Signer issues and checks tokens with one HMAC key.
type Signer struct {
	key []byte
	now func() time.Time
}

// New returns a Signer for key. An empty key is rejected.
func New(key string) (*Signer, error) {
	if key == "" {
		return nil, errors.Validation("urlsign: signing key is required")
	}
	return &Signer{key: []byte(key), now: time.Now}, nil
}

// Sign returns a token for path on disk that expires after ttl.
func (s *Signer) Sign(disk, path string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   path,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		Disk: disk,
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("urlsign: sign token: %w", err))
	}
	return signed, nil
}

// Verify checks token's signature and expiry and that it was issued for
// path on disk. Every failure is an Unauthorized error.
func (s *Signer) Verify(token, disk, path string) error {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(Issuer),
		gojwt.WithSubject(path),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return errors.Unauthorized(err.Error()).WithCause(err)
	}
	if !parsed.Valid {
		return errors.Unauthorized("invalid signature")
	}
	if claims.Disk != disk {
		return errors.Unauthorized(fmt.Sprintf("signature issued for disk %q", claims.Disk))
	}
	return nil
}

func (s *Signer) keyFunc(token *gojwt.Token) (any, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.key, nil
}
