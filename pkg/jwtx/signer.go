package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints signed access tokens.
type Signer interface {
	Sign(claims Claims) (string, error)
}

// Verifier validates a token string and returns its claims.
type Verifier interface {
	Verify(tokenStr string) (*Claims, error)
}

// Keypair holds an Ed25519 keypair and implements both Signer and
// Verifier. Generate one at startup with NewEphemeralKeypair.
type Keypair struct {
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewEphemeralKeypair generates a fresh Ed25519 keypair. Tokens signed
// by it become invalid when the process restarts.
func NewEphemeralKeypair(issuer string) (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519 key: %w", err)
	}
	return &Keypair{priv: priv, pub: pub, issuer: issuer}, nil
}

// Sign turns claims into a signed JWT string.
func (k *Keypair) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return t.SignedString(k.priv)
}

// Verify validates the JWT string and returns its parsed Claims.
func (k *Keypair) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return k.pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(k.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return nil, err
	}

	return claims, nil
}

// Ready reports whether the keypair holds usable key material.
func (k *Keypair) Ready() bool {
	return len(k.priv) == ed25519.PrivateKeySize && len(k.pub) == ed25519.PublicKeySize
}
