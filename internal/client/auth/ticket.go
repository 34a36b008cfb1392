// Package auth issues and checks verification tickets: short-lived HS256
// tokens proving that an OTP for a given channel and subject was verified.
// The login flow requires a valid mobile ticket and a valid Aadhaar ticket
// before it logs the citizen in.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidTicket = errors.New("invalid verification ticket")
	ErrTicketExpired = errors.New("verification ticket expired")
)

// Claims carries the verified channel next to the standard claims; the
// subject is the verified mobile or Aadhaar number.
type Claims struct {
	jwt.RegisteredClaims
	Channel string `json:"chn"`
}

// Issuer signs and checks tickets.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. now may be nil to use time.Now.
func NewIssuer(secret []byte, ttl time.Duration, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: secret, ttl: ttl, now: now}
}

// Issue returns a signed ticket for (channel, subject).
func (i *Issuer) Issue(channel, subject string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Channel: channel,
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return s, nil
}

// Check verifies the signature and expiry of ticket and that it was issued
// for (channel, subject).
func (i *Issuer) Check(ticket, channel, subject string) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTicketExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if !token.Valid {
		return ErrInvalidTicket
	}
	if claims.Channel != channel || claims.Subject != subject {
		return fmt.Errorf("%w: issued for another subject", ErrInvalidTicket)
	}
	return nil
}
