// Package otp is the one-time-password collaborator of the login flow. The
// session authority never checks codes itself; the flow asks a Verifier.
package otp

import (
	"context"
	"errors"
	"time"
)

// Channel identifies what a code proves possession of.
type Channel string

const (
	ChannelMobile  Channel = "mobile"
	ChannelAadhaar Channel = "aadhaar"
)

var (
	ErrNoPendingCode   = errors.New("no code was sent")
	ErrCodeMismatch    = errors.New("incorrect code")
	ErrCodeExpired     = errors.New("code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Delivery describes a sent code. Hint carries the code itself only in demo
// mode, where no real message is sent.
type Delivery struct {
	Channel     Channel
	Destination string
	ExpiresAt   time.Time
	Hint        string
}

// Verifier sends and checks one-time codes.
type Verifier interface {
	Send(ctx context.Context, ch Channel, target string) (Delivery, error)
	Verify(ctx context.Context, ch Channel, target, code string) error
}

// Clock is an injectable time source.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
