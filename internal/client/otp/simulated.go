package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// Options tunes the simulated verifier. Zero values take defaults.
type Options struct {
	// TTL is how long a sent code stays valid.
	TTL time.Duration
	// Delay simulates network latency on Send and Verify.
	Delay time.Duration
	// MaxAttempts is the number of wrong codes tolerated before the pending
	// code is burned.
	MaxAttempts int
	// CodeLength is the number of digits per code.
	CodeLength int
	// Demo puts the code in Delivery.Hint.
	Demo bool
	// Cost is the bcrypt cost used to hash pending codes.
	Cost  int
	Clock Clock
}

func (o *Options) normalize() {
	if o.TTL == 0 {
		o.TTL = 5 * time.Minute
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.CodeLength == 0 {
		o.CodeLength = 6
	}
	if o.Cost == 0 {
		o.Cost = bcrypt.DefaultCost
	}
	if o.Clock == nil {
		o.Clock = realClock{}
	}
}

type pendingCode struct {
	hash      []byte
	expiresAt time.Time
	attempts  int
}

type pendingKey struct {
	ch     Channel
	target string
}

// Simulated issues codes locally. Only bcrypt hashes of the codes are kept.
type Simulated struct {
	opts    Options
	log     logging.Logger
	mu      sync.Mutex
	pending map[pendingKey]*pendingCode
}

func NewSimulated(opts Options, log logging.Logger) *Simulated {
	opts.normalize()
	return &Simulated{
		opts:    opts,
		log:     log.With("component", "otp"),
		pending: make(map[pendingKey]*pendingCode),
	}
}

// Send issues a fresh code for (ch, target), replacing any pending one.
func (s *Simulated) Send(ctx context.Context, ch Channel, target string) (Delivery, error) {
	if err := s.wait(ctx); err != nil {
		return Delivery{}, err
	}

	code, err := common.RandomDigits(s.opts.CodeLength)
	if err != nil {
		return Delivery{}, fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.Cost)
	if err != nil {
		return Delivery{}, fmt.Errorf("hash code: %w", err)
	}

	expiresAt := s.opts.Clock.Now().Add(s.opts.TTL)

	s.mu.Lock()
	s.pending[pendingKey{ch, target}] = &pendingCode{hash: hash, expiresAt: expiresAt}
	s.mu.Unlock()

	d := Delivery{
		Channel:     ch,
		Destination: common.MaskTail(target, 4),
		ExpiresAt:   expiresAt,
	}
	if s.opts.Demo {
		d.Hint = code
	}

	s.log.Info(ctx, "code sent", "channel", ch, "destination", d.Destination)
	return d, nil
}

// Verify checks code against the pending code for (ch, target). A correct
// code consumes it.
func (s *Simulated) Verify(ctx context.Context, ch Channel, target, code string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	key := pendingKey{ch, target}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[key]
	if !ok {
		return ErrNoPendingCode
	}
	if !s.opts.Clock.Now().Before(p.expiresAt) {
		delete(s.pending, key)
		return ErrCodeExpired
	}

	err := bcrypt.CompareHashAndPassword(p.hash, []byte(code))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		p.attempts++
		if p.attempts >= s.opts.MaxAttempts {
			delete(s.pending, key)
			s.log.Warn(ctx, "code burned after failed attempts", "channel", ch)
			return ErrTooManyAttempts
		}
		return ErrCodeMismatch
	}
	if err != nil {
		return fmt.Errorf("compare code: %w", err)
	}

	delete(s.pending, key)
	s.log.Info(ctx, "code verified", "channel", ch)
	return nil
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.opts.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.opts.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
