// Package services contains the application services of the portal client:
// the multi-step login flow and the simulated citizen features behind the
// gate.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citizenportal/internal/client/auth"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/otp"
	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/citizenportal/internal/client/session"
	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
)

// ErrWrongStep is returned when a flow method is called while the session
// cursor is at a different step.
var ErrWrongStep = errors.New("not available at the current login step")

// Metadata keys holding verification tickets between steps. They survive a
// restart so an interrupted flow can resume.
const (
	ticketMobileKey  = "login.ticket.mobile"
	ticketAadhaarKey = "login.ticket.aadhaar"
	ticketSecretKey  = "login.ticket.secret"
)

// LoginService drives the session through
// mobile → mobile-otp → aadhaar → aadhaar-otp → completed.
//
// Contract:
//   - SubmitMobile: validate the number, send a code, advance to mobile-otp.
//   - VerifyMobileOTP: check the code, record a ticket, advance to aadhaar.
//   - SubmitAadhaar: validate the number, send a code to the registered
//     mobile, advance to aadhaar-otp.
//   - CompleteLogin: check the code and both tickets, log the citizen in.
//   - Cancel: abandon the flow, keep any existing login.
//   - Logout: end the session.
//
// Validation failures wrap ErrValidation and leave the session untouched.
type LoginService interface {
	SubmitMobile(ctx context.Context, mobile string) (otp.Delivery, error)
	VerifyMobileOTP(ctx context.Context, code string) error
	SubmitAadhaar(ctx context.Context, aadhaar string) (otp.Delivery, error)
	CompleteLogin(ctx context.Context, code string, profile Profile) (models.User, error)
	Cancel(ctx context.Context) error
	Logout(ctx context.Context) error
}

type loginService struct {
	authority *session.Authority
	verifier  otp.Verifier
	tickets   *auth.Issuer
	meta      metadata.Repository
	log       logging.Logger
}

// NewLoginService wires the flow to its collaborators.
func NewLoginService(a *session.Authority, v otp.Verifier, tickets *auth.Issuer, meta metadata.Repository, log logging.Logger) LoginService {
	return &loginService{
		authority: a,
		verifier:  v,
		tickets:   tickets,
		meta:      meta,
		log:       log.With("component", "login"),
	}
}

// TicketSecret returns configured when set. Otherwise it returns the random
// per-device secret stored in meta, creating it on first use.
func TicketSecret(ctx context.Context, meta metadata.Repository, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	secret, err := meta.Get(ctx, ticketSecretKey)
	if err != nil {
		return nil, fmt.Errorf("read ticket secret: %w", err)
	}
	if len(secret) > 0 {
		return secret, nil
	}

	secret = common.GenerateRandByteArray(32)
	if err := meta.Set(ctx, ticketSecretKey, secret); err != nil {
		return nil, fmt.Errorf("store ticket secret: %w", err)
	}
	return secret, nil
}

func (s *loginService) expect(step models.Step) (models.State, error) {
	st := s.authority.State()
	if st.CurrentStep != step {
		return st, fmt.Errorf("%w: expected %s, at %s", ErrWrongStep, step, st.CurrentStep)
	}
	return st, nil
}

func (s *loginService) SubmitMobile(ctx context.Context, mobile string) (otp.Delivery, error) {
	if _, err := s.expect(models.StepMobile); err != nil {
		return otp.Delivery{}, err
	}
	if err := check(mobileForm{Mobile: mobile}); err != nil {
		return otp.Delivery{}, err
	}

	d, err := s.verifier.Send(ctx, otp.ChannelMobile, mobile)
	if err != nil {
		return otp.Delivery{}, fmt.Errorf("send mobile code: %w", err)
	}

	if err := s.authority.SetTempData(ctx, models.TempData{Mobile: mobile}); err != nil {
		return otp.Delivery{}, err
	}
	if err := s.authority.Advance(ctx, models.StepMobileOTP); err != nil {
		return otp.Delivery{}, err
	}
	return d, nil
}

func (s *loginService) VerifyMobileOTP(ctx context.Context, code string) error {
	st, err := s.expect(models.StepMobileOTP)
	if err != nil {
		return err
	}
	if st.TempData.Mobile == "" {
		return fmt.Errorf("%w: mobile number missing, restart login", ErrWrongStep)
	}
	if err := check(codeForm{Code: code}); err != nil {
		return err
	}

	if err := s.verifier.Verify(ctx, otp.ChannelMobile, st.TempData.Mobile, code); err != nil {
		s.log.Info(ctx, "mobile code rejected", "error", err)
		return err
	}
	if err := s.storeTicket(ctx, ticketMobileKey, otp.ChannelMobile, st.TempData.Mobile); err != nil {
		return err
	}
	return s.authority.Advance(ctx, models.StepAadhaar)
}

func (s *loginService) SubmitAadhaar(ctx context.Context, aadhaar string) (otp.Delivery, error) {
	st, err := s.expect(models.StepAadhaar)
	if err != nil {
		return otp.Delivery{}, err
	}
	if err := check(aadhaarForm{Aadhaar: aadhaar}); err != nil {
		return otp.Delivery{}, err
	}

	d, err := s.verifier.Send(ctx, otp.ChannelAadhaar, aadhaar)
	if err != nil {
		return otp.Delivery{}, fmt.Errorf("send aadhaar code: %w", err)
	}
	// The Aadhaar code goes to the number registered for it.
	d.Destination = common.MaskTail(st.TempData.Mobile, 4)

	if err := s.authority.SetTempData(ctx, models.TempData{Aadhaar: aadhaar}); err != nil {
		return otp.Delivery{}, err
	}
	if err := s.authority.Advance(ctx, models.StepAadhaarOTP); err != nil {
		return otp.Delivery{}, err
	}
	return d, nil
}

// CompleteLogin finishes the flow. When the citizen re-verifies an existing
// login and leaves profile.Name empty, the stored profile is kept.
func (s *loginService) CompleteLogin(ctx context.Context, code string, profile Profile) (models.User, error) {
	st, err := s.expect(models.StepAadhaarOTP)
	if err != nil {
		return models.User{}, err
	}
	mobile, aadhaar := st.TempData.Mobile, st.TempData.Aadhaar
	if mobile == "" || aadhaar == "" {
		return models.User{}, fmt.Errorf("%w: verified numbers missing, restart login", ErrWrongStep)
	}

	user := models.User{
		ID:          models.UserID(mobile, aadhaar),
		Name:        profile.Name,
		Mobile:      mobile,
		Aadhaar:     aadhaar,
		Email:       profile.Email,
		Address:     profile.Address,
		DateOfBirth: profile.DateOfBirth,
	}
	if prev := st.User; prev != nil && prev.ID == user.ID && profile.Name == "" {
		user = *prev
	}

	if err := check(codeForm{Code: code}); err != nil {
		return models.User{}, err
	}
	if err := check(Profile{Name: user.Name, Email: user.Email, Address: user.Address, DateOfBirth: user.DateOfBirth}); err != nil {
		return models.User{}, err
	}

	if err := s.verifier.Verify(ctx, otp.ChannelAadhaar, aadhaar, code); err != nil {
		s.log.Info(ctx, "aadhaar code rejected", "error", err)
		return models.User{}, err
	}
	if err := s.storeTicket(ctx, ticketAadhaarKey, otp.ChannelAadhaar, aadhaar); err != nil {
		return models.User{}, err
	}
	if err := s.checkTicket(ctx, ticketMobileKey, otp.ChannelMobile, mobile); err != nil {
		return models.User{}, err
	}
	if err := s.checkTicket(ctx, ticketAadhaarKey, otp.ChannelAadhaar, aadhaar); err != nil {
		return models.User{}, err
	}

	if err := s.authority.Login(ctx, user); err != nil {
		return models.User{}, err
	}
	if err := s.discardTickets(ctx); err != nil {
		s.log.Warn(ctx, "failed to discard verification tickets", "error", err)
	}

	s.log.Info(ctx, "citizen logged in", "user", user)
	return user, nil
}

func (s *loginService) Cancel(ctx context.Context) error {
	if err := s.authority.ResetAuth(ctx); err != nil {
		return err
	}
	return s.discardTickets(ctx)
}

func (s *loginService) Logout(ctx context.Context) error {
	if err := s.authority.Logout(ctx); err != nil {
		return err
	}
	return s.discardTickets(ctx)
}

func (s *loginService) storeTicket(ctx context.Context, key string, ch otp.Channel, subject string) error {
	t, err := s.tickets.Issue(string(ch), subject)
	if err != nil {
		return err
	}
	if err := s.meta.Set(ctx, key, []byte(t)); err != nil {
		return fmt.Errorf("store %s ticket: %w", ch, err)
	}
	return nil
}

func (s *loginService) checkTicket(ctx context.Context, key string, ch otp.Channel, subject string) error {
	t, err := s.meta.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s ticket: %w", ch, err)
	}
	if t == nil {
		return fmt.Errorf("%w: no %s ticket", auth.ErrInvalidTicket, ch)
	}
	return s.tickets.Check(string(t), string(ch), subject)
}

func (s *loginService) discardTickets(ctx context.Context) error {
	for _, key := range []string{ticketMobileKey, ticketAadhaarKey} {
		if err := s.meta.Delete(ctx, key); err != nil {
			return fmt.Errorf("discard ticket: %w", err)
		}
	}
	return nil
}
