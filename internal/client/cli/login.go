package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citizenportal/internal/client/auth"
	"github.com/dmitrijs2005/citizenportal/internal/client/locale"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/otp"
	"github.com/dmitrijs2005/citizenportal/internal/client/services"
)

// errPaused is returned by a step prompt when the citizen answers with an
// empty line.
var errPaused = errors.New("login paused")

// Login runs the interactive login from the persisted step. An empty answer
// pauses the flow; the next login resumes where it stopped.
func (a *App) Login(ctx context.Context) error {
	if st := a.authority.State(); st.Settled() {
		printlnFn(fmt.Sprintf("Already logged in as %s.", st.User.Name))
		return nil
	}

	for {
		st := a.authority.State()

		var err error
		switch st.CurrentStep {
		case models.StepMobile:
			err = a.askMobile(ctx)
		case models.StepMobileOTP:
			err = a.askMobileCode(ctx)
		case models.StepAadhaar:
			err = a.askAadhaar(ctx)
		case models.StepAadhaarOTP:
			err = a.askAadhaarCode(ctx, st)
		default:
			return nil
		}

		switch {
		case err == nil:
			if a.authority.State().Settled() {
				return nil
			}
		case errors.Is(err, errPaused):
			printlnFn("Login paused, type 'login' to continue.")
			return nil
		case mustRestart(err):
			printlnFn("Error:", err)
			printlnFn("Please start again.")
			if err := a.login.Cancel(ctx); err != nil {
				return err
			}
		case errors.Is(err, services.ErrValidation), errors.Is(err, otp.ErrCodeMismatch):
			printlnFn("Error:", err)
		default:
			return err
		}
	}
}

func mustRestart(err error) bool {
	for _, target := range []error{
		otp.ErrNoPendingCode,
		otp.ErrCodeExpired,
		otp.ErrTooManyAttempts,
		auth.ErrInvalidTicket,
		auth.ErrTicketExpired,
		services.ErrWrongStep,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (a *App) askMobile(ctx context.Context) error {
	mobile, err := getSimpleText(a.reader, "Enter your 10-digit mobile number (empty line to stop)", a.out)
	if err != nil {
		return err
	}
	if mobile == "" {
		return errPaused
	}

	d, err := a.login.SubmitMobile(ctx, mobile)
	if err != nil {
		return err
	}
	a.announce(d)
	return nil
}

func (a *App) askMobileCode(ctx context.Context) error {
	code, err := getSecret("Enter the code sent to your mobile", a.out)
	if err != nil {
		return err
	}
	if code == "" {
		return errPaused
	}
	return a.login.VerifyMobileOTP(ctx, code)
}

func (a *App) askAadhaar(ctx context.Context) error {
	aadhaar, err := getSecret("Enter your 12-digit Aadhaar number", a.out)
	if err != nil {
		return err
	}
	if aadhaar == "" {
		return errPaused
	}

	d, err := a.login.SubmitAadhaar(ctx, aadhaar)
	if err != nil {
		return err
	}
	a.announce(d)
	return nil
}

func (a *App) askAadhaarCode(ctx context.Context, st models.State) error {
	code, err := getSecret("Enter the Aadhaar verification code", a.out)
	if err != nil {
		return err
	}
	if code == "" {
		return errPaused
	}

	var profile services.Profile
	known := st.User != nil && st.User.ID == models.UserID(st.TempData.Mobile, st.TempData.Aadhaar)
	if !known {
		if profile.Name, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
			return err
		}
		if profile.Email, err = getSimpleText(a.reader, "Email (optional)", a.out); err != nil {
			return err
		}
	}

	user, err := a.login.CompleteLogin(ctx, code, profile)
	if err != nil {
		return err
	}
	printlnFn(a.printer().Sprintf(locale.MsgWelcome, user.Name))
	return nil
}

func (a *App) announce(d otp.Delivery) {
	printlnFn(a.printer().Sprintf(locale.MsgCodeSent, d.Destination))
	if d.Hint != "" {
		printlnFn(fmt.Sprintf("(demo mode, your code is %s)", d.Hint))
	}
}
