package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/citizenportal/internal/client/locale"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/services"
	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/dmitrijs2005/citizenportal/internal/filex"
)

// Cancel abandons an in-progress login. An existing login is kept.
func (a *App) Cancel(ctx context.Context) error {
	if err := a.login.Cancel(ctx); err != nil {
		return err
	}
	printlnFn(a.printer().Sprintf(locale.MsgLoginCancelled))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.login.Logout(ctx); err != nil {
		return err
	}
	printlnFn(a.printer().Sprintf(locale.MsgLoggedOut))
	return nil
}

// WhoAmI prints the signed-in profile with identifiers masked.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.authority.User()
	if u == nil {
		printlnFn("Not logged in.")
		return nil
	}
	printUser(*u)
	return nil
}

// Profile edits the signed-in profile. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	return a.gate.Guard(ctx, services.FeatureProfile, func(ctx context.Context, u models.User) error {
		var (
			patch services.ProfilePatch
			err   error
		)
		if patch.Name, err = getSimpleText(a.reader, fmt.Sprintf("Name [%s]", u.Name), a.out); err != nil {
			return err
		}
		if patch.Email, err = getSimpleText(a.reader, fmt.Sprintf("Email [%s]", u.Email), a.out); err != nil {
			return err
		}
		if patch.Address, err = getSimpleText(a.reader, fmt.Sprintf("Address [%s]", u.Address), a.out); err != nil {
			return err
		}
		if patch.DateOfBirth, err = getSimpleText(a.reader, fmt.Sprintf("Date of birth, YYYY-MM-DD [%s]", u.DateOfBirth), a.out); err != nil {
			return err
		}

		updated, err := a.features.UpdateProfile(ctx, patch)
		if err != nil {
			return err
		}
		printlnFn("Profile updated.")
		printUser(updated)
		return nil
	})
}

func (a *App) Status(ctx context.Context, appID string) error {
	err := a.features.ApplicationStatus(ctx, appID, func(r services.ApplicationStatus) {
		if r.Service == "" {
			printlnFn(fmt.Sprintf("[%s] %s", r.ApplicationID, r.Status))
			return
		}
		printlnFn(fmt.Sprintf("[%s] %s for %s: %s (%s)", r.ApplicationID, r.Service, r.Applicant, r.Status, r.Office))
	})
	if err != nil {
		return err
	}
	printlnFn("Checking application status...")
	return nil
}

func (a *App) Eligibility(ctx context.Context, scheme string) error {
	err := a.features.CheckEligibility(ctx, scheme, func(r services.Eligibility) {
		verdict := "not eligible"
		if r.Eligible {
			verdict = "eligible"
		}
		printlnFn(fmt.Sprintf("[%s] %s is %s: %s", r.Title, r.Applicant, verdict, r.Reason))
	})
	if err != nil {
		return err
	}
	printlnFn("Checking eligibility...")
	return nil
}

func (a *App) Download(ctx context.Context, kind string) error {
	err := a.features.DownloadDocument(ctx, kind, func(d services.Document) {
		path, err := filex.Save(a.config.DownloadDir, d.FileName, d.Content)
		if err != nil {
			a.log.Error(ctx, "failed to save document", "kind", d.Kind, "error", err)
			printlnFn("Error:", err)
			return
		}
		printlnFn(fmt.Sprintf("Saved %s to %s", d.Title, path))
	})
	if err != nil {
		return err
	}
	printlnFn("Preparing document...")
	return nil
}

// Lang prints the current language, or switches to code and remembers it.
func (a *App) Lang(ctx context.Context, code string) error {
	if code == "" {
		printlnFn("Language:", locale.Code(a.language()))
		return nil
	}

	tag, err := a.prefs.Save(ctx, code)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.lang = tag
	a.mu.Unlock()

	printlnFn("Language:", locale.Code(tag))
	return nil
}

// State prints the session state with identifiers masked.
func (a *App) State(ctx context.Context) error {
	st := a.authority.State()
	printlnFn("authenticated:", st.IsAuthenticated)
	printlnFn("step:", st.CurrentStep)
	if st.User != nil {
		printlnFn("user:", st.User.Name, st.User.ID)
	}
	if st.TempData.Mobile != "" {
		printlnFn("pending mobile:", common.MaskTail(st.TempData.Mobile, 4))
	}
	if st.TempData.Aadhaar != "" {
		printlnFn("pending aadhaar:", common.MaskTail(st.TempData.Aadhaar, 4))
	}
	return nil
}

func printUser(u models.User) {
	printlnFn("Name:   ", u.Name)
	printlnFn("Mobile: ", common.MaskTail(u.Mobile, 4))
	printlnFn("Aadhaar:", common.MaskTail(u.Aadhaar, 4))
	if u.Email != "" {
		printlnFn("Email:  ", u.Email)
	}
	if u.Address != "" {
		printlnFn("Address:", u.Address)
	}
	if u.DateOfBirth != "" {
		printlnFn("Born:   ", u.DateOfBirth)
	}
}
