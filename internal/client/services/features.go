package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/citizenportal/internal/client/gate"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/session"
	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
)

// Feature names as shown in gate notices.
const (
	FeatureApplicationStatus = "application status"
	FeatureEligibility       = "eligibility check"
	FeatureDocuments         = "document download"
	FeatureProfile           = "profile"
)

// Scheduler runs fn once after d. Scheduled work cannot be cancelled.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

type ApplicationStatus struct {
	ApplicationID string
	Applicant     string
	Service       string
	Status        string
	Office        string
}

type Eligibility struct {
	Scheme    string
	Title     string
	Applicant string
	Eligible  bool
	Reason    string
}

type Document struct {
	Kind     string
	Title    string
	FileName string
	Content  []byte
}

// ProfilePatch holds the profile fields to change. Empty fields keep their
// current value.
type ProfilePatch struct {
	Name        string
	Email       string
	Address     string
	DateOfBirth string
}

// Features are the simulated citizen services. Every method runs behind the
// gate; the lookups complete through the scheduler after a fixed delay and
// always succeed.
type Features struct {
	gate      *gate.Gate
	authority *session.Authority
	sched     Scheduler
	delay     time.Duration
	now       func() time.Time
	log       logging.Logger
}

func NewFeatures(g *gate.Gate, a *session.Authority, sched Scheduler, delay time.Duration, log logging.Logger) *Features {
	return &Features{
		gate:      g,
		authority: a,
		sched:     sched,
		delay:     delay,
		now:       time.Now,
		log:       log.With("component", "features"),
	}
}

// ApplicationStatus looks up appID and calls done with the result.
func (f *Features) ApplicationStatus(ctx context.Context, appID string, done func(ApplicationStatus)) error {
	appID = strings.ToUpper(strings.TrimSpace(appID))
	if appID == "" {
		return fmt.Errorf("%w: application id is required", ErrValidation)
	}

	return f.gate.Guard(ctx, FeatureApplicationStatus, func(ctx context.Context, user models.User) error {
		res := ApplicationStatus{ApplicationID: appID, Applicant: user.Name, Status: defaultApplicationStatus}
		if fx, ok := applications[appID]; ok {
			res.Service, res.Status, res.Office = fx.Service, fx.Status, fx.Office
		}
		f.schedule(ctx, FeatureApplicationStatus, func() { done(res) })
		return nil
	})
}

// CheckEligibility evaluates scheme against the citizen's age.
func (f *Features) CheckEligibility(ctx context.Context, scheme string, done func(Eligibility)) error {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	fx, ok := schemes[scheme]
	if !ok {
		return fmt.Errorf("%w: unknown scheme %q, try one of %s", ErrValidation, scheme, strings.Join(SchemeNames(), ", "))
	}

	return f.gate.Guard(ctx, FeatureEligibility, func(ctx context.Context, user models.User) error {
		res := Eligibility{Scheme: scheme, Title: fx.Title, Applicant: user.Name}
		res.Eligible, res.Reason = evaluate(fx, user.DateOfBirth, f.now())
		f.schedule(ctx, FeatureEligibility, func() { done(res) })
		return nil
	})
}

// DownloadDocument renders document kind for the citizen.
func (f *Features) DownloadDocument(ctx context.Context, kind string, done func(Document)) error {
	kind = strings.ToLower(strings.TrimSpace(kind))
	fx, ok := documents[kind]
	if !ok {
		return fmt.Errorf("%w: unknown document %q, try one of %s", ErrValidation, kind, strings.Join(DocumentKinds(), ", "))
	}

	return f.gate.Guard(ctx, FeatureDocuments, func(ctx context.Context, user models.User) error {
		doc := Document{
			Kind:     kind,
			Title:    fx.Title,
			FileName: fx.FileName,
			Content:  renderDocument(fx.Title, user, f.now()),
		}
		f.schedule(ctx, FeatureDocuments, func() { done(doc) })
		return nil
	})
}

// UpdateProfile merges patch into the signed-in profile and stores the
// result as a full replacement.
func (f *Features) UpdateProfile(ctx context.Context, patch ProfilePatch) (models.User, error) {
	var updated models.User
	err := f.gate.Guard(ctx, FeatureProfile, func(ctx context.Context, user models.User) error {
		if patch.Name != "" {
			user.Name = patch.Name
		}
		if patch.Email != "" {
			user.Email = patch.Email
		}
		if patch.Address != "" {
			user.Address = patch.Address
		}
		if patch.DateOfBirth != "" {
			user.DateOfBirth = patch.DateOfBirth
		}

		if err := check(Profile{Name: user.Name, Email: user.Email, Address: user.Address, DateOfBirth: user.DateOfBirth}); err != nil {
			return err
		}
		if err := f.authority.UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	return updated, err
}

func (f *Features) schedule(ctx context.Context, feature string, fn func()) {
	f.log.Debug(ctx, "request scheduled", "feature", feature, "delay", f.delay)
	f.sched.After(f.delay, fn)
}

// SchemeNames lists the known eligibility schemes.
func SchemeNames() []string { return sortedKeys(schemes) }

// DocumentKinds lists the downloadable documents.
func DocumentKinds() []string { return sortedKeys(documents) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func evaluate(s schemeFixture, dob string, now time.Time) (bool, string) {
	if dob == "" {
		return true, "provisionally eligible, add your date of birth to confirm"
	}
	born, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return true, "provisionally eligible, date of birth could not be read"
	}

	age := ageAt(born, now)
	switch {
	case s.MinAge > 0 && age < s.MinAge:
		return false, fmt.Sprintf("minimum age is %d", s.MinAge)
	case s.MaxAge > 0 && age > s.MaxAge:
		return false, fmt.Sprintf("maximum age is %d", s.MaxAge)
	default:
		return true, "all criteria met"
	}
}

func ageAt(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age
}

func renderDocument(title string, user models.User, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "Name:    %s\n", user.Name)
	fmt.Fprintf(&b, "Mobile:  %s\n", common.MaskTail(user.Mobile, 4))
	fmt.Fprintf(&b, "Aadhaar: %s\n", common.MaskTail(user.Aadhaar, 4))
	if user.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", user.Address)
	}
	fmt.Fprintf(&b, "Issued:  %s\n", now.Format("2006-01-02"))
	return []byte(b.String())
}
