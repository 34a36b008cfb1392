// Package gate is the single authorization boundary of the portal client.
// Every privileged feature runs through Gate.Guard; nothing else checks the
// session for access decisions.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citizenportal/internal/client/locale"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
	"golang.org/x/text/language"
)

var ErrLoginRequired = errors.New("login required")

// Session is the read side of the session authority the gate needs.
type Session interface {
	IsAuthenticated() bool
	User() *models.User
}

// Notifier shows a transient message to the citizen.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Diverter sends the citizen to the login flow.
type Diverter interface {
	DivertToLogin(ctx context.Context, feature string)
}

type NotifierFunc func(ctx context.Context, msg string)

func (f NotifierFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }

type DiverterFunc func(ctx context.Context, feature string)

func (f DiverterFunc) DivertToLogin(ctx context.Context, feature string) { f(ctx, feature) }

type Option func(*Gate)

// WithLanguage sets the source of the notice language. It is consulted on
// every denial so a language switch applies immediately.
func WithLanguage(fn func() language.Tag) Option {
	return func(g *Gate) { g.lang = fn }
}

// WithDiverter sets what happens after the notice. Without one the caller
// only gets ErrLoginRequired.
func WithDiverter(d Diverter) Option {
	return func(g *Gate) { g.diverter = d }
}

type Gate struct {
	session  Session
	notifier Notifier
	diverter Diverter
	lang     func() language.Tag
	log      logging.Logger
}

func New(s Session, n Notifier, log logging.Logger, opts ...Option) *Gate {
	g := &Gate{
		session:  s,
		notifier: n,
		lang:     func() language.Tag { return locale.Default },
		log:      log.With("component", "gate"),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Allowed reports whether privileged features are currently reachable.
func (g *Gate) Allowed() bool {
	return g.session.IsAuthenticated() && g.session.User() != nil
}

// Guard runs action with a copy of the signed-in user. When nobody is signed
// in the citizen is notified and diverted to login, action is not called and
// the result wraps ErrLoginRequired.
func (g *Gate) Guard(ctx context.Context, feature string, action func(ctx context.Context, user models.User) error) error {
	user := g.session.User()
	if !g.session.IsAuthenticated() || user == nil {
		g.log.Info(ctx, "access denied", "feature", feature)
		if g.notifier != nil {
			g.notifier.Notify(ctx, locale.Printer(g.lang()).Sprintf(locale.MsgLoginRequired, feature))
		}
		if g.diverter != nil {
			g.diverter.DivertToLogin(ctx, feature)
		}
		return fmt.Errorf("%w: %s", ErrLoginRequired, feature)
	}

	g.log.Debug(ctx, "access granted", "feature", feature, "user_id", user.ID)
	return action(ctx, *user)
}
