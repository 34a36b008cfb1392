package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/citizenportal/internal/client/auth"
	"github.com/dmitrijs2005/citizenportal/internal/client/config"
	"github.com/dmitrijs2005/citizenportal/internal/client/gate"
	"github.com/dmitrijs2005/citizenportal/internal/client/locale"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/otp"
	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/citizenportal/internal/client/services"
	"github.com/dmitrijs2005/citizenportal/internal/client/session"
	"github.com/dmitrijs2005/citizenportal/internal/client/storage"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type App struct {
	config    *config.Config
	db        *sql.DB
	authority *session.Authority
	login     services.LoginService
	features  *services.Features
	gate      *gate.Gate
	prefs     *locale.Preferences
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer

	mu          sync.RWMutex
	lang        language.Tag
	status      string
	unsubscribe func()
}

// NewApp opens the local database, restores the session and wires the
// services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	var opts []snapshot.Option
	if c.StorageSecret != "" {
		opts = append(opts, snapshot.WithSecret(c.StorageSecret))
	}

	authority, err := session.New(ctx, snapshot.NewSQLiteRepository(db, opts...), log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	verifier := otp.NewSimulated(otp.Options{
		TTL:   c.OTPTTL,
		Delay: c.OTPDelay,
		Demo:  c.DemoOTP,
	}, log)

	a, err := assemble(ctx, c, db, authority, verifier, services.TimerScheduler{}, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func assemble(ctx context.Context, c *config.Config, db *sql.DB, authority *session.Authority,
	verifier otp.Verifier, sched services.Scheduler, log logging.Logger) (*App, error) {

	meta := metadata.NewSQLiteRepository(db)

	secret, err := services.TicketSecret(ctx, meta, c.TicketSecret)
	if err != nil {
		return nil, err
	}

	prefs := locale.NewPreferences(meta)
	lang, err := prefs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load language: %w", err)
	}

	a := &App{
		config:    c,
		db:        db,
		authority: authority,
		prefs:     prefs,
		log:       log.With("component", "cli"),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		lang:      lang,
	}

	a.gate = gate.New(authority,
		gate.NotifierFunc(func(_ context.Context, msg string) { printlnFn(msg) }),
		log,
		gate.WithLanguage(a.language),
		gate.WithDiverter(gate.DiverterFunc(a.divertToLogin)),
	)
	a.login = services.NewLoginService(authority, verifier, auth.NewIssuer(secret, c.TicketTTL, nil), meta, log)
	a.features = services.NewFeatures(a.gate, authority, sched, c.FeatureDelay, log)

	a.setStatus(authority.State())
	a.unsubscribe = authority.Subscribe(a.setStatus)
	return a, nil
}

// Run greets the citizen and serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) {
	printlnFn("Citizen portal (type 'help' for commands)")
	if st := a.authority.State(); st.CurrentStep != models.StepMobile && st.CurrentStep != models.StepCompleted {
		printlnFn(fmt.Sprintf("A login is in progress at step %q, type 'login' to resume or 'cancel' to start over.", st.CurrentStep))
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the database and stops status updates.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.authority.Close()
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.gate.Allowed()
}

func (a *App) language() language.Tag {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lang
}

func (a *App) printer() *message.Printer {
	return locale.Printer(a.language())
}

// setStatus is the session listener that keeps the prompt current.
func (a *App) setStatus(st models.State) {
	s := string(st.CurrentStep)
	if st.User != nil {
		s = st.User.Name + ", " + s
	}

	a.mu.Lock()
	a.status = "(" + s + ")"
	a.mu.Unlock()
}

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *App) divertToLogin(ctx context.Context, feature string) {
	if err := a.Login(ctx); err != nil {
		report(err)
		return
	}
	if a.isLoggedIn() {
		printlnFn(fmt.Sprintf("You can now use %s.", feature))
	}
}
