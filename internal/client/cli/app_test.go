package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/citizenportal/internal/client/config"
	"github.com/dmitrijs2005/citizenportal/internal/client/locale"
	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/otp"
	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/citizenportal/internal/client/session"
	"github.com/dmitrijs2005/citizenportal/internal/client/storage"
	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMobile  = "9876543210"
	testAadhaar = "234523452345"
	goodCode    = "123456"
	staleCode   = "999999"
)

// ---- helpers ----

// fixedVerifier accepts goodCode for every channel. staleCode behaves as if
// no code had been sent.
type fixedVerifier struct{}

func (fixedVerifier) Send(_ context.Context, ch otp.Channel, target string) (otp.Delivery, error) {
	return otp.Delivery{Channel: ch, Destination: common.MaskTail(target, 4), Hint: goodCode}, nil
}

func (fixedVerifier) Verify(_ context.Context, _ otp.Channel, _ string, code string) error {
	switch code {
	case goodCode:
		return nil
	case staleCode:
		return otp.ErrNoPendingCode
	default:
		return otp.ErrCodeMismatch
	}
}

type immediateScheduler struct{}

func (immediateScheduler) After(_ time.Duration, fn func()) { fn() }

func newTestApp(t *testing.T, input string) *App {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)

	authority, err := session.New(ctx, snapshot.NewSQLiteRepository(db), logging.Discard())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DownloadDir = t.TempDir()

	a, err := assemble(ctx, cfg, db, authority, fixedVerifier{}, immediateScheduler{}, logging.Discard())
	require.NoError(t, err)
	a.reader = bufio.NewReader(strings.NewReader(input))
	a.out = io.Discard
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// stubSecrets answers hidden prompts from answers in order; an exhausted
// queue answers with an empty line.
func stubSecrets(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSecret
	getSecret = func(string, io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", nil
		}
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}
	t.Cleanup(func() { getSecret = orig })
}

func loginDirect(t *testing.T, a *App) {
	t.Helper()
	require.NoError(t, a.authority.Login(context.Background(), models.User{
		ID:      models.UserID(testMobile, testAadhaar),
		Name:    "Ravi",
		Mobile:  testMobile,
		Aadhaar: testAadhaar,
	}))
}

func joined(lines *[]string) string { return strings.Join(*lines, "\n") }

// ---- TESTS ----

func TestLogin_FullFlow(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t, goodCode, testAadhaar, goodCode)
	a := newTestApp(t, testMobile+"\nRavi\n\n")

	require.NoError(t, a.Login(context.Background()))

	st := a.authority.State()
	require.True(t, st.Settled())
	assert.Equal(t, "Ravi", st.User.Name)
	assert.Equal(t, testAadhaar, st.User.Aadhaar)

	text := joined(out)
	assert.Contains(t, text, "Verification code sent to XXXXXX3210")
	assert.Contains(t, text, "(demo mode, your code is 123456)")
	assert.Contains(t, text, "Welcome, Ravi")
	assert.NotContains(t, text, testAadhaar)
	assert.Equal(t, "(Ravi, completed)", a.getStatus())

	*out = nil
	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, joined(out), "Already logged in as Ravi.")
}

func TestLogin_PauseAndResume(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t)
	a := newTestApp(t, testMobile+"\n")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, models.StepMobileOTP, a.authority.CurrentStep())
	assert.Contains(t, joined(out), "Login paused, type 'login' to continue.")
	assert.Equal(t, "(mobile-otp)", a.getStatus())

	stubSecrets(t, goodCode)
	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, models.StepAadhaar, a.authority.CurrentStep())
}

func TestLogin_RetriesInvalidInput(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t, "000000", goodCode)
	a := newTestApp(t, "12345\n"+testMobile+"\n")

	require.NoError(t, a.Login(context.Background()))

	assert.Equal(t, models.StepAadhaar, a.authority.CurrentStep())
	text := joined(out)
	assert.Contains(t, text, "mobile must be 10 digits")
	assert.Contains(t, text, "incorrect code")
}

func TestLogin_RestartsWhenCodeIsGone(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t, staleCode)
	a := newTestApp(t, testMobile+"\n\n")

	require.NoError(t, a.Login(context.Background()))

	assert.Contains(t, joined(out), "Please start again.")
	st := a.authority.State()
	assert.Equal(t, models.StepMobile, st.CurrentStep)
	assert.True(t, st.TempData.IsEmpty())
}

func TestLogin_InputClosed(t *testing.T) {
	capturePrintln(t)
	stubSecrets(t)
	a := newTestApp(t, "")

	require.ErrorIs(t, a.Login(context.Background()), io.EOF)
}

func TestLogin_ReverificationSkipsProfile(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, testMobile+"\n")
	loginDirect(t, a)
	require.NoError(t, a.Cancel(context.Background()))
	require.True(t, a.authority.IsAuthenticated())

	stubSecrets(t, goodCode, testAadhaar, goodCode)
	require.NoError(t, a.Login(context.Background()))

	st := a.authority.State()
	require.True(t, st.Settled())
	assert.Equal(t, "Ravi", st.User.Name)
}

func TestCancel(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t)
	a := newTestApp(t, testMobile+"\n")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.Cancel(context.Background()))
	assert.Equal(t, models.StepMobile, a.authority.CurrentStep())
	assert.Contains(t, joined(out), "Login cancelled")
}

func TestGatedCommand_DivertsToLogin(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t)
	a := newTestApp(t, "\n")

	err := a.Status(context.Background(), "APP-1001")
	require.Error(t, err)

	text := joined(out)
	assert.Contains(t, text, "Please login to access application status")
	assert.Contains(t, text, "Login paused")
	assert.NotContains(t, text, "Income certificate")
}

func TestServices_LoggedIn(t *testing.T) {
	out := capturePrintln(t)
	a := newTestApp(t, "")
	loginDirect(t, a)
	ctx := context.Background()

	require.NoError(t, a.Status(ctx, "APP-1001"))
	require.NoError(t, a.Eligibility(ctx, "housing"))
	require.NoError(t, a.Download(ctx, "aadhaar"))
	require.NoError(t, a.WhoAmI(ctx))
	require.NoError(t, a.State(ctx))

	text := joined(out)
	assert.Contains(t, text, "[APP-1001] Income certificate for Ravi: Approved (Mandal Revenue Office)")
	assert.Contains(t, text, "[Housing for all] Ravi is eligible")
	assert.Contains(t, text, "Saved e-Aadhaar to "+filepath.Join(a.config.DownloadDir, "e-aadhaar.txt"))
	assert.Contains(t, text, "Aadhaar: XXXXXXXX2345")
	assert.NotContains(t, text, testAadhaar)

	doc, err := os.ReadFile(filepath.Join(a.config.DownloadDir, "e-aadhaar.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Name:    Ravi")
	assert.NotContains(t, string(doc), testAadhaar)
}

func TestProfile(t *testing.T) {
	capturePrintln(t)
	a := newTestApp(t, "\nravi@example.in\nGuntur\n\n")
	loginDirect(t, a)

	require.NoError(t, a.Profile(context.Background()))

	u := a.authority.User()
	require.NotNil(t, u)
	assert.Equal(t, "Ravi", u.Name)
	assert.Equal(t, "ravi@example.in", u.Email)
	assert.Equal(t, "Guntur", u.Address)
}

func TestLang(t *testing.T) {
	out := capturePrintln(t)
	a := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, a.Lang(ctx, ""))
	assert.Contains(t, joined(out), "Language: en")

	require.NoError(t, a.Lang(ctx, "hi"))
	require.NoError(t, a.Logout(ctx))
	assert.Contains(t, joined(out), "आप लॉग आउट हो गए हैं")

	stored, err := a.prefs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hi", locale.Code(stored))

	require.ErrorIs(t, a.Lang(ctx, "xx"), locale.ErrUnsupported)
}

func TestRun_GreetsAndServes(t *testing.T) {
	out := capturePrintln(t)
	stubSecrets(t)
	a := newTestApp(t, "login\n"+testMobile+"\nstate\nexit\n")

	a.Run(context.Background())

	text := joined(out)
	assert.Contains(t, text, "Citizen portal (type 'help' for commands)")
	assert.Contains(t, text, "portal (mobile-otp)> ")
	assert.Contains(t, text, "pending mobile: XXXXXX3210")
	assert.Contains(t, text, "Bye!")
}
