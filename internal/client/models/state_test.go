package models

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser() *User {
	return &User{ID: "u1", Name: "Asha", Mobile: "9999999999", Aadhaar: "123412341234"}
}

func TestParseStep(t *testing.T) {
	for _, st := range Steps {
		got, err := ParseStep(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseStep("password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStep))
}

func TestStep_NextIsLinear(t *testing.T) {
	for i := 0; i < len(Steps)-1; i++ {
		next, ok := Steps[i].Next()
		require.True(t, ok, "step %s must have a successor", Steps[i])
		assert.Equal(t, Steps[i+1], next)
	}

	_, ok := StepCompleted.Next()
	assert.False(t, ok, "completed is terminal")
	assert.True(t, StepCompleted.Terminal())

	_, ok = Step("bogus").Next()
	assert.False(t, ok)
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, CanAdvance(StepMobile, StepMobileOTP))
	assert.True(t, CanAdvance(StepAadhaarOTP, StepCompleted))
	assert.False(t, CanAdvance(StepMobile, StepAadhaar), "skipping a step is illegal")
	assert.False(t, CanAdvance(StepAadhaar, StepMobileOTP), "going back is illegal")
	assert.False(t, CanAdvance(StepCompleted, StepMobile))
}

func TestTempData_MergeKeepsUnmentionedFields(t *testing.T) {
	td := TempData{}.Merge(TempData{Mobile: "x"})
	td = td.Merge(TempData{Aadhaar: "y"})

	assert.Equal(t, TempData{Mobile: "x", Aadhaar: "y"}, td)
	assert.False(t, td.IsEmpty())
	assert.True(t, TempData{}.IsEmpty())
}

func TestState_CloneIsDeep(t *testing.T) {
	s := State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepCompleted}
	c := s.Clone()
	c.User.Name = "changed"

	assert.Equal(t, "Asha", s.User.Name)
}

func TestState_Consistent(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"initial", InitialState(), true},
		{"logged in", State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepCompleted}, true},
		{"mid flow", State{CurrentStep: StepAadhaar, TempData: TempData{Mobile: "1"}}, true},
		{"flag without user", State{IsAuthenticated: true, CurrentStep: StepCompleted}, false},
		{"re-verification", State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepAadhaar}, true},
		{"user but not flagged", State{User: sampleUser(), CurrentStep: StepCompleted}, false},
		{"completed cursor without session", State{CurrentStep: StepCompleted}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.state.Consistent())
		})
	}
}

func TestState_Settled(t *testing.T) {
	assert.True(t, State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepCompleted}.Settled())
	assert.False(t, State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepMobile}.Settled())
	assert.False(t, InitialState().Settled())
}

func TestState_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		in      State
		want    State
		changed bool
	}{
		{
			name: "already consistent",
			in:   State{CurrentStep: StepAadhaar, TempData: TempData{Mobile: "1"}},
			want: State{CurrentStep: StepAadhaar, TempData: TempData{Mobile: "1"}},
		},
		{
			name: "re-verification in progress is kept",
			in:   State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepMobileOTP, TempData: TempData{Mobile: "1"}},
			want: State{IsAuthenticated: true, User: sampleUser(), CurrentStep: StepMobileOTP, TempData: TempData{Mobile: "1"}},
		},
		{
			name:    "logged out on completed cursor",
			in:      State{CurrentStep: StepCompleted},
			want:    InitialState(),
			changed: true,
		},
		{
			name:    "flag without user",
			in:      State{IsAuthenticated: true, CurrentStep: StepCompleted},
			want:    InitialState(),
			changed: true,
		},
		{
			name:    "stray user while logged out",
			in:      State{User: sampleUser(), CurrentStep: StepCompleted},
			want:    InitialState(),
			changed: true,
		},
		{
			name:    "temp data at flow start",
			in:      State{CurrentStep: StepMobile, TempData: TempData{Aadhaar: "2"}},
			want:    InitialState(),
			changed: true,
		},
		{
			name:    "unknown step",
			in:      State{CurrentStep: "weird"},
			want:    InitialState(),
			changed: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := tc.in.Normalize()
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.changed, changed)
			assert.True(t, got.Consistent())
		})
	}
}

func TestUserID_StableAndDistinct(t *testing.T) {
	a := UserID("9999999999", "123412341234")
	b := UserID("9999999999", "123412341234")
	c := UserID("8888888888", "123412341234")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestUser_LogValueMasksAadhaar(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	l.Info("login", "user", *sampleUser())

	out := buf.String()
	assert.False(t, strings.Contains(out, "123412341234"), fmt.Sprintf("aadhaar leaked: %s", out))
	assert.Contains(t, out, "XXXXXXXX1234")
}
