package models

// TempData holds values captured mid-flow, before the profile is finalized.
type TempData struct {
	Mobile  string `json:"mobile,omitempty"`
	Aadhaar string `json:"aadhaar,omitempty"`
}

// Merge shallow-merges the non-empty fields of partial into t.
func (t TempData) Merge(partial TempData) TempData {
	if partial.Mobile != "" {
		t.Mobile = partial.Mobile
	}
	if partial.Aadhaar != "" {
		t.Aadhaar = partial.Aadhaar
	}
	return t
}

// IsEmpty reports whether no field is set.
func (t TempData) IsEmpty() bool {
	return t == TempData{}
}

// State is the authentication/session envelope. It is the only persisted
// entity of the client.
type State struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	User            *User    `json:"user,omitempty"`
	CurrentStep     Step     `json:"currentStep"`
	TempData        TempData `json:"tempData"`
}

// InitialState is the state of a fresh install: logged out, flow not started.
func InitialState() State {
	return State{CurrentStep: StepMobile}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.User = s.User.Clone()
	return s
}

// Consistent reports whether the authentication flag agrees with the
// stored profile: authenticated iff a user is present.
//
// An authenticated state whose cursor is not completed is a re-verification
// in progress (see session.Authority.ResetAuth); Login always returns it to
// completed.
func (s State) Consistent() bool {
	return s.IsAuthenticated == (s.User != nil)
}

// Settled reports whether s is a finished login: authenticated, completed
// and with a profile.
func (s State) Settled() bool {
	return s.IsAuthenticated && s.User != nil && s.CurrentStep == StepCompleted
}

// Normalize repairs a state read from storage so that Consistent holds,
// a logged-out cursor never sits on completed and TempData is empty at the
// start of the flow. It returns the repaired state and whether anything
// changed.
func (s State) Normalize() (State, bool) {
	orig := s.Clone()
	if !s.CurrentStep.Valid() {
		s.CurrentStep = StepMobile
	}

	switch {
	case s.IsAuthenticated && s.User == nil:
		// flag without a profile cannot be trusted
		s = InitialState()
	case !s.IsAuthenticated:
		s.User = nil
		if s.CurrentStep == StepCompleted {
			s.CurrentStep = StepMobile
		}
	}

	if s.CurrentStep == StepMobile {
		s.TempData = TempData{}
	}
	return s, !equalState(orig, s)
}

func equalState(a, b State) bool {
	if a.IsAuthenticated != b.IsAuthenticated || a.CurrentStep != b.CurrentStep || a.TempData != b.TempData {
		return false
	}
	if (a.User == nil) != (b.User == nil) {
		return false
	}
	return a.User == nil || *a.User == *b.User
}
