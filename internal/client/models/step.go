package models

import (
	"errors"
	"fmt"
)

// Step is the cursor of the multi-step login flow.
type Step string

const (
	StepMobile     Step = "mobile"
	StepMobileOTP  Step = "mobile-otp"
	StepAadhaar    Step = "aadhaar"
	StepAadhaarOTP Step = "aadhaar-otp"
	StepCompleted  Step = "completed"
)

// ErrUnknownStep is returned when a value is outside the Step enumeration.
var ErrUnknownStep = errors.New("unknown login step")

// Steps lists every step in flow order.
var Steps = []Step{StepMobile, StepMobileOTP, StepAadhaar, StepAadhaarOTP, StepCompleted}

// ParseStep converts s into a Step.
func ParseStep(s string) (Step, error) {
	for _, st := range Steps {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
}

// Valid reports whether s belongs to the enumeration.
func (s Step) Valid() bool {
	_, err := ParseStep(string(s))
	return err == nil
}

// Next returns the only legal successor of s. The terminal step and unknown
// values have none.
func (s Step) Next() (Step, bool) {
	switch s {
	case StepMobile:
		return StepMobileOTP, true
	case StepMobileOTP:
		return StepAadhaar, true
	case StepAadhaar:
		return StepAadhaarOTP, true
	case StepAadhaarOTP:
		return StepCompleted, true
	default:
		return "", false
	}
}

// Terminal reports whether s is the completed step.
func (s Step) Terminal() bool { return s == StepCompleted }

// CanAdvance reports whether moving from one step to another is a legal
// forward transition.
func CanAdvance(from, to Step) bool {
	next, ok := from.Next()
	return ok && next == to
}

func (s Step) String() string { return string(s) }
