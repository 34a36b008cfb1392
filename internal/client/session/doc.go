// Package session owns the citizen's authentication state: the multi-step
// login cursor, the values captured mid-flow and the authenticated profile.
//
// An Authority is constructed once at start-up with New, which rehydrates
// the last persisted state, and is passed to whatever needs it. Every
// mutation runs to completion under a mutex, is applied in memory first and
// is then written through the snapshot repository. Errors returned by
// mutations report either a usage error (ErrNotAuthenticated,
// ErrIllegalTransition, models.ErrUnknownStep), in which case nothing
// changed, or a persistence failure (ErrPersist), in which case the
// in-memory transition has already happened.
//
// Step transitions:
//
//	mobile -> mobile-otp -> aadhaar -> aadhaar-otp -> completed (Login only)
//	any    -> mobile                                  (Logout, ResetAuth)
package session
