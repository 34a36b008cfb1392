// Package cli provides the interactive citizen portal client.
//
// It wires configuration, the local database, the session authority, the
// login flow and the gated citizen services behind a small REPL. The prompt
// shows the login step and the signed-in citizen and is refreshed from the
// session's change notifications.
//
// Commands:
//   - login / cancel / logout: the multi-step mobile and Aadhaar login
//   - whoami, profile: show or edit the signed-in profile
//   - status, eligibility, download: simulated citizen services
//   - lang: switch the interface language (en, te, hi)
//   - state: dump the session state (identifiers masked)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
