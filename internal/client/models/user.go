// Package models defines the client-side domain types of the citizen portal:
// the citizen profile, the login step cursor and the persisted session state.
package models

import (
	"log/slog"

	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/google/uuid"
)

// userNamespace seeds name-based user IDs so the same citizen always gets
// the same ID on this device.
var userNamespace = uuid.MustParse("6f1c2b8e-4f7a-4c1e-9a55-2d7f0c3b9e11")

// User is an authenticated citizen's profile.
//
// Aadhaar is an opaque, sensitive identifier: it is never logged (see
// LogValue) and is not validated beyond the length checks done at input time.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Aadhaar     string `json:"aadhaar"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// UserID derives a stable user ID from the verified mobile number and
// Aadhaar number.
func UserID(mobile, aadhaar string) string {
	return uuid.NewSHA1(userNamespace, []byte(mobile+":"+aadhaar)).String()
}

// Clone returns a copy of u; nil stays nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// LogValue implements slog.LogValuer. The Aadhaar number is masked.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", u.ID),
		slog.String("name", u.Name),
		slog.String("mobile", common.MaskTail(u.Mobile, 4)),
		slog.String("aadhaar_masked", common.MaskTail(u.Aadhaar, 4)),
	)
}
