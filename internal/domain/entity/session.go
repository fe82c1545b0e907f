package entity

import "strings"

const SessionUserKey = "user"

type ProviderInfo struct {
	ProviderID string `json:"providerId"`
	UID        string `json:"uid"`
	Email      string `json:"email"`
}

// SessionUser is the identity record persisted in the local cache after sign-in.
type SessionUser struct {
	UID          string         `json:"uid"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"displayName,omitempty"`
	PhotoURL     string         `json:"photoURL,omitempty"`
	PhoneNumber  string         `json:"phoneNumber,omitempty"`
	ProviderData []ProviderInfo `json:"providerData"`
}

// LookupEmail returns the email of the first provider entry, or "" when there is none.
func (u *SessionUser) LookupEmail() string {
	if u == nil || len(u.ProviderData) == 0 {
		return ""
	}
	return strings.TrimSpace(u.ProviderData[0].Email)
}

func (u *SessionUser) AsProfile() *Profile {
	return &Profile{
		ID:          u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhoneNumber: u.PhoneNumber,
		PhotoURL:    u.PhotoURL,
		Source:      ProfileSourceCache,
	}
}
