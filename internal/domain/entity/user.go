package entity

import (
	"time"
)

type ProfileSource string

const (
	ProfileSourceRemote ProfileSource = "remote"
	ProfileSourceCache  ProfileSource = "cache"
)

type UpdatedUserData struct {
	Address string `json:"address,omitempty" firestore:"address,omitempty"`
}

// Profile is a document of the users collection, keyed by email for lookups.
type Profile struct {
	ID              string          `json:"id" firestore:"id"`
	Email           string          `json:"email" firestore:"email"`
	DisplayName     string          `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhoneNumber     string          `json:"phoneNumber,omitempty" firestore:"phoneNumber,omitempty"`
	PhotoURL        string          `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	UpdatedUserData UpdatedUserData `json:"updatedUserData" firestore:"updatedUserData"`
	CreatedAt       time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" firestore:"updatedAt"`

	// Source tells whether the profile came from the users collection or from the cached session.
	Source ProfileSource `json:"source" firestore:"-"`
}

// ProfileUpdate is a partial merge; empty fields are left untouched.
type ProfileUpdate struct {
	DisplayName string
	PhoneNumber string
	PhotoURL    string
	Address     string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.DisplayName == "" && u.PhoneNumber == "" && u.PhotoURL == "" && u.Address == ""
}
