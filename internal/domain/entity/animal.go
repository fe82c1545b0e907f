package entity

import "time"

type AnimalCreator struct {
	UserID    string `json:"user_id" firestore:"user_id"`
	UserEmail string `json:"user_email" firestore:"user_email"`
	UserName  string `json:"user_Name" firestore:"user_Name"`
	UserImage string `json:"user_image" firestore:"user_image"`
}

type Animal struct {
	Key         string        `json:"key" firestore:"-"`
	Name        string        `json:"name" firestore:"name"`
	Age         string        `json:"age" firestore:"age"`
	Breed       string        `json:"breed" firestore:"breed"`
	Location    string        `json:"location" firestore:"location"`
	Image       string        `json:"image" firestore:"image"`
	CreatedUser AnimalCreator `json:"createduser" firestore:"createduser"`
	CreatedAt   time.Time     `json:"created_at" firestore:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty" firestore:"updated_at,omitempty"`
}

func (a *Animal) IsCreatedBy(userID string) bool {
	return a.CreatedUser.UserID != "" && a.CreatedUser.UserID == userID
}

// AnimalUpdate is a partial merge of listing fields.
type AnimalUpdate struct {
	Name     string
	Age      string
	Breed    string
	Location string
	Image    string
}
