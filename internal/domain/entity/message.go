package entity

import "time"

type MessageUser struct {
	ID   string `json:"_id" firestore:"_id"`
	Name string `json:"name,omitempty" firestore:"name,omitempty"`
}

type Message struct {
	ID        string      `json:"_id" firestore:"_id"`
	Text      string      `json:"text" firestore:"text"`
	User      MessageUser `json:"user" firestore:"user"`
	CreatedAt time.Time   `json:"createdAt" firestore:"createdAt"`
}
