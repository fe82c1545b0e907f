package entity

import "time"

// Conversation is a document of the Chats collection. OwnerID is the listing owner who was
// contacted; UserID is the participant who started the conversation.
type Conversation struct {
	ID        string    `json:"id" firestore:"-"`
	OwnerID   string    `json:"OwnerID" firestore:"OwnerID"`
	UserID    string    `json:"userId" firestore:"userId"`
	Messages  []Message `json:"messages" firestore:"messages"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (c *Conversation) HasParticipant(id string) bool {
	return id != "" && (c.OwnerID == id || c.UserID == id)
}

// Peer returns the other participant from the point of view of me.
func (c *Conversation) Peer(me string) string {
	if c.OwnerID == me {
		return c.UserID
	}
	return c.OwnerID
}

// Involves reports whether the conversation is between a and b in either role.
func (c *Conversation) Involves(a, b string) bool {
	return (c.OwnerID == a && c.UserID == b) || (c.OwnerID == b && c.UserID == a)
}

func (c *Conversation) LastMessage() *Message {
	var last *Message
	for i := range c.Messages {
		m := &c.Messages[i]
		if last == nil || m.CreatedAt.After(last.CreatedAt) {
			last = m
		}
	}
	return last
}

type ChatViewState string

const (
	ChatViewLoading   ChatViewState = "loading"
	ChatViewEmpty     ChatViewState = "empty"
	ChatViewPopulated ChatViewState = "populated"
)

type ChatView struct {
	State          ChatViewState `json:"state"`
	ConversationID string        `json:"conversation_id,omitempty"`
	PeerID         string        `json:"peer_id,omitempty"`
	Messages       []Message     `json:"messages"`
}

type ChatSummary struct {
	ConversationID string     `json:"conversation_id"`
	PeerID         string     `json:"peer_id"`
	PeerName       string     `json:"peer_name,omitempty"`
	PeerPhotoURL   string     `json:"peer_photo_url,omitempty"`
	LastMessage    string     `json:"last_message"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
}
