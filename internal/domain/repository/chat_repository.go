package repository

import (
	"context"

	"petadopt/internal/domain/entity"
)

// ParticipantField names the Chats field a subscription filters on.
type ParticipantField string

const (
	ParticipantOwner ParticipantField = "OwnerID"
	ParticipantUser  ParticipantField = "userId"
)

type ChatRepository interface {
	// Create stores the conversation under conversation.ID, generating one when empty.
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)

	// AppendMessage adds message to the conversation without rewriting the rest of the list.
	AppendMessage(ctx context.Context, conversationID string, message entity.Message) error

	WatchByField(ctx context.Context, field ParticipantField, value string, fn func([]*entity.Conversation, error)) (Subscription, error)
}
