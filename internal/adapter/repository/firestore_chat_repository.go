package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

const chatsCollection = "Chats"

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	now := time.Now()
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}
	conversation.UpdatedAt = now
	if conversation.Messages == nil {
		conversation.Messages = []entity.Message{}
	}

	_, err := r.client.Collection(chatsCollection).Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}
	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection(chatsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	return decodeConversation(doc)
}

func (r *firestoreChatRepository) AppendMessage(ctx context.Context, conversationID string, message entity.Message) error {
	_, err := r.client.Collection(chatsCollection).Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "messages", Value: firestore.ArrayUnion(message)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to append message", err)
	}
	return nil
}

func (r *firestoreChatRepository) WatchByField(ctx context.Context, field repository.ParticipantField, value string, fn func([]*entity.Conversation, error)) (repository.Subscription, error) {
	query := r.client.Collection(chatsCollection).Where(string(field), "==", value)
	return watchQuery(ctx, query, chatsCollection+"."+string(field), func(snap *firestore.QuerySnapshot, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			fn(nil, err)
			return
		}

		conversations := make([]*entity.Conversation, 0, len(docs))
		for _, doc := range docs {
			conversation, err := decodeConversation(doc)
			if err != nil {
				logger.Warn("Skipping undecodable conversation %s: %v", doc.Ref.ID, err)
				continue
			}
			conversations = append(conversations, conversation)
		}
		fn(conversations, nil)
	}), nil
}

func decodeConversation(doc *firestore.DocumentSnapshot) (*entity.Conversation, error) {
	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	conversation.ID = doc.Ref.ID
	return &conversation, nil
}
