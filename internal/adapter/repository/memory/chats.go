package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
)

type chatRepo struct {
	faults *faults

	mu   sync.RWMutex
	byID map[string]entity.Conversation
	subs keyedListeners[[]*entity.Conversation]
}

func newChatRepo(f *faults) *chatRepo {
	return &chatRepo{
		faults: f,
		byID:   make(map[string]entity.Conversation),
	}
}

func (r *chatRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	if err := r.faults.take(OpChatCreate); err != nil {
		return err
	}

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

	r.mu.Lock()
	r.byID[conversation.ID] = copyConversation(*conversation)
	r.mu.Unlock()

	r.notify(conversation.OwnerID, conversation.UserID)
	return nil
}

func (r *chatRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	c = copyConversation(c)
	return &c, nil
}

func (r *chatRepo) AppendMessage(ctx context.Context, conversationID string, message entity.Message) error {
	if err := r.faults.take(OpChatAppend); err != nil {
		return err
	}

	r.mu.Lock()
	c, ok := r.byID[conversationID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Conversation", nil)
	}
	// array-union: an identical element is not added twice
	for _, m := range c.Messages {
		if m == message {
			r.mu.Unlock()
			return nil
		}
	}
	c.Messages = append(c.Messages, message)
	c.UpdatedAt = time.Now()
	r.byID[conversationID] = c
	r.mu.Unlock()

	r.notify(c.OwnerID, c.UserID)
	return nil
}

func (r *chatRepo) WatchByField(ctx context.Context, field repository.ParticipantField, value string, fn func([]*entity.Conversation, error)) (repository.Subscription, error) {
	sub := r.subs.get(subKey(field, value)).subscribe(ctx, fn)
	fn(r.query(field, value), nil)
	return sub, nil
}

// Count returns the number of stored conversations.
func (r *chatRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *chatRepo) query(field repository.ParticipantField, value string) []*entity.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Conversation, 0)
	for _, c := range r.byID {
		if fieldValue(c, field) != value {
			continue
		}
		c := copyConversation(c)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *chatRepo) notify(ownerID, userID string) {
	r.subs.get(subKey(repository.ParticipantOwner, ownerID)).emit(func() []*entity.Conversation {
		return r.query(repository.ParticipantOwner, ownerID)
	})
	r.subs.get(subKey(repository.ParticipantUser, userID)).emit(func() []*entity.Conversation {
		return r.query(repository.ParticipantUser, userID)
	})
}

func (r *chatRepo) breakAll(err error) {
	r.subs.mu.Lock()
	all := make([]*listeners[[]*entity.Conversation], 0, len(r.subs.byKey))
	for _, l := range r.subs.byKey {
		all = append(all, l)
	}
	r.subs.mu.Unlock()

	for _, l := range all {
		l.fail(err)
	}
}

func subKey(field repository.ParticipantField, value string) string {
	return string(field) + "=" + value
}

func fieldValue(c entity.Conversation, field repository.ParticipantField) string {
	if field == repository.ParticipantOwner {
		return c.OwnerID
	}
	return c.UserID
}

func copyConversation(c entity.Conversation) entity.Conversation {
	c.Messages = append([]entity.Message{}, c.Messages...)
	return c
}
