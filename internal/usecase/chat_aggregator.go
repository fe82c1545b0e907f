package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
	"petadopt/internal/infrastructure/ratelimit"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

type SendInput struct {
	ConversationID string `json:"conversation_id"`
	RecipientID    string `json:"recipient_id" validate:"omitempty,email"`
	Text           string `json:"text" validate:"max=2000"`
}

type SendResult struct {
	ConversationID string         `json:"conversation_id"`
	Created        bool           `json:"created"`
	Message        entity.Message `json:"message"`
}

// ChatAggregator follows every conversation a user takes part in, through one
// subscription per participant role. Each snapshot replaces its role's contribution.
type ChatAggregator struct {
	me       string
	repo     repository.ChatRepository
	limiter  RateLimiter
	notifier service.PushNotifier
	onChange func()

	mu          sync.RWMutex
	displayName string
	asOwner     map[string]*entity.Conversation
	asUser      map[string]*entity.Conversation
	ownerSeen   bool
	userSeen    bool
	err         error
	gen         uint64
	subs        []repository.Subscription
}

func NewChatAggregator(
	me, displayName string,
	repo repository.ChatRepository,
	limiter RateLimiter,
	notifier service.PushNotifier,
	onChange func(),
) *ChatAggregator {
	return &ChatAggregator{
		me:          me,
		displayName: displayName,
		repo:        repo,
		limiter:     limiter,
		notifier:    notifier,
		onChange:    onChange,
		asOwner:     make(map[string]*entity.Conversation),
		asUser:      make(map[string]*entity.Conversation),
	}
}

// DisplayName is the sender name stamped on outgoing messages.
func (a *ChatAggregator) DisplayName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.displayName
}

func (a *ChatAggregator) SetDisplayName(name string) {
	a.mu.Lock()
	a.displayName = name
	a.mu.Unlock()
}

func (a *ChatAggregator) Start(ctx context.Context) error {
	a.Stop()

	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	subCtx := context.WithoutCancel(ctx)
	var subs []repository.Subscription
	for _, field := range []repository.ParticipantField{repository.ParticipantOwner, repository.ParticipantUser} {
		field := field
		sub, err := a.repo.WatchByField(subCtx, field, a.me, func(convs []*entity.Conversation, err error) {
			a.apply(gen, field, convs, err)
		})
		if err != nil {
			for _, s := range subs {
				s.Stop()
			}
			return errors.Internal("Failed to subscribe to conversations", err)
		}
		subs = append(subs, sub)
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		for _, s := range subs {
			s.Stop()
		}
		return nil
	}
	a.subs = subs
	a.mu.Unlock()
	return nil
}

func (a *ChatAggregator) Stop() {
	a.mu.Lock()
	a.gen++
	subs := a.subs
	a.subs = nil
	a.mu.Unlock()

	for _, s := range subs {
		s.Stop()
	}
}

func (a *ChatAggregator) apply(gen uint64, field repository.ParticipantField, convs []*entity.Conversation, err error) {
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return
	}

	if err != nil {
		a.err = err
		a.markSeen(field)
		a.mu.Unlock()
		logger.LogSubscriptionError("chat", a.me+"/"+string(field), err)
		a.changed()
		return
	}

	side := make(map[string]*entity.Conversation, len(convs))
	for _, c := range convs {
		if c == nil || c.ID == "" {
			continue
		}
		copied := *c
		copied.Messages = append([]entity.Message{}, c.Messages...)
		side[c.ID] = &copied
	}
	if field == repository.ParticipantOwner {
		a.asOwner = side
	} else {
		a.asUser = side
	}
	a.markSeen(field)
	a.mu.Unlock()

	a.changed()
}

func (a *ChatAggregator) markSeen(field repository.ParticipantField) {
	if field == repository.ParticipantOwner {
		a.ownerSeen = true
	} else {
		a.userSeen = true
	}
}

// Loading is true until both role subscriptions have delivered.
func (a *ChatAggregator) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !(a.ownerSeen && a.userSeen)
}

func (a *ChatAggregator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Conversations returns the union of both roles, most recently active first.
func (a *ChatAggregator) Conversations() []*entity.Conversation {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := unionConversations(a.asOwner, a.asUser)
	for i, c := range out {
		copied := *c
		copied.Messages = append([]entity.Message{}, c.Messages...)
		out[i] = &copied
	}
	return out
}

func (a *ChatAggregator) Messages() []entity.Message {
	return MergeMessages(a.Conversations())
}

// View reports one conversation, addressed by its ID or by the peer.
func (a *ChatAggregator) View(conversationID, peerID string) *entity.ChatView {
	view := &entity.ChatView{
		ConversationID: conversationID,
		PeerID:         peerID,
		Messages:       []entity.Message{},
	}
	if a.Loading() {
		view.State = entity.ChatViewLoading
		return view
	}

	conv := a.find(conversationID, peerID)
	if conv == nil || len(conv.Messages) == 0 {
		view.State = entity.ChatViewEmpty
		if conv != nil {
			view.ConversationID = conv.ID
			view.PeerID = conv.Peer(a.me)
		}
		return view
	}

	view.State = entity.ChatViewPopulated
	view.ConversationID = conv.ID
	view.PeerID = conv.Peer(a.me)
	view.Messages = MergeMessages([]*entity.Conversation{conv})
	return view
}

// Send appends to an existing conversation, or starts one with the recipient.
// Whitespace-only text is ignored and yields a nil result.
func (a *ChatAggregator) Send(ctx context.Context, input SendInput) (*SendResult, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, nil
	}
	if input.ConversationID == "" && input.RecipientID == "" {
		return nil, errors.BadRequest("conversation_id or recipient_id is required", nil)
	}
	if input.RecipientID == a.me {
		return nil, errors.BadRequest("Cannot start a conversation with yourself", nil)
	}

	allowed, wait := a.limiter.Allow(a.me, ratelimit.ActionSendMessage)
	if !allowed {
		logger.Warn("Send rate limited: user %s must wait %v", a.me, wait)
		return nil, errors.TooManyRequests("You are sending messages too quickly", wait)
	}

	message := entity.Message{
		ID:        uuid.New().String(),
		Text:      input.Text,
		User:      entity.MessageUser{ID: a.me, Name: a.DisplayName()},
		CreatedAt: time.Now().UTC(),
	}

	conv := a.find(input.ConversationID, input.RecipientID)
	if conv == nil && input.ConversationID != "" {
		remote, err := a.repo.GetByID(ctx, input.ConversationID)
		if err != nil {
			return nil, err
		}
		if !remote.HasParticipant(a.me) {
			return nil, errors.Forbidden("User is not a participant in this conversation", nil)
		}
		conv = remote
	}

	result := &SendResult{Message: message}
	if conv != nil {
		if err := a.repo.AppendMessage(ctx, conv.ID, message); err != nil {
			return nil, err
		}
		a.appendLocal(conv, message)
		result.ConversationID = conv.ID
	} else {
		if allowed, wait := a.limiter.Allow(a.me, ratelimit.ActionCreateChat); !allowed {
			return nil, errors.TooManyRequests("Too many new conversations", wait)
		}

		conv = &entity.Conversation{
			ID:       uuid.New().String(),
			OwnerID:  input.RecipientID,
			UserID:   a.me,
			Messages: []entity.Message{message},
		}
		if err := a.repo.Create(ctx, conv); err != nil {
			return nil, err
		}
		a.appendLocal(conv, message)
		result.ConversationID = conv.ID
		result.Created = true
		logger.Info("Conversation %s started by %s with %s", conv.ID, a.me, input.RecipientID)
	}

	a.notify(ctx, conv.Peer(a.me), result.ConversationID, message)
	a.changed()
	return result, nil
}

// find looks up a loaded conversation by ID, or by the unordered pair (me, peer).
func (a *ChatAggregator) find(conversationID, peerID string) *entity.Conversation {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if conversationID != "" {
		if c, ok := a.asOwner[conversationID]; ok {
			return c
		}
		if c, ok := a.asUser[conversationID]; ok {
			return c
		}
		return nil
	}

	if peerID == "" {
		return nil
	}
	for _, c := range unionConversations(a.asOwner, a.asUser) {
		if c.Involves(a.me, peerID) {
			return c
		}
	}
	return nil
}

// appendLocal applies a sent message to the mirror ahead of the next snapshot.
func (a *ChatAggregator) appendLocal(conv *entity.Conversation, message entity.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, side := range []struct {
		field repository.ParticipantField
		convs map[string]*entity.Conversation
	}{
		{repository.ParticipantOwner, a.asOwner},
		{repository.ParticipantUser, a.asUser},
	} {
		belongs := (side.field == repository.ParticipantOwner && conv.OwnerID == a.me) ||
			(side.field == repository.ParticipantUser && conv.UserID == a.me)
		if !belongs {
			continue
		}

		current, ok := side.convs[conv.ID]
		if !ok {
			copied := *conv
			copied.Messages = append([]entity.Message{}, conv.Messages...)
			current = &copied
		}
		if hasMessage(current.Messages, message.ID) {
			side.convs[conv.ID] = current
			continue
		}
		updated := *current
		updated.Messages = append(append([]entity.Message{}, current.Messages...), message)
		updated.UpdatedAt = message.CreatedAt
		side.convs[conv.ID] = &updated
	}
}

func (a *ChatAggregator) notify(ctx context.Context, recipient, conversationID string, message entity.Message) {
	if a.notifier == nil || recipient == "" {
		return
	}

	sender := message.User.Name
	if sender == "" {
		sender = a.me
	}
	err := a.notifier.Notify(ctx, service.PushNotification{
		RecipientID: recipient,
		Title:       sender,
		Body:        TruncateWords(message.Text, summaryWordLimit),
		Data: map[string]string{
			"conversation_id": conversationID,
			"message_id":      message.ID,
		},
	})
	if err != nil {
		logger.Warn("Failed to notify %s of message %s: %v", recipient, message.ID, err)
	}
}

func (a *ChatAggregator) changed() {
	if a.onChange != nil {
		a.onChange()
	}
}

func hasMessage(messages []entity.Message, id string) bool {
	for _, m := range messages {
		if m.ID == id {
			return true
		}
	}
	return false
}
