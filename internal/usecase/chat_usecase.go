package usecase

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

// peerLookupLimit bounds concurrent users lookups when building summaries.
const peerLookupLimit = 8

type ChatChange struct {
	Conversations int             `json:"conversations"`
	Latest        *entity.Message `json:"latest,omitempty"`
}

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	profiles    ProfileProvider
	rateLimiter RateLimiter
	notifier    service.PushNotifier
	broadcaster service.EventBroadcaster

	mu          sync.Mutex
	aggregators map[string]*ChatAggregator
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	profiles ProfileProvider,
	rateLimiter RateLimiter,
	notifier service.PushNotifier,
	broadcaster service.EventBroadcaster,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		profiles:    profiles,
		rateLimiter: rateLimiter,
		notifier:    notifier,
		broadcaster: broadcaster,
		aggregators: make(map[string]*ChatAggregator),
	}
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, uid string, input SendInput) (*SendResult, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	agg, err := uc.aggregator(ctx, uid)
	if err != nil {
		return nil, err
	}
	// the profile may have been renamed since the aggregator started
	if profile, err := uc.profiles.CurrentProfile(ctx, uid); err == nil {
		agg.SetDisplayName(profile.DisplayName)
	}
	return agg.Send(ctx, input)
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, uid string) ([]entity.Message, error) {
	agg, err := uc.aggregator(ctx, uid)
	if err != nil {
		return nil, err
	}
	return agg.Messages(), nil
}

func (uc *ChatUseCase) GetView(ctx context.Context, uid, conversationID, peerID string) (*entity.ChatView, error) {
	if conversationID == "" && peerID == "" {
		return nil, errors.BadRequest("conversation_id or peer_id is required", nil)
	}

	agg, err := uc.aggregator(ctx, uid)
	if err != nil {
		return nil, err
	}
	return agg.View(conversationID, peerID), nil
}

// GetSummaries lists one entry per conversation with the peer's name and photo when the
// peer has a users document.
func (uc *ChatUseCase) GetSummaries(ctx context.Context, uid string) ([]*entity.ChatSummary, error) {
	agg, err := uc.aggregator(ctx, uid)
	if err != nil {
		return nil, err
	}

	conversations := agg.Conversations()
	summaries := make([]*entity.ChatSummary, len(conversations))
	peerIDs := make([]string, 0, len(conversations))
	seen := make(map[string]struct{}, len(conversations))

	for i, c := range conversations {
		summary := &entity.ChatSummary{
			ConversationID: c.ID,
			PeerID:         c.Peer(agg.me),
			LastMessage:    noMessagesText,
		}
		if last := c.LastMessage(); last != nil {
			if last.Text != "" {
				summary.LastMessage = TruncateWords(last.Text, summaryWordLimit)
			}
			at := last.CreatedAt
			summary.LastMessageAt = &at
		}
		summaries[i] = summary
		if _, ok := seen[summary.PeerID]; !ok {
			seen[summary.PeerID] = struct{}{}
			peerIDs = append(peerIDs, summary.PeerID)
		}
	}

	peers := make(map[string]*entity.Profile, len(peerIDs))
	var peersMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(peerLookupLimit)
	for _, peerID := range peerIDs {
		peerID := peerID
		g.Go(func() error {
			profile, err := uc.userRepo.GetByEmail(gctx, peerID)
			if err != nil {
				if !errors.IsNotFound(err) {
					logger.Warn("Failed to load peer %s: %v", peerID, err)
				}
				return nil
			}
			peersMu.Lock()
			peers[peerID] = profile
			peersMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range summaries {
		s.PeerName = s.PeerID
		if p := peers[s.PeerID]; p != nil {
			if p.DisplayName != "" {
				s.PeerName = p.DisplayName
			}
			s.PeerPhotoURL = p.PhotoURL
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return summaries, nil
}

// Release stops the aggregator of uid, if any.
func (uc *ChatUseCase) Release(uid string) {
	uc.mu.Lock()
	agg, ok := uc.aggregators[uid]
	delete(uc.aggregators, uid)
	uc.mu.Unlock()

	if ok {
		agg.Stop()
	}
}

func (uc *ChatUseCase) aggregator(ctx context.Context, uid string) (*ChatAggregator, error) {
	uc.mu.Lock()
	agg, ok := uc.aggregators[uid]
	uc.mu.Unlock()
	if ok {
		return agg, nil
	}

	profile, err := uc.profiles.CurrentProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, errors.BadRequest("Profile has no email to chat with", nil)
	}

	agg = NewChatAggregator(profile.Email, profile.DisplayName, uc.chatRepo, uc.rateLimiter, uc.notifier, nil)
	agg.onChange = func() {
		if uc.broadcaster == nil {
			return
		}
		change := ChatChange{Conversations: len(agg.Conversations())}
		if messages := agg.Messages(); len(messages) > 0 {
			change.Latest = &messages[0]
		}
		uc.broadcaster.PublishToUser(uid, service.EventChatUpdate, change)
	}

	if err := agg.Start(ctx); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	if existing, ok := uc.aggregators[uid]; ok {
		uc.mu.Unlock()
		agg.Stop()
		return existing, nil
	}
	uc.aggregators[uid] = agg
	uc.mu.Unlock()

	return agg, nil
}
