package usecase

import (
	"context"
	"sync"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

// ProfileSynchronizer keeps the signed-in user's profile in sync with the users collection.
// It owns at most one live subscription; every Init cancels the previous one.
type ProfileSynchronizer struct {
	scope    string
	cache    service.KeyValueCache
	userRepo repository.UserRepository
	onChange func(*entity.Profile)

	mu      sync.RWMutex
	profile *entity.Profile
	loading bool
	gen     uint64
	sub     repository.Subscription
}

func NewProfileSynchronizer(scope string, cache service.KeyValueCache, userRepo repository.UserRepository, onChange func(*entity.Profile)) *ProfileSynchronizer {
	return &ProfileSynchronizer{
		scope:    scope,
		cache:    cache,
		userRepo: userRepo,
		onChange: onChange,
		loading:  true,
	}
}

// Init reads the cached session and resolves the profile:
// no session yields nil, a users document is fetched then followed live,
// a missing document falls back to the cached session itself.
func (s *ProfileSynchronizer) Init(ctx context.Context) *entity.Profile {
	gen := s.restart()

	var user entity.SessionUser
	if !s.cache.Get(ctx, entity.SessionUserKey, &user) {
		s.publish(gen, nil)
		return nil
	}
	email := user.LookupEmail()
	if email == "" {
		logger.Warn("Cached session for %s has no provider email", s.scope)
		s.publish(gen, nil)
		return nil
	}

	profile, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Info("No users document for %s, using cached session", email)
			s.publish(gen, user.AsProfile())
		} else {
			logger.Error("Failed to load profile for %s: %v", email, err)
			s.publish(gen, nil)
		}
		return s.Profile()
	}

	s.publish(gen, profile)

	sub, err := s.userRepo.Watch(context.WithoutCancel(ctx), profile.ID, func(p *entity.Profile, err error) {
		if err != nil {
			logger.LogSubscriptionError("profile", s.scope, err)
			return
		}
		if p == nil {
			return
		}
		s.publish(gen, p)
	})
	if err != nil {
		logger.LogSubscriptionError("profile", s.scope, err)
		return s.Profile()
	}
	s.adopt(gen, sub)

	return s.Profile()
}

// SetAndPersist stores user as the session and re-initializes from it.
func (s *ProfileSynchronizer) SetAndPersist(ctx context.Context, user *entity.SessionUser) *entity.Profile {
	s.cache.Set(ctx, entity.SessionUserKey, user)
	return s.Init(ctx)
}

// ClearAndReload drops the whole cache scope; the following Init yields no profile.
func (s *ProfileSynchronizer) ClearAndReload(ctx context.Context) *entity.Profile {
	s.cache.Clear(ctx)

	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()

	return s.Init(ctx)
}

func (s *ProfileSynchronizer) Close() {
	s.mu.Lock()
	s.gen++
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
}

func (s *ProfileSynchronizer) Profile() *entity.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *ProfileSynchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// restart bumps the generation so callbacks of earlier runs are ignored, and stops the
// previous subscription.
func (s *ProfileSynchronizer) restart() uint64 {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	sub := s.sub
	s.sub = nil
	s.loading = true
	s.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
	return gen
}

func (s *ProfileSynchronizer) adopt(gen uint64, sub repository.Subscription) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		sub.Stop()
		return
	}
	s.sub = sub
	s.mu.Unlock()
}

func (s *ProfileSynchronizer) publish(gen uint64, profile *entity.Profile) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.profile = profile
	s.loading = false
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(s.Profile())
	}
}
