package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
)

type userRepo struct {
	faults *faults

	mu   sync.RWMutex
	byID map[string]entity.Profile
	subs keyedListeners[*entity.Profile]
}

func newUserRepo(f *faults) *userRepo {
	return &userRepo{
		faults: f,
		byID:   make(map[string]entity.Profile),
	}
}

func (r *userRepo) Create(ctx context.Context, profile *entity.Profile) error {
	if strings.TrimSpace(profile.ID) == "" {
		return errors.BadRequest("user id required", nil)
	}

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	r.mu.Lock()
	stored := *profile
	stored.Source = entity.ProfileSourceRemote
	r.byID[profile.ID] = stored
	r.mu.Unlock()

	r.notify(profile.ID)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return &p, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	if err := r.faults.take(OpUserGetByEmail); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if p := r.byID[id]; p.Email == email {
			return &p, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *userRepo) UpdateFields(ctx context.Context, id string, update entity.ProfileUpdate) error {
	if err := r.faults.take(OpUserUpdate); err != nil {
		return err
	}
	if update.IsEmpty() {
		return nil
	}

	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok {
		p = entity.Profile{ID: id, CreatedAt: time.Now(), Source: entity.ProfileSourceRemote}
	}
	if update.DisplayName != "" {
		p.DisplayName = update.DisplayName
	}
	if update.PhoneNumber != "" {
		p.PhoneNumber = update.PhoneNumber
	}
	if update.PhotoURL != "" {
		p.PhotoURL = update.PhotoURL
	}
	if update.Address != "" {
		p.UpdatedUserData.Address = update.Address
	}
	p.UpdatedAt = time.Now()
	r.byID[id] = p
	r.mu.Unlock()

	r.notify(id)
	return nil
}

func (r *userRepo) Watch(ctx context.Context, id string, fn func(*entity.Profile, error)) (repository.Subscription, error) {
	sub := r.subs.get(id).subscribe(ctx, fn)
	fn(r.current(id), nil)
	return sub, nil
}

func (r *userRepo) current(id string) *entity.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil
	}
	return &p
}

func (r *userRepo) notify(id string) {
	r.subs.get(id).emit(func() *entity.Profile { return r.current(id) })
}
