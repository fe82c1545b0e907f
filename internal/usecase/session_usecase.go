package usecase

import (
	"context"
	"strings"
	"sync"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"omitempty,max=80"`
}

type UpdateProfileInput struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=80"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
	Address     string `json:"address" validate:"omitempty,max=200"`
}

// SessionUseCase owns one ProfileSynchronizer per signed-in user.
type SessionUseCase struct {
	userRepo    repository.UserRepository
	authClient  FirebaseAuthClient
	caches      service.CacheProvider
	broadcaster service.EventBroadcaster

	mu       sync.Mutex
	sessions map[string]*session
	onLogout []func(uid string)
}

// session is published before its synchronizer finishes Init; ready closes once it has.
type session struct {
	ps    *ProfileSynchronizer
	ready chan struct{}
}

func NewSessionUseCase(
	userRepo repository.UserRepository,
	authClient FirebaseAuthClient,
	caches service.CacheProvider,
	broadcaster service.EventBroadcaster,
) *SessionUseCase {
	return &SessionUseCase{
		userRepo:    userRepo,
		authClient:  authClient,
		caches:      caches,
		broadcaster: broadcaster,
		sessions:    make(map[string]*session),
	}
}

// OnLogout registers hooks that release per-user state held elsewhere.
func (uc *SessionUseCase) OnLogout(hooks ...func(uid string)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.onLogout = append(uc.onLogout, hooks...)
}

// Login caches the auth record of uid as the session and resolves its profile.
func (uc *SessionUseCase) Login(ctx context.Context, uid string) (*entity.Profile, error) {
	user, err := uc.authClient.GetUser(ctx, uid)
	if err != nil {
		return nil, errors.Unauthorized("Unknown user", err)
	}

	ps := uc.synchronizer(uid)
	profile := ps.SetAndPersist(ctx, user)
	if profile == nil {
		return nil, errors.Internal("Failed to load profile", nil)
	}

	logger.Info("Session started for %s", uid)
	return profile, nil
}

func (uc *SessionUseCase) Register(ctx context.Context, input RegisterInput) (*entity.Profile, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.BadRequest("Email already registered", nil)
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	uid, err := uc.authClient.CreateUser(ctx, input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, errors.BadRequest("Failed to create account", err)
	}

	profile := &entity.Profile{
		ID:          uid,
		Email:       input.Email,
		DisplayName: input.DisplayName,
	}
	if err := uc.userRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	user := &entity.SessionUser{
		UID:          uid,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		ProviderData: []entity.ProviderInfo{{ProviderID: "password", UID: input.Email, Email: input.Email}},
	}

	ps := uc.synchronizer(uid)
	if p := ps.SetAndPersist(ctx, user); p != nil {
		profile = p
	}

	logger.Info("Registered user %s", uid)
	return profile, nil
}

// Logout clears the session scope and releases everything held for uid.
func (uc *SessionUseCase) Logout(ctx context.Context, uid string) {
	uc.mu.Lock()
	sess, ok := uc.sessions[uid]
	delete(uc.sessions, uid)
	hooks := append([]func(string){}, uc.onLogout...)
	uc.mu.Unlock()

	if ok {
		<-sess.ready
		sess.ps.ClearAndReload(ctx)
		sess.ps.Close()
	} else {
		uc.caches.Scope(uid).Clear(ctx)
	}

	for _, hook := range hooks {
		hook(uid)
	}
	logger.Info("Session ended for %s", uid)
}

// CurrentProfile returns the synchronized profile. A restarted process rebuilds it from
// the cached session on first access.
func (uc *SessionUseCase) CurrentProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	ps := uc.synchronizer(uid)

	profile := ps.Profile()
	if profile == nil {
		return nil, errors.Unauthorized("No active session", nil)
	}
	return profile, nil
}

func (uc *SessionUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.Profile, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	current, err := uc.CurrentProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	// a cache-sourced profile has no users document; look it up again in case it was created since
	doc, err := uc.userRepo.GetByEmail(ctx, current.Email)
	if err != nil {
		return nil, err
	}

	update := entity.ProfileUpdate{
		DisplayName: strings.TrimSpace(input.DisplayName),
		PhoneNumber: input.PhoneNumber,
		PhotoURL:    input.PhotoURL,
		Address:     strings.TrimSpace(input.Address),
	}
	if update.IsEmpty() {
		return doc, nil
	}

	if err := uc.userRepo.UpdateFields(ctx, doc.ID, update); err != nil {
		return nil, err
	}

	return mergeProfile(doc, update), nil
}

func (uc *SessionUseCase) ActiveSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

// synchronizer returns the synchronizer of uid, creating and initializing it on first use.
// Concurrent callers for the same uid wait until the first one has finished Init.
func (uc *SessionUseCase) synchronizer(uid string) *ProfileSynchronizer {
	uc.mu.Lock()
	sess, ok := uc.sessions[uid]
	if !ok {
		sess = &session{
			ps: NewProfileSynchronizer(uid, uc.caches.Scope(uid), uc.userRepo, func(p *entity.Profile) {
				if uc.broadcaster != nil {
					uc.broadcaster.PublishToUser(uid, service.EventProfileUpdate, p)
				}
			}),
			ready: make(chan struct{}),
		}
		uc.sessions[uid] = sess
	}
	uc.mu.Unlock()

	if ok {
		<-sess.ready
		return sess.ps
	}

	sess.ps.Init(context.Background())
	close(sess.ready)
	return sess.ps
}

func mergeProfile(p *entity.Profile, update entity.ProfileUpdate) *entity.Profile {
	merged := *p
	if update.DisplayName != "" {
		merged.DisplayName = update.DisplayName
	}
	if update.PhoneNumber != "" {
		merged.PhoneNumber = update.PhoneNumber
	}
	if update.PhotoURL != "" {
		merged.PhotoURL = update.PhotoURL
	}
	if update.Address != "" {
		merged.UpdatedUserData.Address = update.Address
	}
	return &merged
}
