package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/service"
)

type fakeAuth struct {
	users   map[string]*entity.SessionUser
	created []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: make(map[string]*entity.SessionUser)}
}

func (f *fakeAuth) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	uid := "uid-" + email
	f.created = append(f.created, uid)
	f.users[uid] = &entity.SessionUser{UID: uid, Email: email, DisplayName: displayName}
	return uid, nil
}

func (f *fakeAuth) VerifyToken(ctx context.Context, token string) (string, error) {
	return token, nil
}

func (f *fakeAuth) GetUser(ctx context.Context, uid string) (*entity.SessionUser, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, pkgerrors.New("user not found")
	}
	return u, nil
}

type allowAll struct{}

func (allowAll) Allow(key, action string) (bool, time.Duration) { return true, 0 }

type denyAll struct{}

func (denyAll) Allow(key, action string) (bool, time.Duration) { return false, 6 * time.Second }

type event struct {
	userID    string
	eventType string
	payload   interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (b *recordingBroadcaster) PublishToUser(userID, eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{userID: userID, eventType: eventType, payload: payload})
}

func (b *recordingBroadcaster) PublishToAll(eventType string, payload interface{}) {
	b.PublishToUser("*", eventType, payload)
}

func (b *recordingBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []service.PushNotification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, note service.PushNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.err
}

type staticProfiles map[string]*entity.Profile

func (s staticProfiles) CurrentProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	p, ok := s[uid]
	if !ok {
		return nil, pkgerrors.New("no session")
	}
	return p, nil
}

type fakeMedia struct {
	deleted []string
}

func (m *fakeMedia) Upload(ctx context.Context, file io.Reader, meta service.UploadMetadata) (*service.UploadResult, error) {
	return &service.UploadResult{URL: "https://storage.googleapis.com/b/" + meta.Folder + "/x.png"}, nil
}

func (m *fakeMedia) Delete(ctx context.Context, fileURL string) error {
	m.deleted = append(m.deleted, fileURL)
	return nil
}

func (m *fakeMedia) Close() error { return nil }

func sessionUser(uid, email string) *entity.SessionUser {
	return &entity.SessionUser{
		UID:          uid,
		Email:        email,
		DisplayName:  "Cached " + uid,
		ProviderData: []entity.ProviderInfo{{ProviderID: "password", UID: email, Email: email}},
	}
}
