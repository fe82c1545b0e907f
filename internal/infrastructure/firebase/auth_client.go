package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"petadopt/internal/domain/entity"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "create auth user")
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errors.Wrap(err, "verify id token")
	}

	return result.UID, nil
}

// GetUser loads the auth record and maps it to the session shape cached after sign-in.
func (f *FirebaseAuthClient) GetUser(ctx context.Context, uid string) (*entity.SessionUser, error) {
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, errors.Wrapf(err, "auth user %s not found", uid)
		}
		return nil, errors.Wrap(err, "get auth user")
	}

	return sessionUserFromRecord(record), nil
}

func sessionUserFromRecord(record *auth.UserRecord) *entity.SessionUser {
	user := &entity.SessionUser{
		ProviderData: make([]entity.ProviderInfo, 0, len(record.ProviderUserInfo)),
	}
	if record.UserInfo != nil {
		user.UID = record.UID
		user.Email = record.Email
		user.DisplayName = record.DisplayName
		user.PhotoURL = record.PhotoURL
		user.PhoneNumber = record.PhoneNumber
	}

	for _, info := range record.ProviderUserInfo {
		if info == nil {
			continue
		}
		user.ProviderData = append(user.ProviderData, entity.ProviderInfo{
			ProviderID: info.ProviderID,
			UID:        info.UID,
			Email:      info.Email,
		})
	}

	// password accounts created through the admin API may carry no provider entries yet
	if len(user.ProviderData) == 0 && user.Email != "" {
		user.ProviderData = append(user.ProviderData, entity.ProviderInfo{
			ProviderID: "password",
			UID:        user.Email,
			Email:      user.Email,
		})
	}

	return user
}
