package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := r.client.Collection(usersCollection).Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	return decodeProfile(doc)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query user by email", err)
	}

	return decodeProfile(doc)
}

func (r *firestoreUserRepository) UpdateFields(ctx context.Context, id string, update entity.ProfileUpdate) error {
	updateData := map[string]interface{}{
		"displayName": update.DisplayName,
		"phoneNumber": update.PhoneNumber,
		"photoURL":    update.PhotoURL,
	}

	// Only include non-empty fields
	cleanUpdateData := make(map[string]interface{})
	for key, value := range updateData {
		if strVal, ok := value.(string); ok && strVal == "" {
			continue
		}
		cleanUpdateData[key] = value
	}
	if update.Address != "" {
		cleanUpdateData["updatedUserData"] = map[string]interface{}{"address": update.Address}
	}
	if len(cleanUpdateData) == 0 {
		return nil
	}
	cleanUpdateData["updatedAt"] = time.Now()

	logger.Debug("Updating user %s fields: %v", id, cleanUpdateData)

	_, err := r.client.Collection(usersCollection).Doc(id).Set(ctx, cleanUpdateData, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

func (r *firestoreUserRepository) Watch(ctx context.Context, id string, fn func(*entity.Profile, error)) (repository.Subscription, error) {
	ref := r.client.Collection(usersCollection).Doc(id)
	return watchDoc(ctx, ref, func(doc *firestore.DocumentSnapshot, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		if !doc.Exists() {
			fn(nil, nil)
			return
		}
		profile, err := decodeProfile(doc)
		if err != nil {
			logger.Warn("Skipping undecodable user document %s: %v", doc.Ref.ID, err)
			return
		}
		fn(profile, nil)
	}), nil
}

func decodeProfile(doc *firestore.DocumentSnapshot) (*entity.Profile, error) {
	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return stampProfile(&profile, doc.Ref.ID), nil
}

// stampProfile addresses the profile by its document ID; a stored id field is ignored.
func stampProfile(profile *entity.Profile, docID string) *entity.Profile {
	profile.ID = docID
	profile.Source = entity.ProfileSourceRemote
	return profile
}
