package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

const animalsCollection = "Animals"

type firestoreAnimalRepository struct {
	client *firestore.Client
}

func NewFirestoreAnimalRepository(client *firestore.Client) repository.AnimalRepository {
	return &firestoreAnimalRepository{
		client: client,
	}
}

func (r *firestoreAnimalRepository) Create(ctx context.Context, animal *entity.Animal) error {
	ref := r.client.Collection(animalsCollection).NewDoc()
	if animal.CreatedAt.IsZero() {
		animal.CreatedAt = time.Now()
	}

	if _, err := ref.Set(ctx, animal); err != nil {
		return errors.Internal("Failed to create animal listing", err)
	}

	animal.Key = ref.ID
	return nil
}

func (r *firestoreAnimalRepository) GetByID(ctx context.Context, id string) (*entity.Animal, error) {
	doc, err := r.client.Collection(animalsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Animal", err)
		}
		return nil, errors.Internal("Failed to get animal", err)
	}

	return decodeAnimal(doc)
}

func (r *firestoreAnimalRepository) Update(ctx context.Context, id string, update entity.AnimalUpdate) error {
	var updates []firestore.Update
	fields := []struct {
		path  string
		value string
	}{
		{"name", update.Name},
		{"age", update.Age},
		{"breed", update.Breed},
		{"location", update.Location},
		{"image", update.Image},
	}
	for _, f := range fields {
		if f.value != "" {
			updates = append(updates, firestore.Update{Path: f.path, Value: f.value})
		}
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now()})

	_, err := r.client.Collection(animalsCollection).Doc(id).Update(ctx, updates)
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Animal", err)
		}
		return errors.Internal("Failed to update animal", err)
	}
	return nil
}

func (r *firestoreAnimalRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(animalsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete animal", err)
	}
	return nil
}

func (r *firestoreAnimalRepository) WatchAll(ctx context.Context, fn func([]*entity.Animal, error)) (repository.Subscription, error) {
	query := r.client.Collection(animalsCollection).Query
	return watchQuery(ctx, query, animalsCollection, func(snap *firestore.QuerySnapshot, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			fn(nil, err)
			return
		}

		animals := make([]*entity.Animal, 0, len(docs))
		for _, doc := range docs {
			animal, err := decodeAnimal(doc)
			if err != nil {
				logger.Warn("Skipping undecodable animal document %s: %v", doc.Ref.ID, err)
				continue
			}
			animals = append(animals, animal)
		}
		fn(animals, nil)
	}), nil
}

func decodeAnimal(doc *firestore.DocumentSnapshot) (*entity.Animal, error) {
	var animal entity.Animal
	if err := doc.DataTo(&animal); err != nil {
		return nil, errors.Internal("Failed to parse animal data", err)
	}
	animal.Key = doc.Ref.ID
	return &animal, nil
}
