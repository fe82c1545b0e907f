package usecase

import (
	"context"
	"strings"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
	"petadopt/pkg/utils"
)

type CreateAnimalInput struct {
	Name     string `json:"name" validate:"required,max=80"`
	Age      string `json:"age" validate:"required,max=40"`
	Breed    string `json:"breed" validate:"required,max=80"`
	Location string `json:"location" validate:"omitempty,max=120"`
	Image    string `json:"image" validate:"required,url"`
}

type UpdateAnimalInput struct {
	Name     string `json:"name" validate:"omitempty,max=80"`
	Age      string `json:"age" validate:"omitempty,max=40"`
	Breed    string `json:"breed" validate:"omitempty,max=80"`
	Location string `json:"location" validate:"omitempty,max=120"`
	Image    string `json:"image" validate:"omitempty,url"`
}

type CatalogPage struct {
	Items    []*entity.Animal `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
}

type CatalogUseCase struct {
	animalRepo repository.AnimalRepository
	catalog    *CatalogSynchronizer
	profiles   ProfileProvider
	media      service.MediaUploadService
}

// NewCatalogUseCase accepts a nil media service when uploads are disabled.
func NewCatalogUseCase(
	animalRepo repository.AnimalRepository,
	catalog *CatalogSynchronizer,
	profiles ProfileProvider,
	media service.MediaUploadService,
) *CatalogUseCase {
	return &CatalogUseCase{
		animalRepo: animalRepo,
		catalog:    catalog,
		profiles:   profiles,
		media:      media,
	}
}

func (uc *CatalogUseCase) ListAnimals(params utils.PaginationParams) *CatalogPage {
	return uc.page(uc.catalog.List(), params)
}

func (uc *CatalogUseCase) ListByCreator(uid string, params utils.PaginationParams) *CatalogPage {
	mine := make([]*entity.Animal, 0)
	for _, a := range uc.catalog.List() {
		if a.IsCreatedBy(uid) {
			mine = append(mine, a)
		}
	}
	return uc.page(mine, params)
}

func (uc *CatalogUseCase) GetAnimal(ctx context.Context, id string) (*entity.Animal, error) {
	if a, ok := uc.catalog.Get(id); ok {
		return a, nil
	}
	return uc.animalRepo.GetByID(ctx, id)
}

func (uc *CatalogUseCase) CreateListing(ctx context.Context, uid string, input CreateAnimalInput) (*entity.Animal, error) {
	input = trimCreate(input)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	profile, err := uc.profiles.CurrentProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	animal := &entity.Animal{
		Name:     input.Name,
		Age:      input.Age,
		Breed:    input.Breed,
		Location: input.Location,
		Image:    input.Image,
		CreatedUser: entity.AnimalCreator{
			UserID:    uid,
			UserEmail: profile.Email,
			UserName:  profile.DisplayName,
			UserImage: profile.PhotoURL,
		},
	}

	if err := uc.animalRepo.Create(ctx, animal); err != nil {
		return nil, err
	}

	logger.Info("Listing %s created by %s", animal.Key, uid)
	return animal, nil
}

func (uc *CatalogUseCase) UpdateListing(ctx context.Context, uid, id string, input UpdateAnimalInput) (*entity.Animal, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	if _, err := uc.ownedListing(ctx, uid, id); err != nil {
		return nil, err
	}

	update := entity.AnimalUpdate{
		Name:     strings.TrimSpace(input.Name),
		Age:      strings.TrimSpace(input.Age),
		Breed:    strings.TrimSpace(input.Breed),
		Location: strings.TrimSpace(input.Location),
		Image:    input.Image,
	}
	if err := uc.animalRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	return uc.animalRepo.GetByID(ctx, id)
}

// DeleteListing removes the listing, then its image on a best-effort basis.
func (uc *CatalogUseCase) DeleteListing(ctx context.Context, uid, id string) error {
	animal, err := uc.ownedListing(ctx, uid, id)
	if err != nil {
		return err
	}

	if err := uc.animalRepo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.media != nil && animal.Image != "" {
		if err := uc.media.Delete(ctx, animal.Image); err != nil {
			logger.Warn("Failed to delete image of listing %s: %v", id, err)
		}
	}

	logger.Info("Listing %s deleted by %s", id, uid)
	return nil
}

func (uc *CatalogUseCase) ownedListing(ctx context.Context, uid, id string) (*entity.Animal, error) {
	animal, err := uc.animalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !animal.IsCreatedBy(uid) {
		return nil, errors.Forbidden("Only the creator can modify this listing", nil)
	}
	return animal, nil
}

func (uc *CatalogUseCase) page(items []*entity.Animal, params utils.PaginationParams) *CatalogPage {
	pageItems, total := utils.Paginate(items, params)

	page := &CatalogPage{
		Items:    pageItems,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
		Loading:  uc.catalog.Loading(),
	}
	if err := uc.catalog.Err(); err != nil {
		page.Error = "Animal catalog is temporarily unavailable"
	}
	return page
}

func trimCreate(input CreateAnimalInput) CreateAnimalInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Age = strings.TrimSpace(input.Age)
	input.Breed = strings.TrimSpace(input.Breed)
	input.Location = strings.TrimSpace(input.Location)
	input.Image = strings.TrimSpace(input.Image)
	return input
}
